package harness

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainScenarioSource separates scenario source digests from other hashes.
const DomainScenarioSource = "t262/scenario-source/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest identifies the exact source text of a scenario. Run history uses it
// to tell a changed test apart from a changed parser.
func (s Scenario) Digest() string {
	return hashWithDomain(DomainScenarioSource, []byte(s.Source))
}
