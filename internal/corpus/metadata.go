package corpus

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter delimiters used by test262 files.
const (
	frontmatterOpen  = "/*---"
	frontmatterClose = "---*/"
)

// Metadata is the subset of a test's frontmatter the harness acts on.
type Metadata struct {
	// IsModule is set by the "module" flag; the test is parsed as a module.
	IsModule bool `json:"is_module"`

	// NoStrict suppresses the strict-mode scenario.
	NoStrict bool `json:"no_strict"`

	// OnlyStrict suppresses the default scenario.
	OnlyStrict bool `json:"only_strict"`

	// Raw marks a test whose source must run unmodified (no strict prefix).
	Raw bool `json:"raw"`

	// ExpectedEarlyError is true iff the test declares a negative outcome
	// in the "early" phase.
	ExpectedEarlyError bool `json:"expected_early_error"`
}

// frontmatter mirrors the YAML keys of a test262 metadata block.
// Every other key (description, info, features, includes...) is ignored.
type frontmatter struct {
	Flags    []string `yaml:"flags"`
	Negative *struct {
		Phase string `yaml:"phase"`
		Type  string `yaml:"type"`
	} `yaml:"negative"`
}

// Line patterns used when a test has no decodable frontmatter.
var (
	modulePattern     = regexp.MustCompile(`(?m)^\s*-\s*module\s*$|^\s*flags\s*:.*\bmodule\b`)
	noStrictPattern   = regexp.MustCompile(`(?m)^\s*-\s*noStrict\s*$|^\s*flags\s*:.*\bnoStrict\b`)
	onlyStrictPattern = regexp.MustCompile(`(?m)^\s*-\s*onlyStrict\s*$|^\s*flags\s*:.*\bonlyStrict\b`)
	rawPattern        = regexp.MustCompile(`(?m)^\s*-\s*raw\s*$|^\s*flags\s*:.*\braw\b`)
	negativePattern   = regexp.MustCompile(`(?m)^\s*negative:\s*$`)
	earlyPhasePattern = regexp.MustCompile(`(?m)^\s+phase:\s*early\s*$`)
)

// ParseMetadata extracts Metadata from a test's source text.
//
// The frontmatter block is decoded as YAML. Sources without a block, or whose
// block is not valid YAML, are scanned with line patterns instead so that a
// malformed header still yields the flags a reader would see in it.
func ParseMetadata(src string) Metadata {
	block, ok := extractFrontmatter(src)
	if ok {
		var fm frontmatter
		if err := yaml.Unmarshal([]byte(block), &fm); err == nil {
			return fm.metadata()
		}
	}
	return scanMetadata(src)
}

func (fm frontmatter) metadata() Metadata {
	var md Metadata
	for _, flag := range fm.Flags {
		switch strings.TrimSpace(flag) {
		case "module":
			md.IsModule = true
		case "noStrict":
			md.NoStrict = true
		case "onlyStrict":
			md.OnlyStrict = true
		case "raw":
			md.Raw = true
		}
	}
	if fm.Negative != nil && strings.TrimSpace(fm.Negative.Phase) == "early" {
		md.ExpectedEarlyError = true
	}
	return md
}

func scanMetadata(src string) Metadata {
	return Metadata{
		IsModule:           modulePattern.MatchString(src),
		NoStrict:           noStrictPattern.MatchString(src),
		OnlyStrict:         onlyStrictPattern.MatchString(src),
		Raw:                rawPattern.MatchString(src),
		ExpectedEarlyError: negativePattern.MatchString(src) && earlyPhasePattern.MatchString(src),
	}
}

// extractFrontmatter returns the text between the frontmatter delimiters.
func extractFrontmatter(src string) (string, bool) {
	start := strings.Index(src, frontmatterOpen)
	if start < 0 {
		return "", false
	}
	body := src[start+len(frontmatterOpen):]
	end := strings.Index(body, frontmatterClose)
	if end < 0 {
		return "", false
	}
	return body[:end], true
}
