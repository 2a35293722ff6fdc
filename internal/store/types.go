package store

import (
	"github.com/roach88/t262/internal/harness"
)

// Run is one stored harness run.
type Run struct {
	ID  string `json:"id"`
	Seq int64  `json:"seq"`

	Corpus   string   `json:"corpus"`
	Parser   string   `json:"parser"`
	Features []string `json:"features"`

	Scenarios    int  `json:"scenarios"`
	Allowed      int  `json:"allowed"`
	Disallowed   int  `json:"disallowed"`
	Unrecognized int  `json:"unrecognized"`
	Passed       bool `json:"passed"`
}

// RunRecord is what a caller hands to WriteRun.
type RunRecord struct {
	Corpus   string
	Parser   string
	Features []string
	Summary  *harness.Summary
}

// Result is one stored classification.
type Result struct {
	ScenarioID    string           `json:"scenario_id"`
	Category      harness.Category `json:"category"`
	Allowed       bool             `json:"allowed"`
	ExpectedError bool             `json:"expected_error"`
	ActualError   bool             `json:"actual_error"`
	SourceDigest  string           `json:"source_digest"`
}

// Cell is the (category, allowed) pair a result landed in.
type Cell struct {
	Category harness.Category `json:"category"`
	Allowed  bool             `json:"allowed"`
}

// Change is a scenario whose cell differs between two runs. Before or After
// is nil when the scenario is absent from that run.
type Change struct {
	ScenarioID string `json:"scenario_id"`
	Before     *Cell  `json:"before"`
	After      *Cell  `json:"after"`
}
