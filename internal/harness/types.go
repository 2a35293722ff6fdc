package harness

import (
	"fmt"

	"github.com/roach88/t262/internal/parser"
)

// Mode is the execution mode tag of a Scenario.
type Mode string

const (
	ModeDefault Mode = "default"
	ModeStrict  Mode = "strict mode"
)

// StrictDirective is prepended, followed by a newline, to force strict mode.
const StrictDirective = "'use strict';"

// Scenario is one executable unit derived from a test record.
type Scenario struct {
	// ID is File + "(" + Mode + ")"; it is the key used in the exceptions file.
	ID string `json:"id"`

	// File is the test record's identifier.
	File string `json:"file"`

	Mode Mode `json:"mode"`

	// Source is the exact text handed to the parser.
	Source string `json:"-"`

	IsModule bool `json:"is_module"`

	// ExpectedError is copied from the record's early-error declaration.
	ExpectedError bool `json:"expected_error"`
}

// SourceType returns the parse goal for the scenario.
func (s Scenario) SourceType() parser.SourceType {
	if s.IsModule {
		return parser.SourceTypeModule
	}
	return parser.SourceTypeScript
}

// ProbeResult is a Scenario plus the observed outcome of parsing it.
type ProbeResult struct {
	Scenario

	// ActualError is true if the parser raised on the scenario's source.
	ActualError bool `json:"actual_error"`
}

// Category is the correctness axis of a classification.
type Category int

const (
	// Success: no error expected, none raised.
	Success Category = iota
	// Failure: error expected and raised.
	Failure
	// FalsePositive: error expected, none raised.
	FalsePositive
	// FalseNegative: no error expected, one raised.
	FalseNegative
)

// Categories lists every category in report order.
var Categories = []Category{Success, Failure, FalsePositive, FalseNegative}

func (c Category) String() string {
	switch c {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case FalsePositive:
		return "falsePositive"
	case FalseNegative:
		return "falseNegative"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// Buckets holds ProbeResults by category.
type Buckets struct {
	Success       []ProbeResult `json:"success"`
	Failure       []ProbeResult `json:"failure"`
	FalsePositive []ProbeResult `json:"falsePositive"`
	FalseNegative []ProbeResult `json:"falseNegative"`
}

func newBuckets() Buckets {
	return Buckets{
		Success:       []ProbeResult{},
		Failure:       []ProbeResult{},
		FalsePositive: []ProbeResult{},
		FalseNegative: []ProbeResult{},
	}
}

// Of returns the results in category c.
func (b *Buckets) Of(c Category) []ProbeResult {
	return *b.slot(c)
}

// Len returns the number of results across all categories.
func (b *Buckets) Len() int {
	return len(b.Success) + len(b.Failure) + len(b.FalsePositive) + len(b.FalseNegative)
}

func (b *Buckets) add(c Category, r ProbeResult) {
	slot := b.slot(c)
	*slot = append(*slot, r)
}

func (b *Buckets) slot(c Category) *[]ProbeResult {
	switch c {
	case Success:
		return &b.Success
	case Failure:
		return &b.Failure
	case FalsePositive:
		return &b.FalsePositive
	case FalseNegative:
		return &b.FalseNegative
	}
	panic(fmt.Sprintf("harness: invalid category %d", int(c)))
}

// Summary is the classified outcome of a run. It is not modified after
// Interpret returns it.
type Summary struct {
	// Passed is true iff every result is allowed and Unrecognized is empty.
	Passed bool `json:"passed"`

	Allowed    Buckets `json:"allowed"`
	Disallowed Buckets `json:"disallowed"`

	// Unrecognized lists exceptions entries no scenario claimed, in file order.
	Unrecognized []string `json:"unrecognized"`
}

func newSummary() *Summary {
	return &Summary{
		Allowed:      newBuckets(),
		Disallowed:   newBuckets(),
		Unrecognized: []string{},
	}
}

// Total returns the number of classified results.
func (s *Summary) Total() int {
	return s.Allowed.Len() + s.Disallowed.Len()
}
