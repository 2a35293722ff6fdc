package harness

import (
	"github.com/roach88/t262/internal/corpus"
)

// ScenarioID returns the identifier of the scenario for file in mode.
func ScenarioID(file string, mode Mode) string {
	return file + "(" + string(mode) + ")"
}

// Generate expands a test record into its scenarios.
//
// The default scenario is emitted unless the record is onlyStrict; the
// strict-mode scenario unless it is noStrict or raw. A record that is both
// onlyStrict and noStrict yields no scenarios, which callers treat as a no-op.
func Generate(rec corpus.TestRecord) []Scenario {
	scenarios := make([]Scenario, 0, 2)

	if !rec.OnlyStrict {
		scenarios = append(scenarios, Scenario{
			ID:            ScenarioID(rec.ID, ModeDefault),
			File:          rec.ID,
			Mode:          ModeDefault,
			Source:        rec.Source,
			IsModule:      rec.IsModule,
			ExpectedError: rec.ExpectedEarlyError,
		})
	}

	if !rec.NoStrict && !rec.Raw {
		scenarios = append(scenarios, Scenario{
			ID:            ScenarioID(rec.ID, ModeStrict),
			File:          rec.ID,
			Mode:          ModeStrict,
			Source:        StrictDirective + "\n" + rec.Source,
			IsModule:      rec.IsModule,
			ExpectedError: rec.ExpectedEarlyError,
		})
	}

	return scenarios
}

// GenerateAll expands records in order.
func GenerateAll(records []corpus.TestRecord) []Scenario {
	scenarios := make([]Scenario, 0, 2*len(records))
	for _, rec := range records {
		scenarios = append(scenarios, Generate(rec)...)
	}
	return scenarios
}
