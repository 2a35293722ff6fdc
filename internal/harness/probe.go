package harness

import (
	"context"
	"fmt"

	"github.com/roach88/t262/internal/parser"
)

// Probe parses sc with p and records whether the parser raised.
// Errors and panics from the parser are both counted as raising; their
// content is discarded.
func Probe(ctx context.Context, p parser.Parser, sc Scenario, features []string) ProbeResult {
	result, _ := probe(ctx, p, sc, features)
	return result
}

// probe is Probe that also returns the parser's error for logging.
func probe(ctx context.Context, p parser.Parser, sc Scenario, features []string) (ProbeResult, error) {
	err := safeParse(ctx, p, sc.Source, parser.Options{
		SourceType: sc.SourceType(),
		Features:   features,
	})
	return ProbeResult{Scenario: sc, ActualError: err != nil}, err
}

func safeParse(ctx context.Context, p parser.Parser, source string, opts parser.Options) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panicked: %v", r)
		}
	}()
	return p.Parse(ctx, source, opts)
}
