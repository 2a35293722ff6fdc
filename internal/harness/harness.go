package harness

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/t262/internal/corpus"
	"github.com/roach88/t262/internal/exceptions"
	"github.com/roach88/t262/internal/parser"
)

// Options configures a Harness.
type Options struct {
	// Parser is the parser under test. Required.
	Parser parser.Parser

	// Features is passed to every Parse call.
	Features []string

	// Jobs bounds concurrent probes. Values below 1 mean sequential.
	Jobs int

	// Logger receives progress and per-probe debug output. Nil discards it.
	Logger *slog.Logger
}

// Harness runs scenarios through a parser.
type Harness struct {
	parser   parser.Parser
	features []string
	jobs     int
	logger   *slog.Logger
}

// Outcome is everything a run produced.
type Outcome struct {
	// Records is the number of test records read.
	Records int

	// Results holds one ProbeResult per generated scenario, in generation order.
	Results []ProbeResult

	Summary *Summary
}

// New creates a Harness.
func New(opts Options) (*Harness, error) {
	if opts.Parser == nil {
		return nil, errors.New("harness: parser is required")
	}
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{
		parser:   opts.Parser,
		features: append([]string(nil), opts.Features...),
		jobs:     jobs,
		logger:   logger,
	}, nil
}

// Run generates scenarios for records, probes them, and classifies the
// results against set.
//
// Parser errors never fail a run. Only cancellation of ctx does, in which
// case no Summary is produced.
func (h *Harness) Run(ctx context.Context, records []corpus.TestRecord, set *exceptions.Set) (*Outcome, error) {
	scenarios := make([]Scenario, 0, 2*len(records))
	for _, rec := range records {
		generated := Generate(rec)
		if len(generated) == 0 {
			h.logger.Debug("test yields no scenarios", "file", rec.ID,
				"only_strict", rec.OnlyStrict, "no_strict", rec.NoStrict, "raw", rec.Raw)
		}
		scenarios = append(scenarios, generated...)
	}

	h.logger.Info("running tests", "records", len(records), "scenarios", len(scenarios), "jobs", h.jobs)

	results, err := h.ProbeAll(ctx, scenarios)
	if err != nil {
		return nil, err
	}

	summary := Interpret(results, set)
	h.logger.Info("testing complete",
		"passed", summary.Passed,
		"allowed", summary.Allowed.Len(),
		"disallowed", summary.Disallowed.Len(),
		"unrecognized", len(summary.Unrecognized),
	)

	return &Outcome{
		Records: len(records),
		Results: results,
		Summary: summary,
	}, nil
}

// ProbeAll probes every scenario, at most h.jobs at a time. Each probe
// writes only its own slot, so results keep the order of scenarios.
func (h *Harness) ProbeAll(ctx context.Context, scenarios []Scenario) ([]ProbeResult, error) {
	results := make([]ProbeResult, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.jobs)
	for i, sc := range scenarios {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, perr := probe(gctx, h.parser, sc, h.features)
			if perr != nil {
				h.logger.Debug("parser raised", "scenario", sc.ID, "error", perr)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A parser that ignores cancellation may still have returned; its
	// results are not trustworthy.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
