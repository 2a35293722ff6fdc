package harness

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/t262/internal/corpus"
	"github.com/roach88/t262/internal/exceptions"
	"github.com/roach88/t262/internal/parser"
	"github.com/roach88/t262/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newHarness(t *testing.T, p parser.Parser, jobs int) *Harness {
	t.Helper()
	h, err := New(Options{Parser: p, Jobs: jobs, Features: []string{"asyncGenerators"}})
	require.NoError(t, err)
	return h
}

func TestNew_RequiresParser(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestRun_CleanRecordPasses(t *testing.T) {
	h := newHarness(t, &testutil.ScriptedParser{}, 1)

	outcome, err := h.Run(context.Background(), []corpus.TestRecord{record("x.js", corpus.Metadata{})}, exceptions.New())
	require.NoError(t, err)

	s := outcome.Summary
	assert.True(t, s.Passed)
	require.Len(t, s.Allowed.Success, 2)
	assert.Equal(t, "x.js(default)", s.Allowed.Success[0].ID)
	assert.Equal(t, "x.js(strict mode)", s.Allowed.Success[1].ID)
	assert.Equal(t, 0, s.Disallowed.Len())
	assert.Equal(t, 1, outcome.Records)
}

func TestRun_StrictOnlyFailureIsDisallowed(t *testing.T) {
	h := newHarness(t, testutil.StrictFailures(), 1)

	outcome, err := h.Run(context.Background(), []corpus.TestRecord{record("x.js", corpus.Metadata{})}, exceptions.New())
	require.NoError(t, err)

	s := outcome.Summary
	assert.False(t, s.Passed)
	require.Len(t, s.Allowed.Success, 1)
	assert.Equal(t, "x.js(default)", s.Allowed.Success[0].ID)
	require.Len(t, s.Disallowed.FalseNegative, 1)
	assert.Equal(t, "x.js(strict mode)", s.Disallowed.FalseNegative[0].ID)
}

func TestRun_StaleEntryFailsRun(t *testing.T) {
	h := newHarness(t, &testutil.ScriptedParser{}, 1)

	outcome, err := h.Run(context.Background(),
		[]corpus.TestRecord{record("x.js", corpus.Metadata{})},
		exceptions.New("gone.js(default)"))
	require.NoError(t, err)

	s := outcome.Summary
	assert.Equal(t, 0, s.Disallowed.Len())
	assert.Equal(t, []string{"gone.js(default)"}, s.Unrecognized)
	assert.False(t, s.Passed)
}

func TestRun_ZeroScenarioRecordIsNoOp(t *testing.T) {
	p := &testutil.ScriptedParser{}
	h := newHarness(t, p, 1)

	outcome, err := h.Run(context.Background(),
		[]corpus.TestRecord{record("odd.js", corpus.Metadata{OnlyStrict: true, NoStrict: true})},
		exceptions.New())
	require.NoError(t, err)
	assert.Empty(t, outcome.Results)
	assert.True(t, outcome.Summary.Passed)
	assert.Zero(t, p.Calls())
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	var records []corpus.TestRecord
	var listed []string
	for i := 0; i < 50; i++ {
		rec := record(fmt.Sprintf("t%02d.js", i), corpus.Metadata{
			ExpectedEarlyError: i%3 == 0,
			Raw:                i%7 == 0,
		})
		if i%2 == 0 {
			rec.Source = "bad"
		}
		records = append(records, rec)
		if i%5 == 0 {
			listed = append(listed, fmt.Sprintf("t%02d.js(default)", i))
		}
	}
	set := exceptions.New(listed...)

	sequential, err := newHarness(t, &testutil.ScriptedParser{FailOn: []string{"bad"}}, 1).
		Run(context.Background(), records, set)
	require.NoError(t, err)
	parallel, err := newHarness(t, &testutil.ScriptedParser{FailOn: []string{"bad"}}, 8).
		Run(context.Background(), records, set)
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestRun_ParserErrorsAndPanicsDoNotAbort(t *testing.T) {
	p := &testutil.ScriptedParser{FailOn: []string{"bad"}, PanicOn: []string{"boom"}}
	h := newHarness(t, p, 4)

	records := []corpus.TestRecord{
		record("a.js", corpus.Metadata{Raw: true}),
		record("b.js", corpus.Metadata{Raw: true}),
	}
	records[0].Source = "bad"
	records[1].Source = "boom"

	outcome, err := h.Run(context.Background(), records, exceptions.New("a.js(default)", "b.js(default)"))
	require.NoError(t, err)
	assert.True(t, outcome.Summary.Passed)
	assert.Len(t, outcome.Summary.Allowed.FalseNegative, 2)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := newHarness(t, &testutil.ScriptedParser{}, 2)
	_, err := h.Run(ctx, []corpus.TestRecord{record("x.js", corpus.Metadata{})}, exceptions.New())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRun_CancelledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := parser.Func(func(ctx context.Context, source string, _ parser.Options) error {
		if source == "stop" {
			cancel()
		}
		return nil
	})
	records := []corpus.TestRecord{
		record("a.js", corpus.Metadata{Raw: true}),
		record("b.js", corpus.Metadata{Raw: true}),
	}
	records[0].Source = "stop"

	_, err := newHarness(t, p, 1).Run(ctx, records, exceptions.New())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_PassesFeatures(t *testing.T) {
	p := &testutil.ScriptedParser{}
	_, err := newHarness(t, p, 1).Run(context.Background(),
		[]corpus.TestRecord{record("m.js", corpus.Metadata{IsModule: true, Raw: true})}, exceptions.New())
	require.NoError(t, err)

	seen := p.Seen()
	require.Len(t, seen, 1)
	assert.Equal(t, parser.SourceTypeModule, seen[0].SourceType)
	assert.Equal(t, []string{"asyncGenerators"}, seen[0].Features)
}
