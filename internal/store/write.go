package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/t262/internal/harness"
)

// WriteRun persists a run, its results and its unrecognized entries in one
// transaction. The run gets a fresh UUIDv7 ID and the next seq.
func (s *Store) WriteRun(ctx context.Context, rec RunRecord) (Run, error) {
	if rec.Summary == nil {
		return Run{}, errors.New("write run: summary is required")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Run{}, fmt.Errorf("write run: generate id: %w", err)
	}

	featuresJSON, err := marshalFeatures(rec.Features)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	summary := rec.Summary
	run := Run{
		ID:           id.String(),
		Corpus:       rec.Corpus,
		Parser:       rec.Parser,
		Features:     append([]string{}, rec.Features...),
		Scenarios:    summary.Total(),
		Allowed:      summary.Allowed.Len(),
		Disallowed:   summary.Disallowed.Len(),
		Unrecognized: len(summary.Unrecognized),
		Passed:       summary.Passed,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, corpus, parser, features, scenario_count, allowed_count, disallowed_count, passed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.Corpus,
		run.Parser,
		featuresJSON,
		run.Scenarios,
		run.Allowed,
		run.Disallowed,
		boolToInt(run.Passed),
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results
		(run_id, ord, scenario_id, category, allowed, expected_error, actual_error, source_digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("write run: prepare results: %w", err)
	}
	defer stmt.Close()

	ord := 0
	for _, part := range []struct {
		buckets *harness.Buckets
		allowed bool
	}{
		{&summary.Allowed, true},
		{&summary.Disallowed, false},
	} {
		for _, category := range harness.Categories {
			for _, r := range part.buckets.Of(category) {
				_, err := stmt.ExecContext(ctx,
					run.ID,
					ord,
					r.ID,
					category.String(),
					boolToInt(part.allowed),
					boolToInt(r.ExpectedError),
					boolToInt(r.ActualError),
					r.Digest(),
				)
				if err != nil {
					return Run{}, fmt.Errorf("write run: insert result %s: %w", r.ID, err)
				}
				ord++
			}
		}
	}

	for i, entry := range summary.Unrecognized {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO unrecognized (run_id, ord, entry) VALUES (?, ?, ?)
		`, run.ID, i, entry)
		if err != nil {
			return Run{}, fmt.Errorf("write run: insert unrecognized: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}

	return run, nil
}
