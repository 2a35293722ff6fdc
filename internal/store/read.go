package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/roach88/t262/internal/harness"
)

const runColumns = `
	r.id, r.seq, r.corpus, r.parser, r.features,
	r.scenario_count, r.allowed_count, r.disallowed_count,
	(SELECT COUNT(*) FROM unrecognized u WHERE u.run_id = r.id),
	r.passed`

// ListRuns returns stored runs, newest first. A limit of zero or less
// returns every run.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT` + runColumns + ` FROM runs r ORDER BY r.seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+runColumns+` FROM runs r WHERE r.id = ?`, id)
	return scanRun(row)
}

// ReadResults returns every result of a run.
// Results are ordered deterministically: ORDER BY scenario_id COLLATE BINARY, ord.
func (s *Store) ReadResults(ctx context.Context, runID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT scenario_id, category, allowed, expected_error, actual_error, source_digest
		FROM results
		WHERE run_id = ?
		ORDER BY scenario_id COLLATE BINARY ASC, ord ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		var r Result
		var category string
		var allowed, expected, actual int
		if err := rows.Scan(&r.ScenarioID, &category, &allowed, &expected, &actual, &r.SourceDigest); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Category, err = harness.ParseCategory(category)
		if err != nil {
			return nil, fmt.Errorf("scan result %s: %w", r.ScenarioID, err)
		}
		r.Allowed = allowed != 0
		r.ExpectedError = expected != 0
		r.ActualError = actual != 0
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}

	return results, nil
}

// ReadUnrecognized returns the exceptions entries a run left unclaimed, in
// exceptions-file order.
func (s *Store) ReadUnrecognized(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry FROM unrecognized WHERE run_id = ? ORDER BY ord ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query unrecognized: %w", err)
	}
	defer rows.Close()

	entries := []string{}
	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			return nil, fmt.Errorf("scan unrecognized: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unrecognized: %w", err)
	}

	return entries, nil
}

// ChangedSince returns the scenarios whose cell differs between prevRunID
// and runID, ordered by scenario ID. A scenario present in only one run is
// a change. When a run holds an identifier more than once, its first
// stored result counts.
func (s *Store) ChangedSince(ctx context.Context, prevRunID, runID string) ([]Change, error) {
	before, err := s.cells(ctx, prevRunID)
	if err != nil {
		return nil, err
	}
	after, err := s.cells(ctx, runID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(before)+len(after))
	for id := range before {
		ids = append(ids, id)
	}
	for id := range after {
		if _, ok := before[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	changes := []Change{}
	for _, id := range ids {
		b, inBefore := before[id]
		a, inAfter := after[id]
		if inBefore && inAfter && b == a {
			continue
		}
		change := Change{ScenarioID: id}
		if inBefore {
			change.Before = &b
		}
		if inAfter {
			change.After = &a
		}
		changes = append(changes, change)
	}
	return changes, nil
}

func (s *Store) cells(ctx context.Context, runID string) (map[string]Cell, error) {
	if _, err := s.ReadRun(ctx, runID); err != nil {
		return nil, fmt.Errorf("read run %s: %w", runID, err)
	}
	results, err := s.ReadResults(ctx, runID)
	if err != nil {
		return nil, err
	}
	cells := make(map[string]Cell, len(results))
	for _, r := range results {
		if _, seen := cells[r.ScenarioID]; !seen {
			cells[r.ScenarioID] = Cell{Category: r.Category, Allowed: r.Allowed}
		}
	}
	return cells, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var featuresJSON string
	var passed int
	if err := row.Scan(
		&run.ID, &run.Seq, &run.Corpus, &run.Parser, &featuresJSON,
		&run.Scenarios, &run.Allowed, &run.Disallowed, &run.Unrecognized,
		&passed,
	); err != nil {
		if err == sql.ErrNoRows {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	features, err := unmarshalFeatures(featuresJSON)
	if err != nil {
		return Run{}, err
	}
	run.Features = features
	run.Passed = passed != 0
	return run, nil
}
