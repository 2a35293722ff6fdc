package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/t262/internal/exceptions"
	"github.com/roach88/t262/internal/harness"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func probeResult(id string, expected, actual bool) harness.ProbeResult {
	return harness.ProbeResult{
		Scenario:    harness.Scenario{ID: id, Source: "source of " + id, ExpectedError: expected},
		ActualError: actual,
	}
}

// createTestSummary classifies results against the listed identifiers.
func createTestSummary(results []harness.ProbeResult, listed ...string) *harness.Summary {
	return harness.Interpret(results, exceptions.New(listed...))
}
