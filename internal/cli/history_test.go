package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/t262/internal/exceptions"
	"github.com/roach88/t262/internal/harness"
	"github.com/roach88/t262/internal/store"
)

func seedHistory(t *testing.T) (string, store.Run, store.Run) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	first, err := st.WriteRun(ctx, store.RunRecord{
		Corpus:  "/corpus",
		Parser:  "tree-sitter/javascript",
		Summary: harness.Interpret([]harness.ProbeResult{probeResult("a.js(default)", false, false)}, exceptions.New()),
	})
	require.NoError(t, err)
	second, err := st.WriteRun(ctx, store.RunRecord{
		Corpus:   "/corpus",
		Parser:   "tree-sitter/javascript",
		Features: []string{"asyncGenerators"},
		Summary:  failedSummary(),
	})
	require.NoError(t, err)
	return path, first, second
}

func TestHistory_ListRuns(t *testing.T) {
	db, first, second := seedHistory(t)

	out, err := executeRoot(t, "history", "--db", db)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "SEQ"))
	assert.True(t, strings.HasPrefix(lines[1], "2 "))
	assert.Contains(t, lines[1], second.ID)
	assert.Contains(t, lines[1], "failed")
	assert.Contains(t, lines[2], first.ID)
	assert.Contains(t, lines[2], "passed")
}

func TestHistory_Limit(t *testing.T) {
	db, _, second := seedHistory(t)

	out, err := executeRoot(t, "history", "--db", db, "--limit", "1", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data []store.Run `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, second.ID, resp.Data[0].ID)
}

func TestHistory_RunDetail(t *testing.T) {
	db, _, second := seedHistory(t)

	out, err := executeRoot(t, "history", "--db", db, "--run", second.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Run 2 ("+second.ID+"): failed")
	assert.Contains(t, out, "Features: asyncGenerators")
	assert.Contains(t, out, "   success\td.js(default)\n")
	assert.Contains(t, out, "   falseNegative\tx.js(strict mode)\n")
	assert.Contains(t, out, "Not found in corpus:\n   gone.js(default)\n")
	assert.NotContains(t, out, "a.js(default)", "allowed results are not listed")
}

func TestHistory_RunDetailJSON(t *testing.T) {
	db, _, second := seedHistory(t)

	out, err := executeRoot(t, "history", "--db", db, "--run", second.ID, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data RunDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, second.ID, resp.Data.Run.ID)
	require.Len(t, resp.Data.Results, 2)
	assert.Equal(t, harness.Success, resp.Data.Results[0].Category)
	assert.Equal(t, []string{"gone.js(default)"}, resp.Data.Unrecognized)
}

func TestHistory_UnknownRun(t *testing.T) {
	db, _, _ := seedHistory(t)
	_, err := executeRoot(t, "history", "--db", db, "--run", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "run not found")
}

func TestHistory_Empty(t *testing.T) {
	out, err := executeRoot(t, "history", "--db", filepath.Join(t.TempDir(), "new.db"))
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", out)
}

func TestHistory_RequiresDB(t *testing.T) {
	_, err := executeRoot(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
