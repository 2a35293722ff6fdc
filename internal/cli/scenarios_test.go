package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/t262/internal/harness"
	"github.com/roach88/t262/internal/testutil"
)

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func scenarioCorpus(t *testing.T) string {
	return testutil.WriteCorpus(t, map[string]string{
		"b/plain.js":  testutil.TestSource("x;\n", false),
		"a/raw.js":    testutil.TestSource("x;\n", true, "raw"),
		"a/odd.js":    testutil.TestSource("x;\n", false, "onlyStrict", "noStrict"),
		"c/strict.js": testutil.TestSource("x;\n", false, "onlyStrict"),
	})
}

func TestScenarios_Text(t *testing.T) {
	out, err := executeRoot(t, "scenarios", scenarioCorpus(t))
	require.NoError(t, err)
	assert.Equal(t,
		"a/raw.js(default)\tearly error\n"+
			"b/plain.js(default)\n"+
			"b/plain.js(strict mode)\n"+
			"c/strict.js(strict mode)\n",
		out)
}

func TestScenarios_Include(t *testing.T) {
	out, err := executeRoot(t, "scenarios", "--include", "c/**", scenarioCorpus(t))
	require.NoError(t, err)
	assert.Equal(t, "c/strict.js(strict mode)\n", out)
}

func TestScenarios_JSON(t *testing.T) {
	out, err := executeRoot(t, "scenarios", "--format", "json", scenarioCorpus(t))
	require.NoError(t, err)

	var resp struct {
		Status string             `json:"status"`
		Data   []harness.Scenario `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 4)
	assert.Equal(t, "a/raw.js(default)", resp.Data[0].ID)
	assert.True(t, resp.Data[0].ExpectedError)
	assert.Equal(t, harness.ModeStrict, resp.Data[3].Mode)
	assert.Empty(t, resp.Data[0].Source, "source is not part of the listing")
}

func TestScenarios_MissingCorpus(t *testing.T) {
	_, err := executeRoot(t, "scenarios", "/nonexistent/corpus")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestScenarios_RequiresArg(t *testing.T) {
	_, err := executeRoot(t, "scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
