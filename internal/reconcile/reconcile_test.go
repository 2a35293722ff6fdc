package reconcile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/t262/internal/exceptions"
	"github.com/roach88/t262/internal/harness"
)

func result(id string, expected, actual bool) harness.ProbeResult {
	return harness.ProbeResult{
		Scenario:    harness.Scenario{ID: id, ExpectedError: expected},
		ActualError: actual,
	}
}

// fixture is a run over four scenarios, each landing in a different
// disallowed cell, plus one allowed success.
func fixture() ([]harness.ProbeResult, *exceptions.Set) {
	results := []harness.ProbeResult{
		result("ok.js(default)", false, false),
		result("listed-ok.js(default)", false, false),
		result("listed-fail.js(strict mode)", true, true),
		result("fp.js(default)", true, false),
		result("fn.js(strict mode)", false, true),
	}
	return results, exceptions.New("listed-ok.js(default)", "listed-fail.js(strict mode)", "stale.js(default)")
}

const whitelist = `# parser divergences
listed-ok.js(default)

listed-fail.js(strict mode) # tracked upstream
stale.js(default)
`

func TestPlan(t *testing.T) {
	results, set := fixture()
	edit := Plan(harness.Interpret(results, set))

	want := Edit{
		Remove: []string{"listed-ok.js(default)", "listed-fail.js(strict mode)"},
		Add:    []string{"fp.js(default)", "fn.js(strict mode)"},
	}
	if diff := cmp.Diff(want, edit); diff != "" {
		t.Errorf("Plan() mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, edit.Empty())
}

func TestPlan_StrictFailureExample(t *testing.T) {
	results := []harness.ProbeResult{
		result("x.js(default)", false, false),
		result("x.js(strict mode)", false, true),
	}
	edit := Plan(harness.Interpret(results, exceptions.New()))
	assert.Equal(t, Edit{Remove: []string{}, Add: []string{"x.js(strict mode)"}}, edit)
}

func TestPlan_PassingRunIsEmpty(t *testing.T) {
	edit := Plan(harness.Interpret([]harness.ProbeResult{result("a(default)", false, false)}, exceptions.New()))
	assert.True(t, edit.Empty())
}

func TestPrune(t *testing.T) {
	edit := Edit{Remove: []string{"a"}, Add: []string{"b"}}
	pruned := edit.Prune([]string{"stale"})

	if diff := cmp.Diff(Edit{Remove: []string{"a", "stale"}, Add: []string{"b"}}, pruned); diff != "" {
		t.Errorf("Prune() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"a"}, edit.Remove, "receiver unchanged")
}

func writeWhitelist(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test262_whitelist.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func read(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestApply_Golden(t *testing.T) {
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	results, set := fixture()
	summary := harness.Interpret(results, set)

	t.Run("default", func(t *testing.T) {
		path := writeWhitelist(t, whitelist)
		changed, err := Apply(path, Plan(summary))
		require.NoError(t, err)
		assert.True(t, changed)
		g.Assert(t, "apply_default", read(t, path))
	})

	t.Run("prune", func(t *testing.T) {
		path := writeWhitelist(t, whitelist)
		changed, err := Apply(path, Plan(summary).Prune(summary.Unrecognized))
		require.NoError(t, err)
		assert.True(t, changed)
		g.Assert(t, "apply_prune", read(t, path))
	})
}

func TestApply_EmptyEditLeavesFileUntouched(t *testing.T) {
	path := writeWhitelist(t, "a(default)\r\n# odd line endings stay\r\n")
	before := read(t, path)

	changed, err := Apply(path, Edit{})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, before, read(t, path))
}

func TestApply_MissingFile(t *testing.T) {
	_, err := Apply(filepath.Join(t.TempDir(), "nope.txt"), Edit{Add: []string{"x"}})
	assert.Error(t, err)
}

// Re-running with the same parser after a reconcile needs no further edit.
func TestApply_Idempotent(t *testing.T) {
	results, set := fixture()
	path := writeWhitelist(t, whitelist)
	summary := harness.Interpret(results, set)

	_, err := Apply(path, Plan(summary).Prune(summary.Unrecognized))
	require.NoError(t, err)

	reloaded, err := exceptions.Load(path)
	require.NoError(t, err)
	second := harness.Interpret(results, reloaded)

	assert.True(t, second.Passed)
	assert.True(t, Plan(second).Empty())
	assert.Empty(t, second.Unrecognized)

	changed, err := Apply(path, Plan(second))
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestApply_WithoutPruneKeepsStaleEntries(t *testing.T) {
	results, set := fixture()
	path := writeWhitelist(t, whitelist)

	_, err := Apply(path, Plan(harness.Interpret(results, set)))
	require.NoError(t, err)

	reloaded, err := exceptions.Load(path)
	require.NoError(t, err)
	second := harness.Interpret(results, reloaded)
	assert.Equal(t, 0, second.Disallowed.Len())
	assert.Equal(t, []string{"stale.js(default)"}, second.Unrecognized)
}
