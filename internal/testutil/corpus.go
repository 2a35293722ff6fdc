// Package testutil provides fixtures shared by package tests: a scripted
// parser and helpers that lay out a test262-style corpus on disk.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSource builds a test file with a frontmatter block declaring flags
// and, if earlyError is set, an early SyntaxError.
func TestSource(body string, earlyError bool, flags ...string) string {
	var b strings.Builder
	b.WriteString("/*---\ndescription: generated fixture\n")
	if earlyError {
		b.WriteString("negative:\n  phase: early\n  type: SyntaxError\n")
	}
	if len(flags) > 0 {
		b.WriteString("flags: [" + strings.Join(flags, ", ") + "]\n")
	}
	b.WriteString("---*/\n")
	b.WriteString(body)
	return b.String()
}

// WriteCorpus writes files (slash-separated relative path -> content) into a
// fresh temporary directory and returns its path.
func WriteCorpus(t testing.TB, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(rel)), content)
	}
	return root
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// ReadFile returns the content of path.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
