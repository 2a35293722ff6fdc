package corpus

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Options controls which files Walk returns.
type Options struct {
	// Include restricts the walk to identifiers matching at least one
	// doublestar pattern (e.g. "language/statements/**"). Empty means all.
	Include []string

	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// Walk reads every test file under root, in lexical order. A symlinked
// root is followed; identifiers are relative to the resolved directory.
//
// A missing root, an unreadable directory, or an unreadable test file aborts
// the walk: a partial corpus would make the exceptions file look stale. So
// does a pair of file names that normalize to the same identifier.
func Walk(ctx context.Context, root string, opts Options) ([]TestRecord, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("corpus root: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("corpus root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s: not a directory", root)
	}

	for _, pattern := range opts.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern %q", pattern)
		}
	}

	var records []TestRecord
	seen := make(map[string]string)
	err = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(resolved, path)
		if err != nil {
			return err
		}
		id := Identifier(rel)
		if !IsTestFile(id) || !included(id, opts.Include) {
			return nil
		}
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("identifier %s: %s and %s collide", id, prev, path)
		}
		seen[id] = path

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read test %s: %w", id, err)
		}
		records = append(records, NewRecord(id, path, string(data)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus %s: %w", root, err)
	}

	logger.Debug("corpus loaded", "root", root, "tests", len(records))
	return records, nil
}

// included reports whether id matches one of the patterns.
// Patterns were validated by Walk, so Match cannot fail here.
func included(id string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, id); ok {
			return true
		}
	}
	return false
}
