// Package reconcile turns a classified run into an edit of the exceptions
// file and applies it.
package reconcile

import (
	"fmt"

	"github.com/roach88/t262/internal/exceptions"
	"github.com/roach88/t262/internal/harness"
)

// Edit is a change to the exceptions file.
type Edit struct {
	// Remove lists identifiers whose lines are dropped.
	Remove []string `json:"remove"`

	// Add lists identifiers appended as new lines.
	Add []string `json:"add"`
}

// Plan derives the edit that would make every result of s allowed.
//
// Disallowed successes and failures are listed but agree with their test, so
// they are removed. Disallowed false positives and false negatives are
// unlisted divergences, so they are added. Both lists keep Summary order.
func Plan(s *harness.Summary) Edit {
	edit := Edit{Remove: []string{}, Add: []string{}}
	for _, r := range s.Disallowed.Success {
		edit.Remove = append(edit.Remove, r.ID)
	}
	for _, r := range s.Disallowed.Failure {
		edit.Remove = append(edit.Remove, r.ID)
	}
	for _, r := range s.Disallowed.FalsePositive {
		edit.Add = append(edit.Add, r.ID)
	}
	for _, r := range s.Disallowed.FalseNegative {
		edit.Add = append(edit.Add, r.ID)
	}
	return edit
}

// Empty reports whether the edit changes nothing.
func (e Edit) Empty() bool {
	return len(e.Remove) == 0 && len(e.Add) == 0
}

// Prune returns a copy of e that also removes the unrecognized entries.
func (e Edit) Prune(unrecognized []string) Edit {
	remove := make([]string, 0, len(e.Remove)+len(unrecognized))
	remove = append(remove, e.Remove...)
	remove = append(remove, unrecognized...)
	return Edit{Remove: remove, Add: append([]string{}, e.Add...)}
}

// Apply rewrites the exceptions file at path with edit and reports whether
// the content changed. An unchanged file is not rewritten.
func Apply(path string, edit Edit) (bool, error) {
	text, err := exceptions.ReadFile(path)
	if err != nil {
		return false, err
	}

	updated := exceptions.Rewrite(text, edit.Remove, edit.Add)
	if updated == text {
		return false, nil
	}
	if err := exceptions.WriteFile(path, updated); err != nil {
		return false, fmt.Errorf("apply edit to %s: %w", path, err)
	}
	return true, nil
}
