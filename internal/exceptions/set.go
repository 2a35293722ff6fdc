// Package exceptions reads and writes the exceptions file ("whitelist"): the
// scenario identifiers whose divergence from their declared expectation is
// known and currently tolerated.
//
// The file is line-oriented UTF-8 text. Each line holds one identifier; a
// "#" starts a comment that runs to the end of the line. Blank and
// comment-only lines carry no entry but are preserved when the file is
// rewritten, since the file is maintained by hand as well.
package exceptions

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CommentMarker starts a trailing comment on an exceptions line.
const CommentMarker = "#"

// Set is an immutable, ordered set of scenario identifiers.
// Entries keep the order in which they first appear in the file.
type Set struct {
	entries []string
	index   map[string]struct{}
}

// New builds a Set from identifiers, dropping duplicates.
func New(ids ...string) *Set {
	s := &Set{index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		id = norm.NFC.String(id)
		if id == "" {
			continue
		}
		if _, ok := s.index[id]; ok {
			continue
		}
		s.index[id] = struct{}{}
		s.entries = append(s.entries, id)
	}
	return s
}

// Parse builds a Set from the text of an exceptions file.
func Parse(text string) *Set {
	lines := strings.Split(text, "\n")
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if id := StripLine(line); id != "" {
			ids = append(ids, id)
		}
	}
	return New(ids...)
}

// Load reads and parses the exceptions file at path.
func Load(path string) (*Set, error) {
	text, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(text), nil
}

// ReadFile returns the raw text of the exceptions file.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read exceptions file: %w", err)
	}
	return string(data), nil
}

// StripLine returns the identifier carried by a line: the text before any
// comment marker, trimmed and NFC-normalized. Blank lines yield "".
func StripLine(line string) string {
	if i := strings.Index(line, CommentMarker); i >= 0 {
		line = line[:i]
	}
	return norm.NFC.String(strings.TrimSpace(line))
}

// Has reports whether id is in the set.
func (s *Set) Has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

// Len returns the number of distinct entries.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns the identifiers in file order.
func (s *Set) Entries() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.entries)
}
