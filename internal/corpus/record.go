package corpus

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TestRecord is one corpus entry. It is immutable once read.
type TestRecord struct {
	// ID is the corpus-relative, slash-separated file identifier.
	ID string `json:"id"`

	// Path is the file's location on disk.
	Path string `json:"path"`

	// Source is the raw file content.
	Source string `json:"-"`

	Metadata
}

// NewRecord builds a TestRecord from a file identifier and its source,
// deriving the metadata from the source's frontmatter.
func NewRecord(id, path, source string) TestRecord {
	return TestRecord{
		ID:       id,
		Path:     path,
		Source:   source,
		Metadata: ParseMetadata(source),
	}
}

// Identifier converts a corpus-relative OS path to a file identifier.
func Identifier(rel string) string {
	return norm.NFC.String(filepath.ToSlash(rel))
}

// IsTestFile reports whether a corpus-relative name is a runnable test:
// a ".js" file (any case) that is not a fixture.
func IsTestFile(name string) bool {
	if strings.Contains(name, "_FIXTURE") {
		return false
	}
	return strings.HasSuffix(strings.ToLower(name), ".js")
}
