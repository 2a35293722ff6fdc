// Package parser defines the boundary between the harness and the parser
// under test, and provides the backends the CLI can drive.
//
// A Parser is a pure function from source text and options to success or
// failure. The harness only observes whether Parse returned an error; the
// error value itself is kept for debug logging and then discarded.
package parser

import (
	"context"
	"errors"
	"fmt"
)

// SourceType selects the parse goal.
type SourceType string

const (
	SourceTypeScript SourceType = "script"
	SourceTypeModule SourceType = "module"
)

// Options are passed to every Parse call.
type Options struct {
	SourceType SourceType
	Features   []string
}

// Parser parses a single source text.
type Parser interface {
	Parse(ctx context.Context, source string, opts Options) error
}

// Func adapts an ordinary function to the Parser interface.
type Func func(ctx context.Context, source string, opts Options) error

// Parse calls f.
func (f Func) Parse(ctx context.Context, source string, opts Options) error {
	return f(ctx, source, opts)
}

// ErrUnavailable is returned when a parser backend cannot be loaded.
// It is a setup failure, never a parse outcome.
var ErrUnavailable = errors.New("parser unavailable")

// Describe returns a human-readable name for p, used in run history.
func Describe(p Parser) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", p)
}
