package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/roach88/t262/internal/parser"
)

// ErrScripted is returned by ScriptedParser for a failing source.
var ErrScripted = errors.New("scripted parse error")

// ScriptedParser is a deterministic parser for tests.
//
// A source fails if it contains any FailOn marker and panics if it contains
// any PanicOn marker; everything else parses. Calls are counted and the
// options of every call are recorded.
//
// Thread-safety: safe for concurrent use.
type ScriptedParser struct {
	FailOn  []string
	PanicOn []string

	calls atomic.Int64
	mu    sync.Mutex
	seen  []parser.Options
}

// Parse implements parser.Parser.
func (p *ScriptedParser) Parse(_ context.Context, source string, opts parser.Options) error {
	p.calls.Add(1)
	p.mu.Lock()
	p.seen = append(p.seen, opts)
	p.mu.Unlock()

	for _, marker := range p.PanicOn {
		if strings.Contains(source, marker) {
			panic("scripted panic: " + marker)
		}
	}
	for _, marker := range p.FailOn {
		if strings.Contains(source, marker) {
			return ErrScripted
		}
	}
	return nil
}

// Calls returns the number of Parse calls so far.
func (p *ScriptedParser) Calls() int64 {
	return p.calls.Load()
}

// Seen returns the options of every call, in call order.
func (p *ScriptedParser) Seen() []parser.Options {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]parser.Options(nil), p.seen...)
}

// StrictFailures returns a parser that raises only on strict-mode scenarios.
func StrictFailures() *ScriptedParser {
	return &ScriptedParser{FailOn: []string{"'use strict';\n"}}
}
