// Package config loads t262 configuration from YAML or CUE files.
//
// Both formats describe the same Config. YAML is decoded strictly onto
// Default(); CUE is unified with the embedded #Config schema, which carries
// the same defaults and rejects unknown fields. Relative paths in either
// format resolve against the directory holding the config file.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource []byte

// Parser kinds.
const (
	ParserCommand    = "command"
	ParserTreeSitter = "treesitter"
)

// DefaultWhitelist is the exceptions file used when none is configured.
const DefaultWhitelist = "test262_whitelist.txt"

// DefaultFeatures are the syntax extensions enabled for every parse.
var DefaultFeatures = []string{"asyncGenerators", "objectRestSpread", "optionalCatchBinding"}

// Config is the resolved configuration of a run.
type Config struct {
	// Corpus is the test262 root directory.
	Corpus string `yaml:"corpus" json:"corpus,omitempty"`

	// Whitelist is the exceptions file.
	Whitelist string `yaml:"whitelist" json:"whitelist"`

	Features []string `yaml:"features" json:"features"`

	// Include restricts the walk to matching corpus-relative paths.
	Include []string `yaml:"include" json:"include"`

	Jobs int `yaml:"jobs" json:"jobs"`

	// Database is the run history file. Empty disables history.
	Database string `yaml:"database" json:"database,omitempty"`

	Parser ParserConfig `yaml:"parser" json:"parser"`
}

// ParserConfig selects the parser under test.
type ParserConfig struct {
	// Kind is ParserCommand or ParserTreeSitter.
	Kind string `yaml:"kind" json:"kind"`

	// Command is the argv of the parser program for ParserCommand.
	Command []string `yaml:"command" json:"command"`

	// Timeout bounds a single parse, as a time.ParseDuration string.
	Timeout string `yaml:"timeout" json:"timeout,omitempty"`
}

// TimeoutDuration returns the parsed Timeout, or zero if unset.
func (p ParserConfig) TimeoutDuration() (time.Duration, error) {
	if p.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("parser.timeout: %w", err)
	}
	return d, nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Whitelist: DefaultWhitelist,
		Features:  append([]string(nil), DefaultFeatures...),
		Include:   []string{},
		Jobs:      1,
		Parser: ParserConfig{
			Kind:    ParserCommand,
			Command: []string{},
		},
	}
}

// ValidationError reports an invalid configuration value.
type ValidationError struct {
	Path    string
	Field   string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	switch {
	case e.Pos.IsValid():
		fmt.Fprintf(&b, "%s:%d:%d: ", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
	case e.Path != "":
		b.WriteString(e.Path + ": ")
	}
	if e.Field != "" {
		b.WriteString(e.Field + ": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// Load reads the config file at path, choosing the format by extension.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		cfg, err = decodeYAML(path, data)
	case ".cue":
		cfg, err = decodeCUE(path, data)
	default:
		return Config{}, fmt.Errorf("config %s: unsupported extension %q (want .yaml, .yml or .cue)", path, ext)
	}
	if err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Path = path
		}
		return Config{}, err
	}

	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.resolve(abs)
	return cfg, nil
}

func decodeYAML(path string, data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &ValidationError{Path: path, Message: err.Error()}
	}
	return cfg, nil
}

func decodeCUE(path string, data []byte) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("config schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return Config{}, cueError(path, err)
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, cueError(path, err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return Config{}, cueError(path, err)
	}
	return cfg, nil
}

// cueError keeps the first CUE error and its position.
func cueError(path string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ValidationError{Path: path, Message: err.Error()}
	}
	first := errs[0]
	format, args := first.Msg()
	verr := &ValidationError{
		Path:    path,
		Field:   strings.Join(first.Path(), "."),
		Message: fmt.Sprintf(format, args...),
	}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		verr.Pos = positions[0]
	}
	return verr
}

// Validate checks values neither format can express as a type.
func (c Config) Validate() error {
	switch c.Parser.Kind {
	case ParserCommand, ParserTreeSitter:
	default:
		return &ValidationError{Field: "parser.kind", Message: fmt.Sprintf("unknown parser kind %q", c.Parser.Kind)}
	}
	if c.Jobs < 1 {
		return &ValidationError{Field: "jobs", Message: fmt.Sprintf("must be at least 1, got %d", c.Jobs)}
	}
	if c.Whitelist == "" {
		return &ValidationError{Field: "whitelist", Message: "must not be empty"}
	}
	if _, err := c.Parser.TimeoutDuration(); err != nil {
		return &ValidationError{Field: "parser.timeout", Message: err.Error()}
	}
	return nil
}

// resolve makes relative paths absolute against dir. A parser command is
// resolved only when it names a path rather than a program on PATH.
func (c *Config) resolve(dir string) {
	c.Corpus = resolvePath(dir, c.Corpus)
	c.Whitelist = resolvePath(dir, c.Whitelist)
	c.Database = resolvePath(dir, c.Database)
	if len(c.Parser.Command) > 0 && strings.ContainsRune(c.Parser.Command[0], '/') {
		c.Parser.Command[0] = resolvePath(dir, filepath.FromSlash(c.Parser.Command[0]))
	}
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
