package parser

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"time"
)

// waitDelay bounds how long Parse waits for output pipes after the process
// has been killed.
const waitDelay = 2 * time.Second

// maxStderr caps the diagnostic text kept from a failing parse.
const maxStderr = 4096

// Command runs an external program once per parse.
//
// Protocol: the source text is written to stdin and two arguments are
// appended to the configured argv:
//
//	--source-type=<script|module>
//	--features=<comma-separated feature list>
//
// Exit status 0 means the source parsed. Any other outcome, including a
// timeout, is a parse error.
type Command struct {
	argv    []string
	path    string
	timeout time.Duration
}

// NewCommand resolves argv[0] on PATH. A zero timeout disables the limit.
func NewCommand(argv []string, timeout time.Duration) (*Command, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("%w: no command configured", ErrUnavailable)
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &Command{
		argv:    slices.Clone(argv),
		path:    path,
		timeout: timeout,
	}, nil
}

// Parse runs the command against source.
func (c *Command) Parse(ctx context.Context, source string, opts Options) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := append(slices.Clone(c.argv[1:]),
		"--source-type="+string(opts.SourceType),
		"--features="+strings.Join(opts.Features, ","),
	)

	cmd := exec.CommandContext(ctx, c.path, args...)
	cmd.Stdin = strings.NewReader(source)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderr {
			msg = msg[:maxStderr]
		}
		if ctx.Err() != nil {
			return fmt.Errorf("parse command: %w", ctx.Err())
		}
		if msg == "" {
			return fmt.Errorf("parse command: %w", err)
		}
		return fmt.Errorf("parse command: %w: %s", err, msg)
	}
	return nil
}

// String returns the configured command line.
func (c *Command) String() string {
	return strings.Join(c.argv, " ")
}
