// Package ffmpegcli wraps the system ffmpeg binary.
//
// Every transcoding step in the pipeline is an ffmpeg invocation; this
// package owns process execution and stderr capture so the pipeline code
// deals only in argument lists.
package ffmpegcli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// commandContext is swapped out by tests.
var commandContext = exec.CommandContext

// Invoker runs ffmpeg with the given arguments and returns captured
// stderr. ffmpeg writes all diagnostics (including loudnorm's JSON
// summary) to stderr, so the capture is part of the contract.
type Invoker interface {
	Run(ctx context.Context, args ...string) (stderr string, err error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(r *Runner) {
		if binary != "" {
			r.binary = binary
		}
	}
}

// Runner invokes the ffmpeg executable found on PATH.
type Runner struct {
	binary string
}

// New constructs a Runner using defaults.
func New(opts ...Option) *Runner {
	r := &Runner{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Binary returns the configured binary name.
func (r *Runner) Binary() string { return r.binary }

// Check reports whether the configured binary is resolvable on PATH.
func (r *Runner) Check() error {
	return Check(r.binary)
}

// Check reports whether binary is resolvable on PATH.
func Check(binary string) error {
	if strings.TrimSpace(binary) == "" {
		return fmt.Errorf("binary name is empty")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("binary %q not found on PATH", binary)
	}
	return nil
}

// Run executes ffmpeg with quiet-terminal defaults prepended. The full
// captured stderr is returned even on failure so callers can parse filter
// output; the error message carries only the tail.
func (r *Runner) Run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-hide_banner", "-nostdin"}, args...)
	cmd := commandContext(ctx, r.binary, full...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stderr.String(), fmt.Errorf("%s %s: %w: %s",
			r.binary, strings.Join(args, " "), err, stderrTail(stderr.String()))
	}
	return stderr.String(), nil
}

// stderrTail keeps error messages readable: ffmpeg can emit kilobytes of
// progress lines before the line that matters.
func stderrTail(s string) string {
	const maxLines = 6
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
