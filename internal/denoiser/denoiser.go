// Package denoiser wraps the external speech enhancement engine.
//
// The engine is any CLI that accepts an input file and an output
// directory and writes one enhanced file per input (DeepFilterNet's
// deepFilter being the default). Engines are free to decorate the output
// filename; the pipeline's resolution policy absorbs that drift.
package denoiser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Engine runs one enhancement pass over a single segment.
type Engine interface {
	Enhance(ctx context.Context, inputPath, outputDir string) error
}

// Option configures the CLI engine.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithModel selects a model identifier, passed as --model.
func WithModel(model string) Option {
	return func(c *CLI) { c.model = model }
}

// WithExtraArgs appends free-form arguments, split on whitespace.
func WithExtraArgs(args string) Option {
	return func(c *CLI) { c.extraArgs = strings.Fields(args) }
}

// WithForceCPU forwards a CPU device hint, keeping the engine off the GPU.
func WithForceCPU(force bool) Option {
	return func(c *CLI) { c.forceCPU = force }
}

// CLI invokes the engine as a subprocess, one segment per run.
type CLI struct {
	binary    string
	model     string
	extraArgs []string
	forceCPU  bool
}

// NewCLI constructs an engine client using defaults.
func NewCLI(opts ...Option) *CLI {
	c := &CLI{binary: "deepFilter"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Binary returns the configured binary name.
func (c *CLI) Binary() string { return c.binary }

// Check reports whether the engine binary is resolvable on PATH.
func (c *CLI) Check() error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return fmt.Errorf("denoise engine %q not found on PATH", c.binary)
	}
	return nil
}

// Enhance runs the engine on inputPath, directing output into outputDir.
// The call blocks until the engine exits; no retry is attempted, so a
// transient engine failure surfaces immediately.
func (c *CLI) Enhance(ctx context.Context, inputPath, outputDir string) error {
	if inputPath == "" {
		return errors.New("input path required")
	}
	if outputDir == "" {
		return errors.New("output directory required")
	}

	args := make([]string, 0, len(c.extraArgs)+6)
	args = append(args, c.extraArgs...)
	if c.model != "" {
		args = append(args, "--model", c.model)
	}
	if c.forceCPU {
		args = append(args, "--device", "cpu")
	}
	args = append(args, "--output-dir", outputDir, inputPath)

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w: %s", c.binary, strings.Join(args, " "), err, outputTail(output.String()))
	}
	return nil
}

func outputTail(s string) string {
	const maxLines = 6
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
