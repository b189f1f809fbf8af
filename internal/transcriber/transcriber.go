// Package transcriber wraps the external speech-to-text engine.
//
// The engine is any whisper-style CLI that accepts an audio file and
// writes a JSON transcript into a chosen directory. Transcription is the
// slow step of the workflow and runs entirely out of process; this
// package only manages the invocation and locates the artifact.
package transcriber

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var commandContext = exec.CommandContext

// Option configures the CLI client.
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

// CLI invokes the transcription engine as a subprocess.
type CLI struct {
	binary    string
	model     string
	extraArgs []string
}

// NewCLI constructs a transcriber client using defaults.
func NewCLI(opts ...Option) *CLI {
	c := &CLI{binary: "whisper"}
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
		return fmt.Errorf("transcription engine %q not found on PATH", c.binary)
	}
	return nil
}

// Transcribe runs the engine on audioPath with JSON output directed into
// outputDir, and returns the path of the JSON artifact. Whisper names the
// artifact after the input stem, so the location is deterministic; the
// returned path is verified to exist before Transcribe reports success.
func (c *CLI) Transcribe(ctx context.Context, audioPath, outputDir string) (string, error) {
	if audioPath == "" {
		return "", errors.New("audio path required")
	}
	if outputDir == "" {
		return "", errors.New("output directory required")
	}

	args := make([]string, 0, len(c.extraArgs)+7)
	args = append(args, c.extraArgs...)
	if c.model != "" {
		args = append(args, "--model", c.model)
	}
	args = append(args, "--output_format", "json", "--output_dir", outputDir, audioPath)

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %w: %s", c.binary, strings.Join(args, " "), err, outputTail(output.String()))
	}

	artifact := filepath.Join(outputDir, stem(audioPath)+".json")
	if _, err := os.Stat(artifact); err != nil {
		return "", fmt.Errorf("engine exited cleanly but left no transcript at %s", artifact)
	}
	return artifact, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func outputTail(s string) string {
	const maxLines = 6
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
