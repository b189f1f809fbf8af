package pipeline

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV writes a mono 48 kHz 16-bit sine tone of the given
// duration. Chunk discovery reads durations from WAV headers, so fixtures
// must be real WAV files.
func writeTestWAV(t *testing.T, path string, seconds float64) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}

	enc := wav.NewEncoder(f, CanonicalSampleRate, 16, 1, 1)
	n := int(seconds * CanonicalSampleRate)
	data := make([]int, n)
	for i := range data {
		phase := 2 * math.Pi * 440 * float64(i) / CanonicalSampleRate
		data[i] = int(0.3 * math.Sin(phase) * math.MaxInt16)
	}
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: 1, SampleRate: CanonicalSampleRate},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav data: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close wav encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

// fakeFFmpeg records every invocation and delegates behaviour to handle.
// Handlers typically write the output file named by the argument list,
// mimicking what the real binary would leave on disk.
type fakeFFmpeg struct {
	mu     sync.Mutex
	calls  [][]string
	handle func(args []string) (stderr string, err error)
}

func (f *fakeFFmpeg) Run(_ context.Context, args ...string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, args)
	f.mu.Unlock()
	if f.handle == nil {
		return "", nil
	}
	return f.handle(args)
}

func (f *fakeFFmpeg) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// argValue returns the argument following flag, or "".
func argValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func hasArgPair(args []string, flag, value string) bool {
	return argValue(args, flag) == value
}

// pipelineFFmpeg fakes a complete run: it dispatches on the argument
// shape of each pipeline stage and writes plausible outputs.
// chunkSeconds controls how many chunks the fake split step produces
// from the canonical duration.
func pipelineFFmpeg(t *testing.T, canonicalSeconds float64, chunkSeconds float64) *fakeFFmpeg {
	t.Helper()
	f := &fakeFFmpeg{}
	f.handle = func(args []string) (string, error) {
		out := args[len(args)-1]
		switch {
		case hasArgPair(args, "-f", "segment"):
			dir := filepath.Dir(out)
			remaining := canonicalSeconds
			for i := 0; remaining > 1e-9; i++ {
				d := math.Min(chunkSeconds, remaining)
				writeTestWAV(t, filepath.Join(dir, chunkName(i)), d)
				remaining -= d
			}
			return "", nil
		case hasArgPair(args, "-f", "concat"):
			writeTestWAV(t, out, canonicalSeconds)
			return "", nil
		case hasArgPair(args, "-f", "null"):
			return loudnormMeasureStderr, nil
		case strings.Contains(strings.Join(args, " "), "libmp3lame"):
			if err := os.WriteFile(out, []byte("mp3"), 0o644); err != nil {
				return "", err
			}
			return "", nil
		default: // canonicalize or the loudness processing pass
			writeTestWAV(t, out, canonicalSeconds)
			return "", nil
		}
	}
	return f
}

func chunkName(index int) string {
	return fmt.Sprintf(chunkPattern, index)
}

// loudnormMeasureStderr resembles what ffmpeg prints for
// loudnorm=...:print_format=json during the measurement pass.
const loudnormMeasureStderr = `[Parsed_loudnorm_2 @ 0x5555]
{
	"input_i" : "-28.31",
	"input_tp" : "-6.12",
	"input_lra" : "14.20",
	"input_thresh" : "-39.10",
	"output_i" : "-16.10",
	"output_tp" : "-1.60",
	"output_lra" : "10.80",
	"output_thresh" : "-26.90",
	"normalization_type" : "dynamic",
	"target_offset" : "0.10"
}`

// fakeEngine is a scriptable denoiser.Engine.
type fakeEngine struct {
	mu      sync.Mutex
	inputs  []string
	enhance func(inputPath, outputDir string) error
}

func (e *fakeEngine) Enhance(_ context.Context, inputPath, outputDir string) error {
	e.mu.Lock()
	e.inputs = append(e.inputs, inputPath)
	e.mu.Unlock()
	if e.enhance == nil {
		return copyFile(inputPath, filepath.Join(outputDir, filepath.Base(inputPath)))
	}
	return e.enhance(inputPath, outputDir)
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws, err := NewWorkspace("test", false)
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	t.Cleanup(func() { _ = ws.Release() })
	return ws
}
