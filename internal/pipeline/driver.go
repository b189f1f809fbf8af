package pipeline

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lecturelab/chalktalk/internal/config"
	"github.com/lecturelab/chalktalk/internal/denoiser"
	"github.com/lecturelab/chalktalk/internal/ffmpegcli"
	"github.com/lecturelab/chalktalk/internal/probe"
)

// State names one step of the per-file pipeline. Failed is terminal and
// reachable from every non-terminal state.
type State string

const (
	StatePending      State = "pending"
	StateConverting   State = "converting"
	StateSplitting    State = "splitting"
	StateDenoising    State = "denoising"
	StateReassembling State = "reassembling"
	StateProcessing   State = "processing"
	StateEncoding     State = "encoding"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Event is a progress notification emitted while a file moves through the
// pipeline. ChunkDone/ChunkTotal are only meaningful in StateDenoising.
type Event struct {
	FileIndex  int
	FileTotal  int
	InputPath  string
	State      State
	ChunkDone  int
	ChunkTotal int
}

// FileResult is the outcome of processing one input file.
type FileResult struct {
	Input        probe.InputFile
	OutputPath   string
	Skipped      bool // output already existed; nothing was recomputed
	Chunks       int
	Measurements *LoudnormMeasurements
	Elapsed      time.Duration
	Err          error
	FailedState  State // set when Err != nil
}

// Failed reports whether the file ended in the terminal failed state.
func (r FileResult) Failed() bool { return r.Err != nil }

// Option configures a Driver.
type Option func(*Driver)

// WithEventFunc installs a progress callback. The callback runs on the
// processing goroutine and must not block.
func WithEventFunc(fn func(Event)) Option {
	return func(d *Driver) { d.onEvent = fn }
}

// WithResultFunc installs a per-file completion callback, invoked from
// the processing goroutine as each file finishes.
func WithResultFunc(fn func(index int, result FileResult)) Option {
	return func(d *Driver) { d.onResult = fn }
}

// WithHumFrequency overrides the detected mains frequency.
func WithHumFrequency(hz float64) Option {
	return func(d *Driver) { d.humFrequency = hz }
}

// Driver orchestrates the pipeline per input file: idempotent skip,
// scoped workspace, staged execution, and whole-file error recovery.
type Driver struct {
	cfg          config.Config
	ffmpeg       ffmpegcli.Invoker
	engine       denoiser.Engine
	humFrequency float64
	onEvent      func(Event)
	onResult     func(int, FileResult)

	splitter    *Splitter
	runner      *DenoiseRunner
	reassembler *Reassembler
	encoder     *Encoder
}

// NewDriver wires the pipeline components for the given configuration.
func NewDriver(cfg config.Config, ffmpeg ffmpegcli.Invoker, engine denoiser.Engine, opts ...Option) *Driver {
	d := &Driver{
		cfg:          cfg,
		ffmpeg:       ffmpeg,
		engine:       engine,
		humFrequency: 50,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.splitter = NewSplitter(ffmpeg)
	d.runner = NewDenoiseRunner(engine)
	d.reassembler = NewReassembler(ffmpeg)
	d.encoder = NewEncoder(ffmpeg)
	return d
}

// checker is implemented by engine clients that can verify their binary
// exists before the run starts.
type checker interface {
	Check() error
}

// CheckTools verifies the required external binaries before any file is
// processed. A missing tool aborts the whole run.
func (d *Driver) CheckTools() error {
	if c, ok := d.ffmpeg.(checker); ok {
		if err := c.Check(); err != nil {
			return wrap(ErrToolMissing, StatePending, "", err)
		}
	}
	if c, ok := d.engine.(checker); ok {
		if err := c.Check(); err != nil {
			return wrap(ErrToolMissing, StatePending, "", err)
		}
	}
	return nil
}

// Run processes the working set. Per-file failures are recorded in the
// corresponding FileResult and never abort the batch. With Jobs == 1
// (the default) files run strictly sequentially; higher values process
// several files at once under a hard concurrency cap, which is safe
// because workspaces are per-file.
func (d *Driver) Run(ctx context.Context, files []probe.InputFile) []FileResult {
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Jobs)
	for i, in := range files {
		i, in := i, in
		g.Go(func() error {
			results[i] = d.ProcessFile(gctx, in, i, len(files))
			if d.onResult != nil {
				d.onResult(i, results[i])
			}
			return nil
		})
	}
	// Goroutines only report through results; Wait cannot fail.
	_ = g.Wait()
	return results
}

// ProcessFile runs the full state machine for one input file.
func (d *Driver) ProcessFile(ctx context.Context, in probe.InputFile, index, total int) FileResult {
	start := time.Now()
	result := FileResult{Input: in, OutputPath: OutputPathFor(in)}
	state := StatePending

	emit := func(s State, chunkDone, chunkTotal int) {
		state = s
		if d.onEvent != nil {
			d.onEvent(Event{
				FileIndex:  index,
				FileTotal:  total,
				InputPath:  in.Path,
				State:      s,
				ChunkDone:  chunkDone,
				ChunkTotal: chunkTotal,
			})
		}
	}
	fail := func(err error) FileResult {
		result.Err = err
		result.FailedState = state
		result.Elapsed = time.Since(start)
		emit(StateFailed, 0, 0)
		return result
	}

	emit(StatePending, 0, 0)

	// Idempotent re-run: an existing output short-circuits straight to
	// done, performing no work and raising no error.
	if _, err := os.Stat(result.OutputPath); err == nil {
		result.Skipped = true
		result.Elapsed = time.Since(start)
		emit(StateDone, 0, 0)
		return result
	}

	emit(StateConverting, 0, 0)
	ws, err := NewWorkspace(in.Stem, d.cfg.KeepWorkspace)
	if err != nil {
		return fail(wrap(nil, StateConverting, "", err))
	}
	defer ws.Release() //nolint:errcheck

	canonical, err := d.splitter.Canonicalize(ctx, in.Path, ws)
	if err != nil {
		return fail(err)
	}

	emit(StateSplitting, 0, 0)
	segments, err := d.splitter.Split(ctx, canonical, d.cfg.ChunkSeconds, ws)
	if err != nil {
		return fail(err)
	}
	result.Chunks = len(segments)

	emit(StateDenoising, 0, len(segments))
	cleaned, err := d.runner.Run(ctx, segments, ws, func(done, totalChunks int) {
		emit(StateDenoising, done, totalChunks)
	})
	if err != nil {
		return fail(err)
	}

	emit(StateReassembling, 0, 0)
	joined, err := d.reassembler.Reassemble(ctx, cleaned, ws)
	if err != nil {
		return fail(err)
	}

	emit(StateProcessing, 0, 0)
	processor := NewLoudnessProcessor(d.ffmpeg, LoudnessParamsFrom(d.cfg, d.humFrequency))
	processed, measurements, err := processor.Process(ctx, joined, ws)
	if err != nil {
		return fail(err)
	}
	result.Measurements = measurements

	emit(StateEncoding, 0, 0)
	if err := d.encoder.Encode(ctx, processed, result.OutputPath, d.cfg.BitrateKbps); err != nil {
		return fail(err)
	}
	// Best-effort metadata; the encode already succeeded.
	_ = tagOutput(result.OutputPath, in.Stem)

	result.Elapsed = time.Since(start)
	emit(StateDone, 0, 0)
	return result
}
