package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lecturelab/chalktalk/internal/config"
	"github.com/lecturelab/chalktalk/internal/probe"
)

func testInput(t *testing.T, name string) probe.InputFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	writeTestWAV(t, path, 3)
	stem := name[:len(name)-len(filepath.Ext(name))]
	return probe.InputFile{Path: path, Stem: stem}
}

func TestDriverProcessesFile(t *testing.T) {
	cfg := config.Default()
	cfg.ChunkSeconds = 1

	in := testInput(t, "lecture01.wav")
	f := pipelineFFmpeg(t, 3, 1)

	var events []Event
	d := NewDriver(cfg, f, &fakeEngine{}, WithEventFunc(func(e Event) {
		events = append(events, e)
	}))

	res := d.ProcessFile(context.Background(), in, 0, 1)
	if res.Err != nil {
		t.Fatalf("ProcessFile: %v", res.Err)
	}
	if res.Skipped {
		t.Error("fresh input should not be skipped")
	}
	if res.Chunks != 3 {
		t.Errorf("Chunks = %d, want 3", res.Chunks)
	}
	if res.Measurements == nil || res.Measurements.InputI != -28.31 {
		t.Errorf("Measurements = %+v", res.Measurements)
	}
	if _, err := os.Stat(res.OutputPath); err != nil {
		t.Errorf("output not written: %v", err)
	}
	if res.OutputPath != filepath.Join(filepath.Dir(in.Path), "lecture01_denoised.mp3") {
		t.Errorf("OutputPath = %q", res.OutputPath)
	}

	wantStates := []State{
		StatePending, StateConverting, StateSplitting, StateDenoising,
		StateReassembling, StateProcessing, StateEncoding, StateDone,
	}
	var distinct []State
	for _, e := range events {
		if len(distinct) == 0 || distinct[len(distinct)-1] != e.State {
			distinct = append(distinct, e.State)
		}
	}
	if len(distinct) != len(wantStates) {
		t.Fatalf("states = %v, want %v", distinct, wantStates)
	}
	for i, s := range wantStates {
		if distinct[i] != s {
			t.Errorf("state %d = %s, want %s", i, distinct[i], s)
		}
	}
}

func TestDriverSkipsExistingOutput(t *testing.T) {
	in := testInput(t, "lecture02.wav")
	existing := OutputPathFor(in)
	writeFile(t, existing)

	f := &fakeFFmpeg{}
	engine := &fakeEngine{}
	d := NewDriver(config.Default(), f, engine)

	res := d.ProcessFile(context.Background(), in, 0, 1)
	if res.Err != nil {
		t.Fatalf("ProcessFile: %v", res.Err)
	}
	if !res.Skipped {
		t.Error("expected Skipped for existing output")
	}
	if f.callCount() != 0 {
		t.Errorf("ffmpeg ran %d times during a skip", f.callCount())
	}
	if len(engine.inputs) != 0 {
		t.Errorf("denoiser ran during a skip")
	}
}

func TestDriverRunIsolatesFailures(t *testing.T) {
	cfg := config.Default()
	cfg.ChunkSeconds = 1

	files := []probe.InputFile{
		testInput(t, "a.wav"),
		testInput(t, "b.wav"),
		testInput(t, "c.wav"),
	}

	f := pipelineFFmpeg(t, 2, 1)
	engine := &fakeEngine{}
	engine.enhance = func(inputPath, outputDir string) error {
		// Fail every chunk of the second file only. Workspace directories
		// embed the input stem, so chunk paths identify their file.
		if strings.Contains(inputPath, "chalktalk-b-") {
			return errors.New("model crashed")
		}
		return copyFile(inputPath, filepath.Join(outputDir, filepath.Base(inputPath)))
	}

	d := NewDriver(cfg, f, engine)
	results := d.Run(context.Background(), files)

	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("healthy files failed: %v, %v", results[0].Err, results[2].Err)
	}
	if results[1].Err == nil {
		t.Fatal("broken file should have failed")
	}
	if results[1].FailedState != StateDenoising {
		t.Errorf("FailedState = %s, want %s", results[1].FailedState, StateDenoising)
	}
	for _, i := range []int{0, 2} {
		if _, err := os.Stat(results[i].OutputPath); err != nil {
			t.Errorf("file %d output missing: %v", i, err)
		}
	}
	if _, err := os.Stat(results[1].OutputPath); !os.IsNotExist(err) {
		t.Error("failed file should not leave an output")
	}
}

func TestDriverToolCheck(t *testing.T) {
	d := NewDriver(config.Default(), &fakeFFmpeg{}, failingChecker{})
	err := d.CheckTools()
	if !errors.Is(err, ErrToolMissing) {
		t.Fatalf("error = %v, want ErrToolMissing", err)
	}
}

type failingChecker struct{}

func (failingChecker) Enhance(context.Context, string, string) error { return nil }
func (failingChecker) Check() error                                  { return errors.New("deepFilter: not found") }
