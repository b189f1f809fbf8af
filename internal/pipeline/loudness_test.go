package pipeline

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/lecturelab/chalktalk/internal/config"
)

func testLoudnessParams() LoudnessParams {
	return LoudnessParamsFrom(config.Default(), 50)
}

func TestFilterChainOrder(t *testing.T) {
	chain := testLoudnessParams().FilterChain(nil)

	notch := strings.Index(chain, "bandreject=")
	comp := strings.Index(chain, "acompressor=")
	norm := strings.Index(chain, "loudnorm=")
	if notch == -1 || comp == -1 || norm == -1 {
		t.Fatalf("chain missing a stage: %q", chain)
	}
	if !(notch < comp && comp < norm) {
		t.Errorf("stage order wrong in %q", chain)
	}
}

func TestHumNotchHarmonics(t *testing.T) {
	p := testLoudnessParams()
	p.HumFrequency = 60
	p.HumHarmonics = 3

	got := p.buildHumNotchFilter()
	want := "bandreject=f=60:width_type=q:w=30," +
		"bandreject=f=120:width_type=q:w=30," +
		"bandreject=f=180:width_type=q:w=30"
	if got != want {
		t.Errorf("notch = %q, want %q", got, want)
	}
}

func TestHumNotchDisabled(t *testing.T) {
	p := testLoudnessParams()
	p.HumHarmonics = 0
	if got := p.buildHumNotchFilter(); got != "" {
		t.Errorf("notch = %q, want empty", got)
	}
	if chain := p.FilterChain(nil); strings.Contains(chain, "bandreject") {
		t.Errorf("disabled notch still present: %q", chain)
	}
}

func TestCompressorThresholdIsLinear(t *testing.T) {
	p := testLoudnessParams()
	p.CompThreshold = -20

	spec := p.buildCompressorFilter()
	if !strings.Contains(spec, "threshold=0.100000") {
		t.Errorf("-20 dB should become linear 0.1: %q", spec)
	}
	if !strings.Contains(spec, "detection=rms") {
		t.Errorf("compressor should use RMS detection: %q", spec)
	}
}

func TestLoudnormFilterModes(t *testing.T) {
	p := testLoudnessParams()

	measure := p.buildLoudnormFilter(nil)
	if !strings.Contains(measure, "print_format=json") {
		t.Errorf("measurement spec missing json output: %q", measure)
	}
	if strings.Contains(measure, "linear=true") {
		t.Errorf("measurement spec must not be linear: %q", measure)
	}

	apply := p.buildLoudnormFilter(&LoudnormMeasurements{
		InputI: -28.31, InputTP: -6.12, InputLRA: 14.2, InputThresh: -39.1, TargetOffset: 0.1,
	})
	for _, want := range []string{
		"measured_I=-28.31", "measured_LRA=14.20", "measured_TP=-6.12",
		"measured_thresh=-39.10", "offset=0.10", "linear=true",
	} {
		if !strings.Contains(apply, want) {
			t.Errorf("apply spec missing %q: %q", want, apply)
		}
	}
	if strings.Contains(apply, "print_format") {
		t.Errorf("apply spec should not request json output: %q", apply)
	}
}

func TestParseLoudnormJSON(t *testing.T) {
	m, err := parseLoudnormJSON(loudnormMeasureStderr)
	if err != nil {
		t.Fatalf("parseLoudnormJSON: %v", err)
	}
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"InputI", m.InputI, -28.31},
		{"InputTP", m.InputTP, -6.12},
		{"InputLRA", m.InputLRA, 14.20},
		{"InputThresh", m.InputThresh, -39.10},
		{"TargetOffset", m.TargetOffset, 0.10},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestParseLoudnormJSONErrors(t *testing.T) {
	cases := []struct {
		name   string
		stderr string
	}{
		{"no JSON", "frame= 1234 fps=0.0 size=N/A"},
		{"empty", ""},
		{"bad number", `{"input_i":"loud","input_tp":"-6","input_lra":"14","input_thresh":"-39","target_offset":"0"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := parseLoudnormJSON(c.stderr); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestProcessTwoPasses(t *testing.T) {
	ws := newTestWorkspace(t)
	input := ws.Path("joined.wav")
	writeTestWAV(t, input, 1)

	f := pipelineFFmpeg(t, 1, 1)
	proc := NewLoudnessProcessor(f, testLoudnessParams())

	out, m, err := proc.Process(context.Background(), input, ws)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out != ws.Path(processedName) {
		t.Errorf("output = %q, want workspace %s", out, processedName)
	}
	if m == nil || m.InputI != -28.31 {
		t.Errorf("measurements = %+v, want input_i -28.31", m)
	}

	if f.callCount() != 2 {
		t.Fatalf("ffmpeg ran %d times, want 2", f.callCount())
	}
	first, second := f.calls[0], f.calls[1]
	if first[len(first)-1] != "-" || !hasArgPair(first, "-f", "null") {
		t.Errorf("first pass should discard output: %v", first)
	}
	if !strings.Contains(argValue(second, "-af"), "linear=true") {
		t.Errorf("second pass should apply measured linear gain: %v", second)
	}
	if !hasArgPair(second, "-c:a", "pcm_s16le") {
		t.Errorf("second pass should stay PCM: %v", second)
	}
}
