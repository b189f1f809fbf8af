package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lecturelab/chalktalk/internal/config"
	"github.com/lecturelab/chalktalk/internal/ffmpegcli"
	"github.com/lecturelab/chalktalk/internal/mains"
)

// LoudnessParams configures the dynamics chain applied to the
// reassembled stream. Order is fixed: hum notch, then compressor, then
// loudness normalization. Compression first flattens the dynamic range so
// loudnorm targets a more uniform signal instead of boosting transient
// peaks into the ceiling.
type LoudnessParams struct {
	// Compressor
	CompThreshold float64 // dBFS
	CompRatio     float64
	CompAttack    float64 // ms
	CompRelease   float64 // ms

	// Loudness normalization
	TargetLUFS    float64
	LoudnessRange float64
	TruePeak      float64 // dBTP

	// Mains hum notch; HumHarmonics == 0 disables the notch entirely.
	HumFrequency float64 // Hz, 50 or 60
	HumHarmonics int
}

// LoudnessParamsFrom builds the chain parameters from run configuration
// and the detected mains frequency.
func LoudnessParamsFrom(cfg config.Config, humFrequency float64) LoudnessParams {
	return LoudnessParams{
		CompThreshold: cfg.CompThreshold,
		CompRatio:     cfg.CompRatio,
		CompAttack:    cfg.CompAttack,
		CompRelease:   cfg.CompRelease,
		TargetLUFS:    cfg.TargetLUFS,
		LoudnessRange: cfg.LoudnessRange,
		TruePeak:      cfg.TruePeak,
		HumFrequency:  humFrequency,
		HumHarmonics:  cfg.HumHarmonics,
	}
}

// dbToLinear converts a decibel value to linear amplitude for filters
// that take linear parameters (acompressor's threshold).
func dbToLinear(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// buildHumNotchFilter builds a cascade of narrow band-rejects at the
// mains fundamental and its harmonics. Hum energy above the fourth or
// fifth harmonic is usually below the noise floor, so a short cascade is
// enough.
func (p LoudnessParams) buildHumNotchFilter() string {
	if p.HumHarmonics <= 0 || p.HumFrequency <= 0 {
		return ""
	}
	notches := make([]string, 0, p.HumHarmonics)
	for _, freq := range mains.Harmonics(p.HumFrequency, p.HumHarmonics) {
		notches = append(notches,
			fmt.Sprintf("bandreject=f=%.0f:width_type=q:w=30", freq))
	}
	return strings.Join(notches, ",")
}

// buildCompressorFilter builds the acompressor spec. RMS detection suits
// speech better than peak detection: level rides on syllable energy, not
// plosive transients.
func (p LoudnessParams) buildCompressorFilter() string {
	return fmt.Sprintf(
		"acompressor=threshold=%.6f:ratio=%.1f:attack=%.0f:release=%.0f:detection=rms",
		dbToLinear(p.CompThreshold),
		p.CompRatio,
		p.CompAttack,
		p.CompRelease,
	)
}

// buildLoudnormFilter builds the loudnorm spec. With measured values from
// the measurement pass, loudnorm runs with linear=true so the whole
// stream gets a single gain instead of the dynamic per-window gain that
// can pump on speech. Without them it runs in measurement mode, printing
// its JSON summary to stderr.
func (p LoudnessParams) buildLoudnormFilter(measured *LoudnormMeasurements) string {
	spec := fmt.Sprintf("loudnorm=I=%.1f:LRA=%.1f:TP=%.1f",
		p.TargetLUFS, p.LoudnessRange, p.TruePeak)
	if measured == nil {
		return spec + ":print_format=json"
	}
	return spec + fmt.Sprintf(
		":measured_I=%.2f:measured_LRA=%.2f:measured_TP=%.2f:measured_thresh=%.2f:offset=%.2f:linear=true",
		measured.InputI,
		measured.InputLRA,
		measured.InputTP,
		measured.InputThresh,
		measured.TargetOffset,
	)
}

// FilterChain assembles the full -af argument for one pass.
func (p LoudnessParams) FilterChain(measured *LoudnormMeasurements) string {
	parts := make([]string, 0, 3)
	if notch := p.buildHumNotchFilter(); notch != "" {
		parts = append(parts, notch)
	}
	parts = append(parts, p.buildCompressorFilter())
	parts = append(parts, p.buildLoudnormFilter(measured))
	return strings.Join(parts, ",")
}

// loudnormStats is the raw JSON the loudnorm filter prints. All fields
// are strings in ffmpeg's output, including the numbers.
type loudnormStats struct {
	InputI            string `json:"input_i"`
	InputTP           string `json:"input_tp"`
	InputLRA          string `json:"input_lra"`
	InputThresh       string `json:"input_thresh"`
	OutputI           string `json:"output_i"`
	OutputTP          string `json:"output_tp"`
	OutputLRA         string `json:"output_lra"`
	OutputThresh      string `json:"output_thresh"`
	NormalizationType string `json:"normalization_type"`
	TargetOffset      string `json:"target_offset"`
}

// LoudnormMeasurements holds the parsed measurement-pass results.
type LoudnormMeasurements struct {
	InputI       float64 // integrated loudness, LUFS
	InputTP      float64 // true peak, dBTP
	InputLRA     float64 // loudness range, LU
	InputThresh  float64
	TargetOffset float64
}

// parseLoudnormJSON extracts and parses the JSON object loudnorm prints
// on stderr during the measurement pass.
func parseLoudnormJSON(stderr string) (*LoudnormMeasurements, error) {
	start := strings.Index(stderr, "{")
	end := strings.LastIndex(stderr, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON found in loudnorm output (%d bytes captured)", len(stderr))
	}

	var stats loudnormStats
	if err := json.Unmarshal([]byte(stderr[start:end+1]), &stats); err != nil {
		return nil, fmt.Errorf("parse loudnorm JSON: %w", err)
	}

	m := &LoudnormMeasurements{}
	for _, field := range []struct {
		raw  string
		dst  *float64
		name string
	}{
		{stats.InputI, &m.InputI, "input_i"},
		{stats.InputTP, &m.InputTP, "input_tp"},
		{stats.InputLRA, &m.InputLRA, "input_lra"},
		{stats.InputThresh, &m.InputThresh, "input_thresh"},
		{stats.TargetOffset, &m.TargetOffset, "target_offset"},
	} {
		v, err := strconv.ParseFloat(field.raw, 64)
		if err != nil {
			return nil, fmt.Errorf("loudnorm %s=%q: %w", field.name, field.raw, err)
		}
		*field.dst = v
	}
	return m, nil
}

// LoudnessProcessor applies the dynamics chain in two passes: a
// measurement pass feeding loudnorm's JSON summary back into a linear
// processing pass.
type LoudnessProcessor struct {
	ffmpeg ffmpegcli.Invoker
	params LoudnessParams
}

// NewLoudnessProcessor constructs a processor for the given parameters.
func NewLoudnessProcessor(ffmpeg ffmpegcli.Invoker, params LoudnessParams) *LoudnessProcessor {
	return &LoudnessProcessor{ffmpeg: ffmpeg, params: params}
}

// Params returns the configured chain parameters.
func (p *LoudnessProcessor) Params() LoudnessParams { return p.params }

// Process runs both passes over inputPath, writing the processed stream
// into the workspace. The returned measurements describe the input as
// seen after the compressor, which is what loudnorm normalizes.
func (p *LoudnessProcessor) Process(ctx context.Context, inputPath string, ws *Workspace) (string, *LoudnormMeasurements, error) {
	stderr, err := p.ffmpeg.Run(ctx,
		"-i", inputPath,
		"-af", p.params.FilterChain(nil),
		"-f", "null", "-",
	)
	if err != nil {
		return "", nil, wrap(nil, StateProcessing, "measurement pass", err)
	}

	measured, err := parseLoudnormJSON(stderr)
	if err != nil {
		return "", nil, wrap(nil, StateProcessing, "measurement pass", err)
	}

	out := ws.Path(processedName)
	_, err = p.ffmpeg.Run(ctx,
		"-y",
		"-i", inputPath,
		"-af", p.params.FilterChain(measured),
		"-ar", strconv.Itoa(CanonicalSampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		out,
	)
	if err != nil {
		return "", nil, wrap(nil, StateProcessing, "processing pass", err)
	}
	return out, measured, nil
}
