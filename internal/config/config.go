// Package config holds the run configuration for the chalktalk pipeline.
//
// A Config is constructed exactly once per run (defaults, then an optional
// TOML file, then command-line overrides) and passed to every component.
// No component reads environment state or globals directly.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config carries every tunable the pipeline consumes.
//
// TOML keys match the struct tags; the CLI layer maps its flags onto the
// same fields after the file (if any) has been loaded.
type Config struct {
	// Chunking
	ChunkSeconds int `toml:"chunk_seconds"` // maximum segment length fed to the denoiser

	// Denoising engine
	DenoiseBin   string `toml:"denoise_bin"`   // external engine binary name
	DenoiseModel string `toml:"denoise_model"` // model identifier, empty for engine default
	DenoiseArgs  string `toml:"denoise_args"`  // free-form extra arguments, whitespace separated
	ForceCPU     bool   `toml:"force_cpu"`     // forward a CPU device hint to the engine

	// Loudness chain
	TargetLUFS    float64 `toml:"target_lufs"`       // integrated loudness target (I)
	LoudnessRange float64 `toml:"loudness_range"`    // loudness range target (LRA)
	TruePeak      float64 `toml:"true_peak"`         // true-peak ceiling in dBTP
	CompThreshold float64 `toml:"comp_threshold_db"` // compressor threshold in dBFS
	CompRatio     float64 `toml:"comp_ratio"`
	CompAttack    float64 `toml:"comp_attack_ms"`
	CompRelease   float64 `toml:"comp_release_ms"`
	HumHarmonics  int     `toml:"hum_harmonics"` // mains hum notch harmonics, 0 disables the notch

	// Output
	BitrateKbps int `toml:"bitrate_kbps"` // MP3 bitrate for the distribution file

	// Transcription
	TranscribeBin string `toml:"transcribe_bin"` // external speech-to-text binary

	// Run behaviour
	KeepWorkspace bool `toml:"keep_workspace"` // retain per-file workspaces for debugging
	Jobs          int  `toml:"jobs"`           // concurrent files; 1 keeps the resource-bound default
}

// Default returns the configuration used when nothing overrides it.
// Loudness defaults follow the common spoken-word target of -16 LUFS with
// a -1.5 dBTP ceiling; chunks default to ten minutes, which keeps the
// denoiser's working set bounded on modest GPUs.
func Default() Config {
	return Config{
		ChunkSeconds:  600,
		DenoiseBin:    "deepFilter",
		TargetLUFS:    -16.0,
		LoudnessRange: 11.0,
		TruePeak:      -1.5,
		CompThreshold: -20.0,
		CompRatio:     3.0,
		CompAttack:    20.0,
		CompRelease:   250.0,
		HumHarmonics:  4,
		BitrateKbps:   96,
		TranscribeBin: "whisper",
		Jobs:          1,
	}
}

// Load reads a TOML file over the defaults. An empty path returns the
// defaults untouched.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot honour.
func (c Config) Validate() error {
	if c.ChunkSeconds <= 0 {
		return fmt.Errorf("chunk_seconds must be positive, got %d", c.ChunkSeconds)
	}
	if c.DenoiseBin == "" {
		return fmt.Errorf("denoise_bin must not be empty")
	}
	if c.BitrateKbps <= 0 {
		return fmt.Errorf("bitrate_kbps must be positive, got %d", c.BitrateKbps)
	}
	if c.TargetLUFS > 0 || c.TargetLUFS < -70 {
		return fmt.Errorf("target_lufs %.1f outside loudnorm range [-70, 0]", c.TargetLUFS)
	}
	if c.LoudnessRange < 1 || c.LoudnessRange > 50 {
		return fmt.Errorf("loudness_range %.1f outside loudnorm range [1, 50]", c.LoudnessRange)
	}
	if c.TruePeak > 0 || c.TruePeak < -9 {
		return fmt.Errorf("true_peak %.1f outside loudnorm range [-9, 0]", c.TruePeak)
	}
	if c.CompRatio < 1 {
		return fmt.Errorf("comp_ratio must be at least 1, got %.2f", c.CompRatio)
	}
	if c.CompThreshold > 0 {
		return fmt.Errorf("comp_threshold_db must be at or below 0 dBFS, got %.1f", c.CompThreshold)
	}
	if c.CompAttack <= 0 || c.CompRelease <= 0 {
		return fmt.Errorf("compressor attack/release must be positive")
	}
	if c.HumHarmonics < 0 {
		return fmt.Errorf("hum_harmonics must not be negative, got %d", c.HumHarmonics)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	return nil
}
