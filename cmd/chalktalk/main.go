package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/lecturelab/chalktalk/internal/cli"
	"github.com/lecturelab/chalktalk/internal/config"
	"github.com/lecturelab/chalktalk/internal/denoiser"
	"github.com/lecturelab/chalktalk/internal/ffmpegcli"
	"github.com/lecturelab/chalktalk/internal/mains"
	"github.com/lecturelab/chalktalk/internal/pipeline"
	"github.com/lecturelab/chalktalk/internal/probe"
	"github.com/lecturelab/chalktalk/internal/report"
	"github.com/lecturelab/chalktalk/internal/transcriber"
	"github.com/lecturelab/chalktalk/internal/transcript"
	"github.com/lecturelab/chalktalk/internal/ui"
)

var version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version information"`
	Config  string           `short:"c" type:"path" help:"Path to TOML config file (optional)"`
	Plain   bool             `help:"Plain line output even on a terminal"`

	Process    ProcessCmd    `cmd:"" help:"Clean up lecture recordings"`
	Transcript TranscriptCmd `cmd:"" help:"Format a whisper transcript as a PDF"`
}

// ProcessCmd runs the audio cleanup pipeline over a file or directory.
type ProcessCmd struct {
	Input string `arg:"" type:"path" help:"Audio file or directory of lecture recordings"`

	ChunkSeconds  *int     `help:"Maximum chunk length fed to the denoiser, in seconds"`
	DenoiseBin    *string  `help:"Denoising engine binary"`
	DenoiseModel  *string  `help:"Denoising engine model identifier"`
	DenoiseArgs   *string  `help:"Extra arguments passed to the denoising engine"`
	ForceCPU      *bool    `help:"Keep the denoising engine off the GPU"`
	Bitrate       *int     `name:"bitrate" help:"Output MP3 bitrate in kbps"`
	TargetLufs    *float64 `name:"target-lufs" help:"Integrated loudness target"`
	LoudnessRange *float64 `help:"Loudness range target in LU"`
	TruePeak      *float64 `help:"True-peak ceiling in dBTP"`
	HumFreq       *float64 `help:"Mains hum frequency override in Hz (detected from timezone by default)"`
	KeepWorkspace *bool    `help:"Retain per-file working directories"`
	Jobs          *int     `short:"j" help:"Files processed concurrently"`
}

// TranscriptCmd formats a whisper JSON transcript into a PDF. Given an
// audio file instead of JSON, it runs the transcription engine first.
type TranscriptCmd struct {
	Input string `arg:"" type:"existingfile" help:"Whisper JSON transcript, or an audio file to transcribe"`

	Title         string `help:"Document title" default:"Lecture Transcript"`
	Subtitle      string `help:"Optional subtitle (course, date)"`
	Interval      int    `help:"Timestamp interval in seconds" default:"30"`
	TranscribeBin string `help:"Transcription engine binary"`
	Model         string `help:"Transcription engine model identifier"`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("chalktalk"),
		kong.Description("Lecture audio cleanup and transcript formatting"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	var err error
	switch {
	case strings.HasPrefix(ctx.Command(), "process"):
		err = cliArgs.Process.Run(cliArgs)
	case strings.HasPrefix(ctx.Command(), "transcript"):
		err = cliArgs.Transcript.Run(cliArgs)
	default:
		err = fmt.Errorf("unknown command %q", ctx.Command())
	}
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

// Run executes the processing pipeline. Per-file failures are reported
// but do not produce a non-zero exit; only missing tools or an unusable
// input path do.
func (p *ProcessCmd) Run(globals *CLI) error {
	cfg, err := config.Load(globals.Config)
	if err != nil {
		return err
	}
	p.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	files, err := probe.Resolve(p.Input)
	if err != nil {
		return err
	}

	ffmpeg := ffmpegcli.New()
	engine := denoiser.NewCLI(
		denoiser.WithBinary(cfg.DenoiseBin),
		denoiser.WithModel(cfg.DenoiseModel),
		denoiser.WithExtraArgs(cfg.DenoiseArgs),
		denoiser.WithForceCPU(cfg.ForceCPU),
	)

	humFreq := mains.Frequency()
	if p.HumFreq != nil {
		humFreq = *p.HumFreq
	}

	opts := []pipeline.Option{pipeline.WithHumFrequency(humFreq)}
	interactive := !globals.Plain && isatty.IsTerminal(os.Stdout.Fd())

	if interactive {
		return runInteractive(cfg, ffmpeg, engine, files, opts)
	}
	return runPlain(cfg, ffmpeg, engine, files, opts)
}

// apply overlays the flags that were actually set onto the loaded
// configuration, keeping the defaults-then-file-then-flags precedence.
func (p *ProcessCmd) apply(cfg *config.Config) {
	if p.ChunkSeconds != nil {
		cfg.ChunkSeconds = *p.ChunkSeconds
	}
	if p.DenoiseBin != nil {
		cfg.DenoiseBin = *p.DenoiseBin
	}
	if p.DenoiseModel != nil {
		cfg.DenoiseModel = *p.DenoiseModel
	}
	if p.DenoiseArgs != nil {
		cfg.DenoiseArgs = *p.DenoiseArgs
	}
	if p.ForceCPU != nil {
		cfg.ForceCPU = *p.ForceCPU
	}
	if p.Bitrate != nil {
		cfg.BitrateKbps = *p.Bitrate
	}
	if p.TargetLufs != nil {
		cfg.TargetLUFS = *p.TargetLufs
	}
	if p.LoudnessRange != nil {
		cfg.LoudnessRange = *p.LoudnessRange
	}
	if p.TruePeak != nil {
		cfg.TruePeak = *p.TruePeak
	}
	if p.KeepWorkspace != nil {
		cfg.KeepWorkspace = *p.KeepWorkspace
	}
	if p.Jobs != nil {
		cfg.Jobs = *p.Jobs
	}
}

func runPlain(cfg config.Config, ffmpeg ffmpegcli.Invoker, engine denoiser.Engine, files []probe.InputFile, opts []pipeline.Option) error {
	opts = append(opts,
		pipeline.WithEventFunc(func(e pipeline.Event) {
			if e.State == pipeline.StateConverting {
				fmt.Printf("processing %s (%d/%d)\n", e.InputPath, e.FileIndex+1, e.FileTotal)
			}
		}),
		pipeline.WithResultFunc(func(_ int, r pipeline.FileResult) {
			fmt.Println(report.FileLine(r))
		}),
	)

	driver := pipeline.NewDriver(cfg, ffmpeg, engine, opts...)
	if err := driver.CheckTools(); err != nil {
		return err
	}

	results := driver.Run(context.Background(), files)
	fmt.Println()
	report.WriteSummary(os.Stdout, results, cfg.TargetLUFS)
	return nil
}

func runInteractive(cfg config.Config, ffmpeg ffmpegcli.Invoker, engine denoiser.Engine, files []probe.InputFile, opts []pipeline.Option) error {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}

	model := ui.NewModel(paths)
	program := tea.NewProgram(model, tea.WithAltScreen())

	opts = append(opts,
		pipeline.WithEventFunc(func(e pipeline.Event) {
			program.Send(ui.StageMsg{Event: e})
		}),
		pipeline.WithResultFunc(func(i int, r pipeline.FileResult) {
			program.Send(ui.FileDoneMsg{Index: i, Result: r})
		}),
	)

	driver := pipeline.NewDriver(cfg, ffmpeg, engine, opts...)
	if err := driver.CheckTools(); err != nil {
		return err
	}

	var results []pipeline.FileResult
	go func() {
		results = driver.Run(context.Background(), files)
		program.Send(ui.BatchDoneMsg{})
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal UI: %w", err)
	}

	// Repeat the summary on the normal screen so it survives the
	// alt-screen teardown.
	report.WriteSummary(os.Stdout, results, cfg.TargetLUFS)
	return nil
}

// Run formats a transcript, transcribing the audio first when the input
// is not already whisper JSON.
func (t *TranscriptCmd) Run(globals *CLI) error {
	cfg, err := config.Load(globals.Config)
	if err != nil {
		return err
	}
	if t.TranscribeBin != "" {
		cfg.TranscribeBin = t.TranscribeBin
	}

	jsonPath := t.Input
	if strings.ToLower(filepath.Ext(t.Input)) != ".json" {
		engine := transcriber.NewCLI(
			transcriber.WithBinary(cfg.TranscribeBin),
			transcriber.WithModel(t.Model),
		)
		if err := engine.Check(); err != nil {
			return err
		}
		fmt.Printf("transcribing %s with %s...\n", t.Input, engine.Binary())
		jsonPath, err = engine.Transcribe(context.Background(), t.Input, filepath.Dir(t.Input))
		if err != nil {
			return err
		}
	}

	out, blocks, err := transcript.Format(jsonPath, transcript.RenderOptions{
		Title:           t.Title,
		Subtitle:        t.Subtitle,
		IntervalSeconds: t.Interval,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Wrote: %s (%d timestamp blocks, ~%ds each)\n", out, blocks, t.Interval)
	return nil
}
