package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/bogem/id3v2"
	"github.com/lecturelab/chalktalk/internal/ffmpegcli"
	"github.com/lecturelab/chalktalk/internal/probe"
)

// OutputSuffix is appended to the input stem for the distribution file.
const OutputSuffix = "_denoised"

// outputExt is the distribution container. MP3 keeps lecture archives
// small and plays everywhere students might listen.
const outputExt = ".mp3"

// OutputPathFor returns the deterministic output path for an input file:
// <stem>_denoised.mp3 beside the original.
func OutputPathFor(in probe.InputFile) string {
	return filepath.Join(filepath.Dir(in.Path), in.Stem+OutputSuffix+outputExt)
}

// Encoder transcodes the processed stream to the distribution format.
type Encoder struct {
	ffmpeg ffmpegcli.Invoker
}

// NewEncoder constructs an Encoder on the given ffmpeg invoker.
func NewEncoder(ffmpeg ffmpegcli.Invoker) *Encoder {
	return &Encoder{ffmpeg: ffmpeg}
}

// Encode writes outputPath as 48 kHz mono MP3 at the configured bitrate.
func (e *Encoder) Encode(ctx context.Context, inputPath, outputPath string, bitrateKbps int) error {
	_, err := e.ffmpeg.Run(ctx,
		"-y",
		"-i", inputPath,
		"-ac", "1",
		"-ar", strconv.Itoa(CanonicalSampleRate),
		"-c:a", "libmp3lame",
		"-b:a", fmt.Sprintf("%dk", bitrateKbps),
		outputPath,
	)
	if err != nil {
		return wrap(ErrEncoding, StateEncoding, outputPath, err)
	}
	return nil
}

// tagOutput stamps basic ID3 metadata on the encoded file so players show
// a sensible title instead of the raw filename. Tagging problems are not
// worth failing a file that already encoded correctly, so the driver
// treats the returned error as best-effort.
func tagOutput(path, title string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tags: %w", err)
	}
	defer tag.Close()

	tag.SetTitle(title)
	tag.SetGenre("Lecture")
	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	return nil
}
