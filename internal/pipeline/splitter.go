package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/lecturelab/chalktalk/internal/ffmpegcli"
)

// Canonical intermediate format: mono 48 kHz 16-bit PCM. Every chunk the
// denoiser sees is in this format, so reassembly can stream-copy without
// a quality mismatch between segments.
const (
	CanonicalSampleRate = 48000
	canonicalName       = "canonical.wav"
	joinedName          = "joined.wav"
	processedName       = "processed.wav"
)

// Splitter converts arbitrary input audio to the canonical stream and
// partitions it into bounded chunks.
type Splitter struct {
	ffmpeg ffmpegcli.Invoker
}

// NewSplitter constructs a Splitter on the given ffmpeg invoker.
func NewSplitter(ffmpeg ffmpegcli.Invoker) *Splitter {
	return &Splitter{ffmpeg: ffmpeg}
}

// Canonicalize re-samples and re-channels inputPath into the canonical
// mono PCM stream inside the workspace.
func (s *Splitter) Canonicalize(ctx context.Context, inputPath string, ws *Workspace) (string, error) {
	out := ws.Path(canonicalName)
	_, err := s.ffmpeg.Run(ctx,
		"-y",
		"-i", inputPath,
		"-ac", "1",
		"-ar", strconv.Itoa(CanonicalSampleRate),
		"-c:a", "pcm_s16le",
		out,
	)
	if err != nil {
		return "", wrap(ErrConversion, StateConverting, inputPath, err)
	}
	return out, nil
}

// Split partitions the canonical stream into consecutive non-overlapping
// chunks of at most chunkSeconds. Each chunk's timestamp base is reset to
// zero so the denoiser treats it as an independent clip. The final chunk
// holds the remainder and may be shorter.
func (s *Splitter) Split(ctx context.Context, canonicalPath string, chunkSeconds int, ws *Workspace) ([]Segment, error) {
	dir, err := ws.Subdir("chunks")
	if err != nil {
		return nil, wrap(ErrSplit, StateSplitting, "", err)
	}

	_, err = s.ffmpeg.Run(ctx,
		"-y",
		"-i", canonicalPath,
		"-f", "segment",
		"-segment_time", strconv.Itoa(chunkSeconds),
		"-reset_timestamps", "1",
		"-c", "copy",
		filepath.Join(dir, chunkPattern),
	)
	if err != nil {
		return nil, wrap(ErrSplit, StateSplitting, canonicalPath, err)
	}

	segments, err := discoverSegments(dir)
	if err != nil {
		return nil, wrap(ErrSplit, StateSplitting, "discover chunks", err)
	}
	if len(segments) == 0 {
		return nil, wrap(ErrSplit, StateSplitting,
			fmt.Sprintf("no chunks produced from %s", canonicalPath), nil)
	}
	return segments, nil
}
