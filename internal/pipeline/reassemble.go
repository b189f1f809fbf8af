package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lecturelab/chalktalk/internal/ffmpegcli"
)

// Reassembler joins cleaned segments back into a single continuous
// stream. Concatenation is a stream copy driven by a manifest — never a
// re-encode; a format mismatch between segments is a configuration error
// to be caught upstream, not silently fixed here.
type Reassembler struct {
	ffmpeg ffmpegcli.Invoker
}

// NewReassembler constructs a Reassembler on the given ffmpeg invoker.
func NewReassembler(ffmpeg ffmpegcli.Invoker) *Reassembler {
	return &Reassembler{ffmpeg: ffmpeg}
}

// Reassemble writes the concat manifest in ascending index order and
// performs the lossless concatenation. The input slice's order does not
// matter; the manifest order is derived from the explicit indexes.
func (r *Reassembler) Reassemble(ctx context.Context, cleaned []CleanedSegment, ws *Workspace) (string, error) {
	if len(cleaned) == 0 {
		return "", wrap(ErrReassembly, StateReassembling, "empty manifest", nil)
	}

	ordered := make([]CleanedSegment, len(cleaned))
	copy(ordered, cleaned)
	sortCleaned(ordered)

	var manifest strings.Builder
	for _, seg := range ordered {
		if _, err := os.Stat(seg.Path); err != nil {
			return "", wrap(ErrReassembly, StateReassembling,
				fmt.Sprintf("listed chunk missing: %s", seg.Path), err)
		}
		fmt.Fprintf(&manifest, "file '%s'\n", escapeConcatPath(seg.Path))
	}

	manifestPath := ws.Path("concat.txt")
	if err := os.WriteFile(manifestPath, []byte(manifest.String()), 0o644); err != nil {
		return "", wrap(ErrReassembly, StateReassembling, "write manifest", err)
	}

	out := ws.Path(joinedName)
	_, err := r.ffmpeg.Run(ctx,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
		"-c", "copy",
		out,
	)
	if err != nil {
		return "", wrap(ErrReassembly, StateReassembling, "", err)
	}
	return out, nil
}

// escapeConcatPath quotes single quotes for the concat demuxer's
// single-quoted file directive.
func escapeConcatPath(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}
