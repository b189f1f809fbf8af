package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/lecturelab/chalktalk/internal/denoiser"
)

// DenoiseRunner feeds segments to the external engine one at a time, in
// ascending index order. Sequential on purpose: chunking exists to bound
// the engine's memory/VRAM footprint, and concurrent chunks would undo
// that bound.
type DenoiseRunner struct {
	engine   denoiser.Engine
	resolver outputResolver
}

// NewDenoiseRunner constructs a runner on the given engine.
func NewDenoiseRunner(engine denoiser.Engine) *DenoiseRunner {
	return &DenoiseRunner{engine: engine}
}

// Run denoises every segment into the workspace's clean directory and
// resolves each cleaned output. Every segment must resolve to exactly one
// cleaned file or the whole file's run fails; there is no retry, so
// transient engine failures surface immediately. onChunk (optional) is
// called after each segment completes.
func (r *DenoiseRunner) Run(ctx context.Context, segments []Segment, ws *Workspace, onChunk func(done, total int)) ([]CleanedSegment, error) {
	cleanDir, err := ws.Subdir("clean")
	if err != nil {
		return nil, wrap(nil, StateDenoising, "", err)
	}

	cleaned := make([]CleanedSegment, 0, len(segments))
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, wrap(nil, StateDenoising, "", err)
		}
		if err := r.engine.Enhance(ctx, seg.Path, cleanDir); err != nil {
			return nil, wrap(nil, StateDenoising, fmt.Sprintf("chunk %d", seg.Index), err)
		}

		base := filepath.Base(seg.Path)
		res := r.resolver.Resolve(cleanDir, base)
		if res.State == Unresolved {
			return nil, wrap(ErrDenoiseResolution, StateDenoising,
				fmt.Sprintf("engine produced no output for %s", base), nil)
		}
		cleaned = append(cleaned, CleanedSegment{Index: seg.Index, Path: res.Path})

		if onChunk != nil {
			onChunk(i+1, len(segments))
		}
	}
	return cleaned, nil
}
