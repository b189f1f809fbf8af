package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ResolutionState classifies how a cleaned output was located.
type ResolutionState int

const (
	// Unresolved means neither the expected name nor any fallback match
	// exists; the file's pipeline must abort.
	Unresolved ResolutionState = iota

	// ResolvedExact means the engine wrote the requested name.
	ResolvedExact

	// ResolvedFallback means the engine decorated the name and the
	// prefix-and-recency rule picked the match.
	ResolvedFallback
)

// Resolution is the typed result of resolving a segment's cleaned output.
type Resolution struct {
	State ResolutionState
	Path  string
}

// outputResolver locates the cleaned counterpart of a segment inside the
// engine's output directory. Engines differ in naming discipline: some
// honour the input name, others append suffixes like "_clean" or a model
// tag. The policy is: exact expected path first, then the most recently
// modified file whose name starts with the segment's stem.
type outputResolver struct{}

// Resolve applies the policy for the segment file named segmentBase
// (for example "part_00003.wav") inside cleanDir.
func (outputResolver) Resolve(cleanDir, segmentBase string) Resolution {
	exact := filepath.Join(cleanDir, segmentBase)
	if info, err := os.Stat(exact); err == nil && !info.IsDir() {
		return Resolution{State: ResolvedExact, Path: exact}
	}

	stem := strings.TrimSuffix(segmentBase, filepath.Ext(segmentBase))
	entries, err := os.ReadDir(cleanDir)
	if err != nil {
		return Resolution{State: Unresolved}
	}

	var best string
	var bestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), stem) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().After(bestMod) {
			best = filepath.Join(cleanDir, entry.Name())
			bestMod = info.ModTime()
		}
	}
	if best == "" {
		return Resolution{State: Unresolved}
	}
	return Resolution{State: ResolvedFallback, Path: best}
}
