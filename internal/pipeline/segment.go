package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-audio/wav"
)

// Chunk naming used by the splitter. The zero-padded ordinal establishes
// total order; the parsed integer index is the source of truth, never the
// lexical sort of the directory listing.
const (
	chunkPrefix  = "part_"
	chunkPattern = chunkPrefix + "%05d.wav"
)

// Segment is one fixed-duration slice of the canonical mono stream.
type Segment struct {
	Index    int
	Path     string
	Duration float64 // seconds
}

// CleanedSegment is the denoised counterpart of a Segment, keyed by the
// same index.
type CleanedSegment struct {
	Index int
	Path  string
}

// parseSegmentIndex extracts the ordinal from a chunk filename such as
// part_00012.wav.
func parseSegmentIndex(name string) (int, error) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if !strings.HasPrefix(base, chunkPrefix) {
		return 0, fmt.Errorf("not a chunk name: %s", name)
	}
	idx, err := strconv.Atoi(strings.TrimPrefix(base, chunkPrefix))
	if err != nil {
		return 0, fmt.Errorf("chunk ordinal in %s: %w", name, err)
	}
	return idx, nil
}

// discoverSegments reads the chunk directory and returns segments in
// ascending index order with durations read from their WAV headers.
func discoverSegments(dir string) ([]Segment, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read chunk directory: %w", err)
	}

	var segments []Segment
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), chunkPrefix) {
			continue
		}
		idx, err := parseSegmentIndex(entry.Name())
		if err != nil {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		dur, err := wavDuration(path)
		if err != nil {
			return nil, fmt.Errorf("probe chunk %s: %w", entry.Name(), err)
		}
		segments = append(segments, Segment{Index: idx, Path: path, Duration: dur})
	}

	sortSegments(segments)
	return segments, nil
}

func sortSegments(segments []Segment) {
	sort.Slice(segments, func(i, j int) bool {
		return segments[i].Index < segments[j].Index
	})
}

func sortCleaned(cleaned []CleanedSegment) {
	sort.Slice(cleaned, func(i, j int) bool {
		return cleaned[i].Index < cleaned[j].Index
	})
}

// wavDuration reads the duration of a PCM WAV file from its header.
func wavDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dur, err := dec.Duration()
	if err != nil {
		return 0, err
	}
	return dur.Seconds(), nil
}

// fileStem returns the base name of path without its extension.
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
