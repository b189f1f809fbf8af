// Package transcript turns whisper JSON output into a readable PDF.
//
// Raw ASR segments are short and noisy. The formatter groups them into
// time-aligned blocks, applies a conservative text cleanup, and renders
// the blocks with margin timestamps so a reader can jump back into the
// recording.
package transcript

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Segment is one ASR segment as whisper emits it.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Block is a time-binned group of cleaned segments. One block becomes one
// timestamp row in the rendered document.
type Block struct {
	Start float64
	End   float64
	Text  string
}

// LoadSegments reads a whisper JSON transcript. Anything without a
// top-level segments list is rejected as not being whisper output.
func LoadSegments(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Segments []Segment `json:"segments"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.Segments == nil {
		return nil, fmt.Errorf("%s does not look like whisper output: no segments list", path)
	}

	for i := range doc.Segments {
		doc.Segments[i].Text = strings.TrimSpace(doc.Segments[i].Text)
	}
	return doc.Segments, nil
}

// BuildBlocks groups segments into interval-sized bins. Bins are aligned
// down from the first segment start, so a recording that begins at 12s
// with a 30s interval produces blocks at 0:00, 0:30 and so on rather than
// at arbitrary offsets. A segment straddling a bin edge contributes its
// text to every bin it overlaps.
func BuildBlocks(segments []Segment, intervalSeconds int) []Block {
	if len(segments) == 0 || intervalSeconds <= 0 {
		return nil
	}

	interval := float64(intervalSeconds)
	start := segments[0].Start
	end := segments[0].End
	for _, s := range segments {
		if s.End > end {
			end = s.End
		}
	}

	bin0 := math.Floor(start/interval) * interval
	nbins := int(math.Ceil((end - bin0) / interval))

	var blocks []Block
	segIdx := 0
	for i := 0; i < nbins; i++ {
		binStart := bin0 + float64(i)*interval
		binEnd := binStart + interval

		for segIdx < len(segments) && segments[segIdx].End <= binStart {
			segIdx++
		}

		var texts []string
		for j := segIdx; j < len(segments) && segments[j].Start < binEnd; j++ {
			if segments[j].Text != "" {
				texts = append(texts, segments[j].Text)
			}
		}
		if len(texts) == 0 {
			continue
		}

		cleaned := Cleanup(strings.Join(texts, " "))
		if cleaned == "" {
			continue
		}
		blocks = append(blocks, Block{Start: binStart, End: binEnd, Text: cleaned})
	}
	return blocks
}

// FormatTimestamp renders seconds as mm:ss, or hh:mm:ss past the hour.
func FormatTimestamp(seconds float64) string {
	s := int(seconds + 0.5)
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}

// OutputPathFor returns the deterministic document path for a transcript
// input: <stem>.pdf beside the JSON file.
func OutputPathFor(jsonPath string) string {
	base := filepath.Base(jsonPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(jsonPath), stem+".pdf")
}

// Format runs the whole formatter: load, bin, clean, render. It returns
// the document path and the number of timestamp blocks written.
func Format(jsonPath string, opts RenderOptions) (string, int, error) {
	segments, err := LoadSegments(jsonPath)
	if err != nil {
		return "", 0, err
	}

	blocks := BuildBlocks(segments, opts.IntervalSeconds)
	if len(blocks) == 0 {
		return "", 0, fmt.Errorf("no transcript text found in %s", jsonPath)
	}

	out := OutputPathFor(jsonPath)
	if err := RenderPDF(blocks, out, opts); err != nil {
		return "", 0, err
	}
	return out, len(blocks), nil
}
