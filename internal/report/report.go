// Package report renders per-file status lines and the batch summary
// printed after a processing run.
package report

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lecturelab/chalktalk/internal/pipeline"
)

const timeRounding = 100 * time.Millisecond

var (
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00AA00"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A40000"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	headerStyle = lipgloss.NewStyle().Bold(true)
)

// Summary aggregates the batch outcome.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
}

// Summarize counts results by outcome.
func Summarize(results []pipeline.FileResult) Summary {
	var s Summary
	for _, r := range results {
		switch {
		case r.Failed():
			s.Failed++
		case r.Skipped:
			s.Skipped++
		default:
			s.Processed++
		}
	}
	return s
}

// FileLine renders one plain status line for a result, the non-TTY
// counterpart of the interactive progress view.
func FileLine(r pipeline.FileResult) string {
	switch {
	case r.Failed():
		return fmt.Sprintf("%s %s: %s stage failed: %v",
			failStyle.Render("FAIL"), r.Input.Path, r.FailedState, r.Err)
	case r.Skipped:
		return fmt.Sprintf("%s %s: output already exists, skipping",
			mutedStyle.Render("SKIP"), r.Input.Path)
	default:
		return fmt.Sprintf("%s %s -> %s (%d chunks, %s)",
			okStyle.Render("DONE"), r.Input.Path, r.OutputPath,
			r.Chunks, r.Elapsed.Round(timeRounding))
	}
}

// WriteSummary prints the batch summary. An empty working set gets its
// own message so "nothing matched" is not mistaken for success.
func WriteSummary(w io.Writer, results []pipeline.FileResult, targetLUFS float64) {
	if len(results) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no input files found"))
		return
	}

	s := Summarize(results)
	fmt.Fprintln(w, headerStyle.Render("batch complete"))
	fmt.Fprintf(w, "  processed: %d  skipped: %d  failed: %d\n", s.Processed, s.Skipped, s.Failed)

	for _, r := range results {
		if r.Failed() || r.Skipped || r.Measurements == nil {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", mutedStyle.Render(r.Input.Path))
		fmt.Fprint(w, LoudnessTable(r.Measurements, targetLUFS).String())
	}
}

// LoudnessTable builds the in→out loudness comparison for one file. The
// output column holds the normalization targets; the loudnorm filter's
// own post-run readback is not retained, so targets are the best
// available statement of where the file landed.
func LoudnessTable(m *pipeline.LoudnormMeasurements, targetLUFS float64) *MetricTable {
	t := NewMetricTable()
	t.AddMetricRow("Integrated Loudness", 1, "LUFS", m.InputI, targetLUFS)
	t.AddMetricRow("True Peak", 1, "dBTP", m.InputTP, math.NaN())
	t.AddMetricRow("Loudness Range", 1, "LU", m.InputLRA, math.NaN())
	t.AddMetricRow("Gain Offset", 2, "dB", math.NaN(), m.TargetOffset)
	return t
}
