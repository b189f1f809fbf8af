package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lecturelab/chalktalk/internal/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#2F6F4F"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	okIcon     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
	failIcon   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
	activeIcon = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Render("⚙")
	queuedIcon = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("○")

	footerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#888888")).
			Padding(0, 1)
)

// stageLabels name each pipeline state for display.
var stageLabels = map[pipeline.State]string{
	pipeline.StatePending:      "queued",
	pipeline.StateConverting:   "converting",
	pipeline.StateSplitting:    "splitting into chunks",
	pipeline.StateDenoising:    "denoising",
	pipeline.StateReassembling: "reassembling",
	pipeline.StateProcessing:   "loudness processing",
	pipeline.StateEncoding:     "encoding",
	pipeline.StateDone:         "done",
	pipeline.StateFailed:       "failed",
}

// renderQueue renders the file list with the active file expanded.
func renderQueue(m Model) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Chalktalk 🎓 - Lecture Audio Cleanup"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Processing %d file(s)", len(m.Files))))
	b.WriteString("\n\n")

	for _, f := range m.Files {
		b.WriteString(renderFileEntry(m, f))
		b.WriteString("\n")
	}

	done := 0
	for _, f := range m.Files {
		if f.Result != nil {
			done++
		}
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(fmt.Sprintf("%d of %d complete | elapsed %s",
		done, len(m.Files), time.Since(m.StartTime).Round(time.Second))))

	return b.String()
}

func renderFileEntry(m Model, f FileView) string {
	name := filepath.Base(f.InputPath)

	if f.Result != nil {
		if f.Result.Failed() {
			return fmt.Sprintf(" %s %s\n   %s stage failed: %v", failIcon, name, f.Result.FailedState, f.Result.Err)
		}
		if f.Result.Skipped {
			return fmt.Sprintf(" %s %s (already processed)", okIcon, name)
		}
		return fmt.Sprintf(" %s %s → %s", okIcon, name, filepath.Base(f.Result.OutputPath))
	}

	switch f.State {
	case pipeline.StatePending:
		return fmt.Sprintf(" %s %s", queuedIcon, name)
	case pipeline.StateDenoising:
		bar := ""
		if f.ChunkTotal > 0 {
			bar = fmt.Sprintf("\n   %s %d/%d chunks",
				m.chunkBar.ViewAs(float64(f.ChunkDone)/float64(f.ChunkTotal)),
				f.ChunkDone, f.ChunkTotal)
		}
		return fmt.Sprintf(" %s %s: %s%s", activeIcon, name, stageLabels[f.State], bar)
	default:
		return fmt.Sprintf(" %s %s: %s", activeIcon, name, stageLabels[f.State])
	}
}

// renderSummary renders the final screen once the batch completes.
func renderSummary(m Model) string {
	var b strings.Builder

	var done, skipped, failed int
	for _, f := range m.Files {
		switch {
		case f.Result == nil:
			continue
		case f.Result.Failed():
			failed++
		case f.Result.Skipped:
			skipped++
		default:
			done++
		}
	}

	header := "✨ Batch complete"
	if failed > 0 {
		header = fmt.Sprintf("Batch complete with %d failure(s)", failed)
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	for _, f := range m.Files {
		if f.Result == nil {
			continue
		}
		b.WriteString(renderFileEntry(m, f))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("processed: %d  skipped: %d  failed: %d  (%s)\n",
		done, skipped, failed, time.Since(m.StartTime).Round(time.Second)))

	return b.String()
}
