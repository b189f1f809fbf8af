// Package ui provides the Bubbletea terminal interface for a processing
// run: the file queue, the active file's stage, and per-chunk denoise
// progress.
package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lecturelab/chalktalk/internal/pipeline"
)

// FileView tracks what the terminal shows for one input file.
type FileView struct {
	InputPath  string
	State      pipeline.State
	ChunkDone  int
	ChunkTotal int
	Result     *pipeline.FileResult
}

// Model is the Bubbletea model for a batch run. Events arrive on a
// buffered channel fed by the pipeline driver's event callback; each
// message consumed re-arms the listener.
type Model struct {
	Files     []FileView
	StartTime time.Time
	Done      bool

	Events chan tea.Msg

	chunkBar progress.Model
	width    int
}

// NewModel creates a model for the given input paths.
func NewModel(inputPaths []string) Model {
	files := make([]FileView, len(inputPaths))
	for i, path := range inputPaths {
		files[i] = FileView{InputPath: path, State: pipeline.StatePending}
	}

	return Model{
		Files:     files,
		StartTime: time.Now(),
		Events:    make(chan tea.Msg, 100),
		chunkBar:  progress.New(progress.WithDefaultGradient()),
	}
}

// Init starts listening for pipeline events.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.Events)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.chunkBar.Width = min(msg.Width-10, 50)

	case StageMsg:
		if i := msg.Event.FileIndex; i >= 0 && i < len(m.Files) {
			m.Files[i].State = msg.Event.State
			m.Files[i].ChunkDone = msg.Event.ChunkDone
			m.Files[i].ChunkTotal = msg.Event.ChunkTotal
		}
		return m, waitForEvent(m.Events)

	case FileDoneMsg:
		if msg.Index >= 0 && msg.Index < len(m.Files) {
			result := msg.Result
			m.Files[msg.Index].Result = &result
		}
		return m, waitForEvent(m.Events)

	case BatchDoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.Done {
		return renderSummary(m)
	}
	return renderQueue(m)
}

func waitForEvent(events chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}
