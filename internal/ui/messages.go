package ui

import (
	"github.com/lecturelab/chalktalk/internal/pipeline"
)

// StageMsg carries a pipeline progress event into the model.
type StageMsg struct {
	Event pipeline.Event
}

// FileDoneMsg carries the final result for one file.
type FileDoneMsg struct {
	Index  int
	Result pipeline.FileResult
}

// BatchDoneMsg signals that every file in the working set has finished.
type BatchDoneMsg struct{}
