package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is the process-private scratch directory for one input file.
// It is owned exclusively by the driver invocation processing that file
// and is never shared across files. Release is safe to call on every exit
// path; the retain flag turns it into a no-op for debugging.
type Workspace struct {
	root     string
	retain   bool
	released bool
}

// NewWorkspace creates a scratch directory for the named input stem.
func NewWorkspace(stem string, retain bool) (*Workspace, error) {
	root, err := os.MkdirTemp("", "chalktalk-"+stem+"-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{root: root, retain: retain}, nil
}

// Root returns the workspace directory.
func (w *Workspace) Root() string { return w.root }

// Retained reports whether the workspace survives Release.
func (w *Workspace) Retained() bool { return w.retain }

// Path returns the path for a named artifact inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.root, name)
}

// Subdir creates (if needed) and returns a named subdirectory.
func (w *Workspace) Subdir(name string) (string, error) {
	dir := filepath.Join(w.root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create workspace subdir %s: %w", name, err)
	}
	return dir, nil
}

// Release removes the workspace unless retention was requested.
// Idempotent: second and later calls do nothing.
func (w *Workspace) Release() error {
	if w.released || w.retain {
		w.released = true
		return nil
	}
	w.released = true
	if err := os.RemoveAll(w.root); err != nil {
		return fmt.Errorf("remove workspace: %w", err)
	}
	return nil
}
