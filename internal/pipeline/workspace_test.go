package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWorkspaceLifecycle(t *testing.T) {
	ws, err := NewWorkspace("lecture", false)
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}

	sub, err := ws.Subdir("clean")
	if err != nil {
		t.Fatalf("Subdir: %v", err)
	}
	if filepath.Dir(sub) != ws.Root() {
		t.Errorf("subdir %s not under root %s", sub, ws.Root())
	}
	if err := os.WriteFile(ws.Path("canonical.wav"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ws.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(ws.Root()); !os.IsNotExist(err) {
		t.Errorf("workspace root still exists after release")
	}

	// Release is idempotent.
	if err := ws.Release(); err != nil {
		t.Errorf("second Release: %v", err)
	}
}

func TestWorkspaceRetention(t *testing.T) {
	ws, err := NewWorkspace("lecture", true)
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	defer os.RemoveAll(ws.Root())

	if err := ws.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(ws.Root()); err != nil {
		t.Errorf("retained workspace was removed: %v", err)
	}
}
