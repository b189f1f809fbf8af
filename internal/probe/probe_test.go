package probe

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lecture12.mp3")
	touch(t, path)

	files, err := Resolve(path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}
	if files[0].Path != path {
		t.Errorf("Path = %q, want %q", files[0].Path, path)
	}
	if files[0].Stem != "lecture12" {
		t.Errorf("Stem = %q, want %q", files[0].Stem, "lecture12")
	}
}

func TestResolveDirectoryFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.mp3"))
	touch(t, filepath.Join(dir, "b.WAV")) // case-insensitive match
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "c.flac"))
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "nested", "d.mp3")) // non-recursive: must be skipped

	files, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3: %+v", len(files), files)
	}
	for _, f := range files {
		if filepath.Dir(f.Path) != dir {
			t.Errorf("unexpected file outside top level: %s", f.Path)
		}
	}
}

func TestResolveEmptyDirectoryIsNotAnError(t *testing.T) {
	files, err := Resolve(t.TempDir())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("got %d files, want 0", len(files))
	}
}

func TestResolveMissingPath(t *testing.T) {
	if _, err := Resolve(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestIsAudioFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.mp3", true},
		{"a.M4A", true},
		{"a.ogg", true},
		{"a.txt", false},
		{"a", false},
		{"a.mp3.bak", false},
	}
	for _, tt := range tests {
		if got := IsAudioFile(tt.name); got != tt.want {
			t.Errorf("IsAudioFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
