// Package probe resolves the working set of audio files for a run.
package probe

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// audioExtensions is the case-insensitive allow-list applied when scanning
// a directory. Single-file inputs bypass the list: if the user named the
// file explicitly, we try to process it.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".flac": true,
	".aac":  true,
	".ogg":  true,
}

// InputFile is one source audio asset. Immutable for the run.
type InputFile struct {
	Path string
	Stem string // filename without extension, used for output naming
}

// Resolve expands path into the ordered working set. A file resolves to
// exactly itself; a directory resolves to its direct entries (no recursion)
// whose extension matches the allow-list, in directory order. An empty
// result is not an error.
func Resolve(path string) ([]InputFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("input path: %w", err)
	}

	if !info.IsDir() {
		return []InputFile{newInputFile(path)}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("scan directory: %w", err)
	}

	var files []InputFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !IsAudioFile(entry.Name()) {
			continue
		}
		files = append(files, newInputFile(filepath.Join(path, entry.Name())))
	}
	return files, nil
}

// IsAudioFile reports whether name carries a recognized audio extension.
func IsAudioFile(name string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(name))]
}

func newInputFile(path string) InputFile {
	base := filepath.Base(path)
	return InputFile{
		Path: path,
		Stem: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}
