package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/lecturelab/chalktalk/internal/probe"
)

func TestOutputPathFor(t *testing.T) {
	in := probe.InputFile{Path: "/lectures/week3/intro to compilers.m4a", Stem: "intro to compilers"}
	got := OutputPathFor(in)
	want := filepath.Join("/lectures/week3", "intro to compilers_denoised.mp3")
	if got != want {
		t.Errorf("OutputPathFor = %q, want %q", got, want)
	}
}

func TestEncodeArgs(t *testing.T) {
	f := &fakeFFmpeg{}
	enc := NewEncoder(f)

	if err := enc.Encode(context.Background(), "/tmp/processed.wav", "/lectures/out.mp3", 96); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	args := f.calls[0]
	if !hasArgPair(args, "-c:a", "libmp3lame") {
		t.Errorf("missing encoder in %v", args)
	}
	if !hasArgPair(args, "-b:a", "96k") {
		t.Errorf("missing bitrate in %v", args)
	}
	if !hasArgPair(args, "-ac", "1") || !hasArgPair(args, "-ar", "48000") {
		t.Errorf("output should be 48 kHz mono: %v", args)
	}
	if args[len(args)-1] != "/lectures/out.mp3" {
		t.Errorf("output path should be last: %v", args)
	}
}

func TestEncodeFailure(t *testing.T) {
	f := &fakeFFmpeg{handle: func([]string) (string, error) {
		return "lame: init failed", errors.New("exit status 1")
	}}

	err := NewEncoder(f).Encode(context.Background(), "in.wav", "out.mp3", 96)
	if !errors.Is(err, ErrEncoding) {
		t.Fatalf("error = %v, want ErrEncoding", err)
	}
}
