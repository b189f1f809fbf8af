// Package pipeline implements the lecture audio cleanup pipeline:
// canonicalize, chunk, denoise per chunk, reassemble, loudness-correct
// and encode, driven one input file at a time with per-file failure
// isolation.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying pipeline failures. ErrToolMissing is fatal
// for the whole run and is raised before any file is touched; the rest are
// file-scoped: the affected file is abandoned and the batch continues.
var (
	ErrToolMissing       = errors.New("required external tool missing")
	ErrConversion        = errors.New("conversion failed")
	ErrSplit             = errors.New("split failed")
	ErrDenoiseResolution = errors.New("denoise output unresolved")
	ErrReassembly        = errors.New("reassembly failed")
	ErrEncoding          = errors.New("encoding failed")
)

// wrap tags err with a sentinel marker and stage context so the driver
// can log which stage of which file failed. A nil marker keeps the error
// untagged but still carries the context.
func wrap(marker error, state State, message string, err error) error {
	detail := buildDetail(string(state), message)
	if marker == nil {
		if err != nil {
			return fmt.Errorf("%s: %w", detail, err)
		}
		return errors.New(detail)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return "pipeline failure"
	}
	return strings.Join(kept, ": ")
}
