package utils

import (
	"fmt"
	"os"
)

// WriteTempFile stores data in a new temporary file named after pattern.
// The returned cleanup removes the file and is safe to call when err != nil.
func WriteTempFile(pattern string, data []byte) (string, func(), error) {
	noop := func() {}
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", noop, fmt.Errorf("failed to create temp file: %w", err)
	}
	cleanup := func() { os.Remove(f.Name()) }

	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", noop, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("failed to close temp file: %w", err)
	}
	return f.Name(), cleanup, nil
}
