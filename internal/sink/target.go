package sink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Stdout is the target name that selects standard output.
const Stdout = "stdout"

// Target is a CSV destination that is opened only when there is something
// to write.
type Target struct {
	// path is a file path or Stdout.
	path string

	// stdout is the writer used for Stdout.
	stdout io.Writer
}

// NewTarget creates a target for path. The name "stdout" writes to stdout.
func NewTarget(path string, stdout io.Writer) *Target {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Target{path: path, stdout: stdout}
}

// IsStdout reports whether the target is standard output.
func (t *Target) IsStdout() bool {
	return t.path == Stdout
}

// String returns the target name.
func (t *Target) String() string {
	return t.path
}

// Open returns a writer for the target. Files are created (truncated if they
// exist) along with missing parent directories. Closing a stdout writer does
// not close stdout.
func (t *Target) Open() (io.WriteCloser, error) {
	if t.IsStdout() {
		return nopCloser{t.stdout}, nil
	}

	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", t.path, err)
		}
	}

	f, err := os.Create(t.path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", t.path, err)
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
