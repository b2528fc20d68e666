package port

import (
	"io"
)

// FileSystem defines the interface for output directory operations
type FileSystem interface {
	// RootDir returns the output directory
	RootDir() string

	// Path returns the destination path for a file name inside the output directory
	Path(name string) string

	// EnsureRoot creates the output directory and any missing parents
	EnsureRoot() error

	// WriteFile streams reader into name, truncating any existing file.
	// A failed write may leave a partial file behind.
	// Returns: destination path, bytes written, error
	WriteFile(name string, reader io.Reader) (string, int64, error)

	// WriteText writes UTF-8 text into name
	// Returns: destination path, error
	WriteText(name string, text string) (string, error)
}
