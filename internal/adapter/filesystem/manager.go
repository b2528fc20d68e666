package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/extractweb/extract-web/internal/domain"
	"github.com/extractweb/extract-web/internal/port"
)

// DefaultChunkSize is the size of each write while streaming a download
const DefaultChunkSize = 1024

// Manager handles the output directory
type Manager struct {
	rootDir   string
	chunkSize int
}

// Ensure Manager implements port.FileSystem
var _ port.FileSystem = (*Manager)(nil)

// NewManager creates a new filesystem manager with the default chunk size
func NewManager(rootDir string) *Manager {
	return NewManagerWithChunkSize(rootDir, DefaultChunkSize)
}

// NewManagerWithChunkSize creates a new filesystem manager with a custom chunk size.
// The directory itself is created by EnsureRoot.
func NewManagerWithChunkSize(rootDir string, chunkSize int) *Manager {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return &Manager{
		rootDir:   rootDir,
		chunkSize: chunkSize,
	}
}

// RootDir returns the output directory
func (m *Manager) RootDir() string {
	return m.rootDir
}

// Path returns the destination path for a file name
func (m *Manager) Path(name string) string {
	return filepath.Join(m.rootDir, name)
}

// EnsureRoot creates the output directory if it does not exist
func (m *Manager) EnsureRoot() error {
	if err := os.MkdirAll(m.rootDir, 0755); err != nil {
		return domain.NewFilesystemError("mkdir", m.rootDir, err)
	}
	return nil
}

// WriteFile streams reader into the named file.
// The destination is written in place, so an interrupted copy leaves a
// truncated file.
func (m *Manager) WriteFile(name string, reader io.Reader) (string, int64, error) {
	path := m.Path(name)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, domain.NewFilesystemError("create", path, err)
	}

	buf := make([]byte, m.chunkSize)
	written, err := copyChunks(f, reader, buf)
	if err != nil {
		f.Close()
		return path, written, fmt.Errorf("failed to write file: %w", err)
	}

	if err := f.Close(); err != nil {
		return path, written, domain.NewFilesystemError("close", path, err)
	}

	return path, written, nil
}

// WriteText writes text to the named file
func (m *Manager) WriteText(name string, text string) (string, error) {
	path := m.Path(name)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", domain.NewFilesystemError("write", path, err)
	}
	return path, nil
}

// copyChunks copies src to dst one buffer at a time. Read errors are
// returned as is so fetch failures keep their type; write errors become
// FilesystemErrors.
func copyChunks(dst *os.File, src io.Reader, buf []byte) (int64, error) {
	var written int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			written += int64(w)
			if werr != nil {
				return written, domain.NewFilesystemError("write", dst.Name(), werr)
			}
			if w != n {
				return written, domain.NewFilesystemError("write", dst.Name(), io.ErrShortWrite)
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
