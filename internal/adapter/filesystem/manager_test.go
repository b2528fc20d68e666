package filesystem

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/extractweb/extract-web/internal/domain"
)

// chunkRecorder records the size of every Read call it serves
type chunkRecorder struct {
	r     io.Reader
	sizes []int
}

func (c *chunkRecorder) Read(p []byte) (int, error) {
	c.sizes = append(c.sizes, len(p))
	return c.r.Read(p)
}

// failingReader returns data and then a read error
type failingReader struct {
	data []byte
	err  error
	done bool
}

func (f *failingReader) Read(p []byte) (int, error) {
	if f.done {
		return 0, f.err
	}
	f.done = true
	return copy(p, f.data), nil
}

func TestManager_EnsureRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "a", "b", "recursos")
	m := NewManager(root)

	if err := m.EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot() error = %v", err)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		t.Fatalf("root not created: %v", err)
	}

	// Existing directory is left alone
	if err := os.WriteFile(filepath.Join(root, "keep.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := m.EnsureRoot(); err != nil {
		t.Fatalf("second EnsureRoot() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "keep.txt")); err != nil {
		t.Error("existing file removed by EnsureRoot()")
	}
}

func TestManager_EnsureRoot_Error(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	err := NewManager(filepath.Join(blocker, "sub")).EnsureRoot()
	if !domain.IsFilesystemError(err) {
		t.Errorf("EnsureRoot() error = %v, want FilesystemError", err)
	}
}

func TestManager_WriteFile(t *testing.T) {
	m := NewManager(t.TempDir())
	data := bytes.Repeat([]byte("0123456789"), 250) // 2500 bytes
	src := &chunkRecorder{r: bytes.NewReader(data)}

	path, n, err := m.WriteFile("app.js", src)
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if n != int64(len(data)) {
		t.Errorf("WriteFile() n = %d, want %d", n, len(data))
	}
	if path != m.Path("app.js") {
		t.Errorf("WriteFile() path = %q, want %q", path, m.Path("app.js"))
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("file content mismatch")
	}

	for i, size := range src.sizes {
		if size != DefaultChunkSize {
			t.Errorf("read %d used buffer of %d bytes, want %d", i, size, DefaultChunkSize)
		}
	}
}

func TestManager_WriteFile_Overwrites(t *testing.T) {
	m := NewManager(t.TempDir())

	if _, _, err := m.WriteFile("a.css", strings.NewReader("a much longer first version")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.WriteFile("a.css", strings.NewReader("short")); err != nil {
		t.Fatal(err)
	}

	got, _ := os.ReadFile(m.Path("a.css"))
	if string(got) != "short" {
		t.Errorf("content = %q, want %q", got, "short")
	}
}

func TestManager_WriteFile_ReadErrorLeavesPartialFile(t *testing.T) {
	m := NewManager(t.TempDir())
	readErr := errors.New("connection reset")

	_, n, err := m.WriteFile("big.js", &failingReader{data: []byte("partial"), err: readErr})
	if !errors.Is(err, readErr) {
		t.Fatalf("WriteFile() error = %v, want %v", err, readErr)
	}
	if domain.IsFilesystemError(err) {
		t.Error("read failure reported as FilesystemError")
	}
	if n != int64(len("partial")) {
		t.Errorf("n = %d, want %d", n, len("partial"))
	}

	got, _ := os.ReadFile(m.Path("big.js"))
	if string(got) != "partial" {
		t.Errorf("partial content = %q, want %q", got, "partial")
	}
}

func TestManager_WriteFile_MissingDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing"))

	_, _, err := m.WriteFile("a.js", strings.NewReader("x"))
	if !domain.IsFilesystemError(err) {
		t.Errorf("WriteFile() error = %v, want FilesystemError", err)
	}
}

func TestManager_WriteText(t *testing.T) {
	m := NewManager(t.TempDir())
	text := "<html><body>Olá, 世界</body></html>"

	path, err := m.WriteText("index.html", text)
	if err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != text {
		t.Errorf("content = %q, want %q", got, text)
	}
}

func TestNewManagerWithChunkSize_Default(t *testing.T) {
	m := NewManagerWithChunkSize("out", 0)
	if m.chunkSize != DefaultChunkSize {
		t.Errorf("chunkSize = %d, want %d", m.chunkSize, DefaultChunkSize)
	}
	if m.RootDir() != "out" {
		t.Errorf("RootDir() = %q, want %q", m.RootDir(), "out")
	}
}
