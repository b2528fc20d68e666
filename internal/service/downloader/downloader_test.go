package downloader

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/extractweb/extract-web/internal/adapter/filesystem"
	"github.com/extractweb/extract-web/internal/adapter/httpfetch"
	"github.com/extractweb/extract-web/internal/domain"
	"github.com/extractweb/extract-web/internal/port"
	"go.uber.org/zap"
)

// mockFetcher implements port.Fetcher for testing
type mockFetcher struct {
	bodies map[string]string
	closed int
}

func (m *mockFetcher) Get(ctx context.Context, url string) (*port.Response, error) {
	body, ok := m.bodies[url]
	if !ok {
		return nil, domain.NewStatusError(url, http.StatusNotFound)
	}
	return &port.Response{
		URL:        url,
		StatusCode: http.StatusOK,
		Length:     int64(len(body)),
		Body:       &closeCounter{Reader: strings.NewReader(body), closed: &m.closed},
	}, nil
}

type closeCounter struct {
	io.Reader
	closed *int
}

func (c *closeCounter) Close() error {
	*c.closed++
	return nil
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestFileNameFor(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		kind    domain.ResourceKind
		want    string
		wantErr bool
	}{
		{name: "extension appended", url: "http://x.test/lib", kind: domain.KindScript, want: "lib.js"},
		{name: "extension kept", url: "http://x.test/js/app.js", kind: domain.KindScript, want: "app.js"},
		{name: "stylesheet", url: "http://x.test/css/site.css", kind: domain.KindStylesheet, want: "site.css"},
		{name: "query string folded into name", url: "http://x.test/app.js?v=3", kind: domain.KindScript, want: "app.jsv=3.js"},
		{name: "css served by script", url: "http://x.test/style.php?theme=dark", kind: domain.KindStylesheet, want: "style.phptheme=dark.css"},
		{name: "encoded space", url: "http://x.test/my%20lib.js", kind: domain.KindScript, want: "my%20lib.js"},
		{name: "trailing slash", url: "http://x.test/dir/", kind: domain.KindScript, wantErr: true},
		{name: "no slash", url: "lib", kind: domain.KindScript, want: "lib.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FileNameFor(tt.url, tt.kind)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrNoValidName) || !domain.IsSkippable(err) {
					t.Errorf("FileNameFor() error = %v, want skippable ErrNoValidName", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FileNameFor() error = %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("FileNameFor() = %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestDownloader_AppendsExtension(t *testing.T) {
	dir := t.TempDir()
	f := &mockFetcher{bodies: map[string]string{"http://x.test/lib": "var lib = {};"}}
	d := New(f, filesystem.NewManager(dir), zap.NewNop(), 0)

	res, err := d.Download(context.Background(), "http://x.test/lib", domain.KindScript)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	if res.FileName != "lib.js" {
		t.Errorf("FileName = %q, want %q", res.FileName, "lib.js")
	}
	if res.Path != filepath.Join(dir, "lib.js") {
		t.Errorf("Path = %q, want %q", res.Path, filepath.Join(dir, "lib.js"))
	}
	if res.BytesWritten != int64(len("var lib = {};")) {
		t.Errorf("BytesWritten = %d", res.BytesWritten)
	}

	got, err := os.ReadFile(filepath.Join(dir, "lib.js"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "var lib = {};" {
		t.Errorf("content = %q", got)
	}
	if f.closed != 1 {
		t.Errorf("body closed %d times, want 1", f.closed)
	}
}

func TestDownloader_NotFound(t *testing.T) {
	dir := t.TempDir()
	d := New(&mockFetcher{}, filesystem.NewManager(dir), zap.NewNop(), 0)

	res, err := d.Download(context.Background(), "http://x.test/missing.js", domain.KindScript)
	if res != nil {
		t.Errorf("Download() result = %+v, want nil", res)
	}

	var fe *domain.FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusNotFound {
		t.Fatalf("Download() error = %v, want 404 FetchError", err)
	}
	if names := listDir(t, dir); len(names) != 0 {
		t.Errorf("files created: %v", names)
	}
}

func TestDownloader_NoValidName(t *testing.T) {
	dir := t.TempDir()
	f := &mockFetcher{bodies: map[string]string{"http://x.test/scripts/": "x"}}
	d := New(f, filesystem.NewManager(dir), zap.NewNop(), 0)

	_, err := d.Download(context.Background(), "http://x.test/scripts/", domain.KindScript)
	if !errors.Is(err, domain.ErrNoValidName) {
		t.Fatalf("Download() error = %v, want ErrNoValidName", err)
	}
	if names := listDir(t, dir); len(names) != 0 {
		t.Errorf("files created: %v", names)
	}
	if f.closed != 1 {
		t.Errorf("body closed %d times, want 1", f.closed)
	}
}

func TestDownloader_UnknownKind(t *testing.T) {
	dir := t.TempDir()
	f := &mockFetcher{bodies: map[string]string{"http://x.test/logo.png": "png"}}
	d := New(f, filesystem.NewManager(dir), zap.NewNop(), 0)

	_, err := d.Download(context.Background(), "http://x.test/logo.png", domain.ResourceKind("image"))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Download() error = %v, want ErrInvalidInput", err)
	}
	if f.closed != 0 {
		t.Errorf("fetched resource of unknown kind, body closed %d times", f.closed)
	}
	if names := listDir(t, dir); len(names) != 0 {
		t.Errorf("files created: %v", names)
	}
}

func TestDownloader_WriteFailure(t *testing.T) {
	f := &mockFetcher{bodies: map[string]string{"http://x.test/a.css": "body{}"}}
	fs := filesystem.NewManager(filepath.Join(t.TempDir(), "not-created"))
	d := New(f, fs, zap.NewNop(), 0)

	_, err := d.Download(context.Background(), "http://x.test/a.css", domain.KindStylesheet)
	if !domain.IsFilesystemError(err) {
		t.Errorf("Download() error = %v, want FilesystemError", err)
	}
}

func TestDownloader_HTTPServer(t *testing.T) {
	payload := bytes.Repeat([]byte("/* padding */\n"), 1000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/css/site":
			w.Write(payload)
		case "/slow.js":
			w.(http.Flusher).Flush()
			time.Sleep(20 * time.Millisecond)
			io.WriteString(w, "done()")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := New(httpfetch.NewClient(), filesystem.NewManager(dir), zap.NewNop(), time.Millisecond)

	res, err := d.Download(context.Background(), srv.URL+"/css/site", domain.KindStylesheet)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if res.FileName != "site.css" || res.BytesWritten != int64(len(payload)) {
		t.Errorf("result = %+v", res)
	}
	got, _ := os.ReadFile(filepath.Join(dir, "site.css"))
	if !bytes.Equal(got, payload) {
		t.Error("content mismatch")
	}

	if _, err := d.Download(context.Background(), srv.URL+"/slow.js", domain.KindScript); err != nil {
		t.Fatalf("Download() slow error = %v", err)
	}

	if _, err := d.Download(context.Background(), srv.URL+"/gone.js", domain.KindScript); !domain.IsFetchError(err) {
		t.Errorf("Download() error = %v, want FetchError", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gone.js")); !os.IsNotExist(err) {
		t.Error("gone.js was created")
	}
}
