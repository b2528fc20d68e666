package downloader

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/extractweb/extract-web/internal/domain"
	"github.com/extractweb/extract-web/internal/domain/vo"
	"github.com/extractweb/extract-web/internal/port"
	"github.com/extractweb/extract-web/internal/util/ratelimiter"
	"go.uber.org/zap"
)

// Downloader saves linked resources into the output directory
type Downloader struct {
	fetcher          port.Fetcher
	fs               port.FileSystem
	logger           *zap.Logger
	progressInterval time.Duration
}

// New creates a new Downloader
func New(fetcher port.Fetcher, fs port.FileSystem, logger *zap.Logger, progressInterval time.Duration) *Downloader {
	if progressInterval == 0 {
		progressInterval = time.Second
	}
	return &Downloader{
		fetcher:          fetcher,
		fs:               fs,
		logger:           logger,
		progressInterval: progressInterval,
	}
}

// Download fetches resourceURL and streams it into the output directory under
// a name derived from the last path segment of the URL, with the kind's
// extension appended when missing.
//
// Errors are *domain.FetchError, *domain.FilesystemError, a
// *domain.SkippableError wrapping domain.ErrNoValidName, or
// domain.ErrInvalidInput for an unknown kind.
func (d *Downloader) Download(ctx context.Context, resourceURL string, kind domain.ResourceKind) (*domain.DownloadResult, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown resource kind %q", domain.ErrInvalidInput, kind)
	}

	d.logger.Debug("downloading resource",
		zap.String("url", resourceURL),
		zap.String("kind", kind.String()))

	resp, err := d.fetcher.Get(ctx, resourceURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	name, err := FileNameFor(resourceURL, kind)
	if err != nil {
		return nil, err
	}

	reader := &progressReader{
		reader:  resp.Body,
		url:     resourceURL,
		total:   resp.Length,
		limiter: ratelimiter.New(d.progressInterval),
		logger:  d.logger,
	}
	reader.limiter.Prime()

	path, written, err := d.fs.WriteFile(name.String(), reader)
	if err != nil {
		d.logger.Debug("resource write failed",
			zap.String("url", resourceURL),
			zap.String("path", path),
			zap.Int64("bytes_written", written),
			zap.Error(err))
		return nil, err
	}

	d.logger.Info("resource saved",
		zap.String("url", resourceURL),
		zap.String("path", path),
		zap.Int64("size", written))

	return &domain.DownloadResult{
		Path:         path,
		FileName:     name.String(),
		BytesWritten: written,
	}, nil
}

// FileNameFor derives the local file name for a resource URL: the text after
// the final "/", sanitized, with the kind's extension appended when missing.
func FileNameFor(resourceURL string, kind domain.ResourceKind) (vo.FileName, error) {
	candidate := resourceURL[strings.LastIndex(resourceURL, "/")+1:]

	name, ok := vo.SanitizeFileName(candidate)
	if !ok {
		return vo.FileName{}, domain.NewSkippableError(domain.ErrNoValidName, resourceURL)
	}
	return name.WithExtension(kind.Extension()), nil
}

// progressReader wraps a reader to log download progress
type progressReader struct {
	reader    io.Reader
	url       string
	total     int64
	bytesRead int64
	limiter   *ratelimiter.Limiter
	logger    *zap.Logger
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.bytesRead += int64(n)

	// Periodically log progress
	if ok, _ := r.limiter.Allow(); ok {
		r.logger.Debug("download progress",
			zap.String("url", r.url),
			zap.Int64("bytes", r.bytesRead),
			zap.Int64("total", r.total))
	}

	return n, err
}
