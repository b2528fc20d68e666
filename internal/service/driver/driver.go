package driver

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/extractweb/extract-web/internal/domain"
	"github.com/extractweb/extract-web/internal/port"
	"go.uber.org/zap"
)

// IndexFileName is the file the page markup is saved to
const IndexFileName = "index.html"

// PageExtractor lists the resources of a page
type PageExtractor interface {
	Extract(ctx context.Context, pageURL string) (*domain.Page, error)
}

// ResourceDownloader saves a single resource
type ResourceDownloader interface {
	Download(ctx context.Context, resourceURL string, kind domain.ResourceKind) (*domain.DownloadResult, error)
}

// Driver runs one extraction end to end
type Driver struct {
	extractor  PageExtractor
	downloader ResourceDownloader
	fs         port.FileSystem
	journal    port.Journal // optional
	report     *reporter
	logger     *zap.Logger
}

// New creates a new Driver. Progress lines are written to out; journal may be nil.
func New(
	extractor PageExtractor,
	downloader ResourceDownloader,
	fs port.FileSystem,
	journal port.Journal,
	out io.Writer,
	logger *zap.Logger,
) *Driver {
	return &Driver{
		extractor:  extractor,
		downloader: downloader,
		fs:         fs,
		journal:    journal,
		report:     &reporter{w: out},
		logger:     logger,
	}
}

// Run extracts pageURL, downloads every script and stylesheet it links to,
// and saves the page markup as index.html.
//
// Per-resource failures are printed and skipped. The returned error is set
// only when the run could not complete: extraction failed, the output
// directory could not be created, or index.html could not be written.
func (d *Driver) Run(ctx context.Context, pageURL string) (*domain.RunReport, error) {
	run := &domain.RunReport{
		PageURL:   pageURL,
		StartedAt: time.Now(),
	}
	defer d.finish(ctx, run)

	d.logger.Info("run started",
		zap.String("url", pageURL),
		zap.String("output_dir", d.fs.RootDir()))

	page, err := d.extractor.Extract(ctx, pageURL)
	if err != nil {
		d.report.extractionFailed(err)
		d.logger.Warn("extraction failed", zap.String("url", pageURL), zap.Error(err))
		run.Err = err
		return run, err
	}
	run.Page = page
	d.logger.Info("resources extracted", zap.Int("count", page.ResourceCount()))

	d.report.resources(page)

	if err := d.fs.EnsureRoot(); err != nil {
		d.report.directoryFailed(d.fs.RootDir(), err)
		run.Err = err
		return run, err
	}

	for _, u := range page.Scripts {
		run.Resources = append(run.Resources, d.download(ctx, u, domain.KindScript))
	}
	for _, u := range page.Stylesheets {
		run.Resources = append(run.Resources, d.download(ctx, u, domain.KindStylesheet))
	}

	if _, err := d.fs.WriteText(IndexFileName, page.HTML); err != nil {
		d.report.saveFailed(IndexFileName, err)
		run.Err = err
		return run, err
	}
	run.IndexSaved = true
	d.report.saved(IndexFileName)

	return run, nil
}

// download saves one resource and converts the result into an outcome
func (d *Driver) download(ctx context.Context, resourceURL string, kind domain.ResourceKind) domain.ResourceOutcome {
	outcome := domain.ResourceOutcome{URL: resourceURL, Kind: kind}

	res, err := d.downloader.Download(ctx, resourceURL, kind)
	if err != nil {
		outcome.Err = err
		d.report.downloadFailed(resourceURL, err)
		d.logger.Debug("resource skipped",
			zap.String("url", resourceURL),
			zap.Bool("skippable", domain.IsSkippable(err)),
			zap.Error(err))
		return outcome
	}

	outcome.FileName = res.FileName
	outcome.Bytes = res.BytesWritten
	d.report.downloaded(res)
	return outcome
}

// finish prints the summary and records the run in the journal
func (d *Driver) finish(ctx context.Context, run *domain.RunReport) {
	run.FinishedAt = time.Now()

	if run.Page != nil && (run.Err == nil || len(run.Resources) > 0) {
		d.report.summary(run, d.fs.RootDir())
	}

	d.logger.Info("run finished",
		zap.String("url", run.PageURL),
		zap.Int("downloaded", run.Downloaded()),
		zap.Int("failed", run.Failed()),
		zap.Bool("index_saved", run.IndexSaved),
		zap.Duration("duration", run.Duration()))

	if d.journal == nil {
		return
	}
	// Record even when the run was cancelled
	if errors.Is(ctx.Err(), context.Canceled) {
		ctx = context.WithoutCancel(ctx)
	}
	id, err := d.journal.RecordRun(ctx, run)
	if err != nil {
		d.logger.Warn("failed to record run in journal", zap.Error(err))
		return
	}
	d.logger.Debug("run recorded", zap.Int64("run_id", id))
}
