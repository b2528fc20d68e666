package port

import (
	"context"

	"github.com/extractweb/extract-web/internal/domain"
)

// RunSummary is a journal row describing a past run
type RunSummary struct {
	ID          int64
	PageURL     string
	Scripts     int
	Stylesheets int
	Downloaded  int
	Failed      int
	Bytes       int64
	IndexSaved  bool
	Error       string
}

// Journal records the outcome of runs
type Journal interface {
	// RecordRun stores report and returns the new run ID
	RecordRun(ctx context.Context, report *domain.RunReport) (int64, error)

	// RecentRuns returns up to limit runs, newest first
	RecentRuns(ctx context.Context, limit int) ([]RunSummary, error)

	Close() error
}
