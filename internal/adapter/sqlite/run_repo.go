package sqlite

import (
	"context"
	"fmt"

	"github.com/extractweb/extract-web/internal/domain"
	"github.com/extractweb/extract-web/internal/port"
)

// RecordRun stores a run and its resource outcomes in one transaction
func (s *Store) RecordRun(ctx context.Context, report *domain.RunReport) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var scripts, stylesheets int
	if report.Page != nil {
		scripts = len(report.Page.Scripts)
		stylesheets = len(report.Page.Stylesheets)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs (page_url, started_at, finished_at, scripts, stylesheets, index_saved, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, report.PageURL, report.StartedAt, report.FinishedAt, scripts, stylesheets, report.IndexSaved, errString(report.Err))
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO resources (run_id, position, url, kind, file_name, bytes, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare resource insert: %w", err)
	}
	defer stmt.Close()

	for i, o := range report.Resources {
		if _, err := stmt.ExecContext(ctx, runID, i, o.URL, o.Kind.String(), o.FileName, o.Bytes, errString(o.Err)); err != nil {
			return 0, fmt.Errorf("failed to insert resource %s: %w", o.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// RecentRuns returns up to limit runs, newest first
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]port.RunSummary, error) {
	query := `
		SELECT r.id, r.page_url, r.scripts, r.stylesheets, r.index_saved, r.error,
			   COALESCE(SUM(CASE WHEN res.error = '' THEN 1 ELSE 0 END), 0),
			   COALESCE(SUM(CASE WHEN res.error != '' THEN 1 ELSE 0 END), 0),
			   COALESCE(SUM(CASE WHEN res.error = '' THEN res.bytes ELSE 0 END), 0)
		FROM runs r
		LEFT JOIN resources res ON res.run_id = r.id
		GROUP BY r.id
		ORDER BY r.id DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []port.RunSummary
	for rows.Next() {
		var r port.RunSummary
		if err := rows.Scan(
			&r.ID, &r.PageURL, &r.Scripts, &r.Stylesheets, &r.IndexSaved, &r.Error,
			&r.Downloaded, &r.Failed, &r.Bytes,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
