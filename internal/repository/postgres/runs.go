// Package postgres persists run history for audit. Report files remain
// the primary artifact; the table only keeps the summary rows queryable
// across hosts.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/catalog-sync/internal/sync"
)

// RunRepo stores run summaries in PostgreSQL.
type RunRepo struct{ db *sql.DB }

// NewRunRepo creates a Postgres-backed run-history repository.
func NewRunRepo(db *sql.DB) *RunRepo { return &RunRepo{db: db} }

// RunSummary is one persisted run row.
type RunSummary struct {
	RunID      string
	Status     string
	Inserted   int
	Skipped    int
	Failed     int
	Remaining  int
	StartedAt  string
	FinishedAt string
}

// Save inserts one run summary row.
func (r *RunRepo) Save(ctx context.Context, report *sync.RunReport) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_runs (run_id, status, inserted, skipped, failed, remaining, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, report.RunID, string(report.Status), report.Inserted, report.Skipped,
		report.Failed, report.Remaining, report.StartedAt, report.FinishedAt)
	if err != nil {
		return fmt.Errorf("save run %s: %w", report.RunID, err)
	}
	return nil
}

// ListRecent returns the most recent runs, newest first.
func (r *RunRepo) ListRecent(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, status, inserted, skipped, failed, remaining, started_at, finished_at
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		if err := rows.Scan(&run.RunID, &run.Status, &run.Inserted, &run.Skipped,
			&run.Failed, &run.Remaining, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
