package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"adpulse/domain/campaign"
	"adpulse/internal/errors"
)

// RunRecord is one archived pipeline run: identity, timing, row counts per
// stage, and the overall KPI rollup at completion.
type RunRecord struct {
	ID          uuid.UUID `db:"id"`
	StartedAt   time.Time `db:"started_at"`
	FinishedAt  time.Time `db:"finished_at"`
	RawRecords  int       `db:"raw_records"`
	CleanedRows int       `db:"cleaned_records"`
	Overall     campaign.OverallKPIs
}

// Archive persists completed runs to Postgres. The pipeline works entirely
// through the interchange files; the archive is an optional sink enabled by
// DATABASE_URL.
type Archive struct {
	db *sqlx.DB
}

// OpenArchive connects to the archive database and ensures its schema.
func OpenArchive(ctx context.Context, databaseURL string) (*Archive, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, errors.StorageError("connect to archive database", err)
	}
	a := &Archive{db: db}
	if err := a.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) ensureSchema(ctx context.Context) error {
	schema := `CREATE TABLE IF NOT EXISTS pipeline_runs (
		id UUID PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		raw_records INTEGER NOT NULL,
		cleaned_records INTEGER NOT NULL,
		total_impressions DOUBLE PRECISION NOT NULL,
		total_clicks DOUBLE PRECISION NOT NULL,
		total_conversions DOUBLE PRECISION NOT NULL,
		total_cost DOUBLE PRECISION NOT NULL,
		total_revenue DOUBLE PRECISION NOT NULL,
		ctr DOUBLE PRECISION NOT NULL,
		cpc DOUBLE PRECISION NOT NULL,
		cpa DOUBLE PRECISION NOT NULL,
		roas DOUBLE PRECISION NOT NULL,
		conversion_rate DOUBLE PRECISION NOT NULL
	)`
	if _, err := a.db.ExecContext(ctx, schema); err != nil {
		return errors.StorageError("create pipeline_runs table", err)
	}
	return nil
}

// SaveRun inserts one completed run.
func (a *Archive) SaveRun(ctx context.Context, run *RunRecord) error {
	query := `INSERT INTO pipeline_runs (
		id, started_at, finished_at, raw_records, cleaned_records,
		total_impressions, total_clicks, total_conversions, total_cost, total_revenue,
		ctr, cpc, cpa, roas, conversion_rate
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
	)`

	_, err := a.db.ExecContext(ctx, query,
		run.ID, run.StartedAt, run.FinishedAt, run.RawRecords, run.CleanedRows,
		run.Overall.Impressions, run.Overall.Clicks, run.Overall.Conversions,
		run.Overall.Cost, run.Overall.Revenue,
		run.Overall.KPIs.CTR, run.Overall.KPIs.CPC, run.Overall.KPIs.CPA,
		run.Overall.KPIs.ROAS, run.Overall.KPIs.ConversionRate,
	)
	if err != nil {
		return errors.StorageError("insert pipeline run", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (a *Archive) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `SELECT
		id, started_at, finished_at, raw_records, cleaned_records,
		total_impressions, total_clicks, total_conversions, total_cost, total_revenue,
		ctr, cpc, cpa, roas, conversion_rate
	FROM pipeline_runs ORDER BY finished_at DESC LIMIT $1`

	rows, err := a.db.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, errors.StorageError("query pipeline runs", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var run RunRecord
		err := rows.Scan(
			&run.ID, &run.StartedAt, &run.FinishedAt, &run.RawRecords, &run.CleanedRows,
			&run.Overall.Impressions, &run.Overall.Clicks, &run.Overall.Conversions,
			&run.Overall.Cost, &run.Overall.Revenue,
			&run.Overall.KPIs.CTR, &run.Overall.KPIs.CPC, &run.Overall.KPIs.CPA,
			&run.Overall.KPIs.ROAS, &run.Overall.KPIs.ConversionRate,
		)
		if err != nil {
			return nil, errors.StorageError("scan pipeline run", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
