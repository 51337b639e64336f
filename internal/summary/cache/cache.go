// Package cache persists assembled summary tables in a local SQLite
// file so repeat queries only hit the lab database for new dates.
//
// The file is an ordinary SQLite database keyed by (animal_id, date);
// callers hold an explicit *Cache handle rather than sharing a global
// path, which keeps tests deterministic and filesystem side effects
// visible.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // cgo-free sqlite driver

	"github.com/jbreda/labdaily/internal/platform/dates"
	"github.com/jbreda/labdaily/internal/summary"
)

const schema = `
CREATE TABLE IF NOT EXISTS daily_summary (
	animal_id          TEXT NOT NULL,
	summary_date       TEXT NOT NULL,
	mass               REAL,
	n_done_trials      INTEGER,
	trial_rate         REAL,
	rig_volume         REAL NOT NULL DEFAULT 0,
	pub_volume         REAL,
	restriction_target REAL,
	rig                TEXT NOT NULL DEFAULT '',
	technician         TEXT NOT NULL DEFAULT '',
	performance        REAL,
	side_bias          REAL,
	fetched_at         TIMESTAMP NOT NULL,
	PRIMARY KEY (animal_id, summary_date)
)`

// Cache is a handle on one summary cache file.
type Cache struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the cache file at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("init cache schema: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Path returns the file backing this cache.
func (c *Cache) Path() string {
	return c.path
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close cache: %w", err)
	}

	return nil
}

// Load reads the entire cached table.
func (c *Cache) Load(ctx context.Context) (summary.Table, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT animal_id, summary_date, mass, n_done_trials, trial_rate,
		       rig_volume, pub_volume, restriction_target, rig,
		       technician, performance, side_bias, fetched_at
		FROM daily_summary
		ORDER BY animal_id, summary_date
	`)
	if err != nil {
		return summary.Table{}, fmt.Errorf("load cache: %w", err)
	}
	defer rows.Close()

	var table summary.Table

	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return summary.Table{}, err
		}

		table.Upsert(row)
	}

	if err := rows.Err(); err != nil {
		return summary.Table{}, fmt.Errorf("iterate cache rows: %w", err)
	}

	return table, nil
}

// Save upserts the table's rows into the cache, keeping rows for keys
// the table does not mention.
func (c *Cache) Save(ctx context.Context, table summary.Table) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := upsertRows(ctx, tx, table); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cache save: %w", err)
	}

	return nil
}

// Replace overwrites the cache file contents with the table.
func (c *Cache) Replace(ctx context.Context, table summary.Table) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache replace: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_summary`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	if err := upsertRows(ctx, tx, table); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cache replace: %w", err)
	}

	return nil
}

func upsertRows(ctx context.Context, tx *sql.Tx, table summary.Table) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_summary (
			animal_id, summary_date, mass, n_done_trials, trial_rate,
			rig_volume, pub_volume, restriction_target, rig,
			technician, performance, side_bias, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (animal_id, summary_date) DO UPDATE SET
			mass = excluded.mass,
			n_done_trials = excluded.n_done_trials,
			trial_rate = excluded.trial_rate,
			rig_volume = excluded.rig_volume,
			pub_volume = excluded.pub_volume,
			restriction_target = excluded.restriction_target,
			rig = excluded.rig,
			technician = excluded.technician,
			performance = excluded.performance,
			side_bias = excluded.side_bias,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("prepare cache upsert: %w", err)
	}
	defer stmt.Close()

	for _, row := range table.Rows() {
		_, err := stmt.ExecContext(ctx,
			row.AnimalID,
			row.Date.String(),
			row.Mass,
			row.NDoneTrials,
			row.TrialRate,
			row.RigVolume,
			row.PubVolume,
			row.RestrictionTarget,
			row.Rig,
			row.Technician,
			row.Performance,
			row.SideBias,
			row.FetchedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("upsert cache row %s %s: %w", row.AnimalID, row.Date, err)
		}
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(rows rowScanner) (summary.Row, error) {
	var (
		row       summary.Row
		day       string
		fetchedAt string
	)

	err := rows.Scan(
		&row.AnimalID,
		&day,
		&row.Mass,
		&row.NDoneTrials,
		&row.TrialRate,
		&row.RigVolume,
		&row.PubVolume,
		&row.RestrictionTarget,
		&row.Rig,
		&row.Technician,
		&row.Performance,
		&row.SideBias,
		&fetchedAt,
	)
	if err != nil {
		return summary.Row{}, fmt.Errorf("scan cache row: %w", err)
	}

	row.Date, err = dates.ParseDay(day)
	if err != nil {
		return summary.Row{}, fmt.Errorf("cache row date: %w", err)
	}

	if t, err := time.Parse(time.RFC3339Nano, fetchedAt); err == nil {
		row.FetchedAt = t
	}

	return row, nil
}
