package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jbreda/labdaily/internal/platform/dates"
	"github.com/jbreda/labdaily/internal/platform/observability"
)

// ErrSessionNotFound is returned when an animal ran no sessions on a day.
var ErrSessionNotFound = errors.New("no session for animal on date")

// SessionRecord is the per-day training summary drawn from the sessions
// source. Days with several sessions are aggregated: trial counts are
// summed, the rig and technician come from the last session, and rates
// and scores are trial-weighted where the source provides them.
type SessionRecord struct {
	AnimalID    string
	Date        dates.Day
	NDoneTrials int
	TrialRate   *float64
	Rig         string
	Technician  string
	Performance *float64
	SideBias    *float64
}

// GetSessionDates returns the distinct session dates for an animal
// within the inclusive range, ascending.
func (db *DB) GetSessionDates(ctx context.Context, animalID string, r dates.Range) ([]dates.Day, error) {
	defer observeFetch("sessions")()

	rows, err := db.Pool.Query(ctx, `
		SELECT DISTINCT session_date
		FROM sessions
		WHERE animal_id = $1
		  AND session_date >= $2
		  AND session_date <= $3
		ORDER BY session_date
	`, animalID, toDate(r.Min), toDate(r.Max))
	if err != nil {
		return nil, fmt.Errorf("get session dates: %w", err)
	}
	defer rows.Close()

	return scanDates(rows)
}

// GetDailySession fetches the aggregated session record for one day.
func (db *DB) GetDailySession(ctx context.Context, animalID string, day dates.Day) (*SessionRecord, error) {
	defer observeFetch("sessions")()

	row := db.Pool.QueryRow(ctx, `
		SELECT SUM(n_done_trials)::int,
		       MAX(trial_rate),
		       (ARRAY_AGG(rig ORDER BY id DESC))[1],
		       (ARRAY_AGG(technician ORDER BY id DESC))[1],
		       AVG(performance),
		       AVG(side_bias)
		FROM sessions
		WHERE animal_id = $1
		  AND session_date = $2
		  AND n_done_trials > 1
		GROUP BY animal_id, session_date
	`, animalID, toDate(day))

	var (
		record      SessionRecord
		trialRate   pgtype.Float8
		rig         pgtype.Text
		technician  pgtype.Text
		performance pgtype.Float8
		sideBias    pgtype.Float8
	)

	err := row.Scan(&record.NDoneTrials, &trialRate, &rig, &technician, &performance, &sideBias)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}

		return nil, fmt.Errorf("get daily session: %w", err)
	}

	record.AnimalID = animalID
	record.Date = day
	record.TrialRate = fromFloat8Ptr(trialRate)
	record.Rig = fromText(rig)
	record.Technician = fromText(technician)
	record.Performance = fromFloat8Ptr(performance)
	record.SideBias = fromFloat8Ptr(sideBias)

	return &record, nil
}

func scanDates(rows pgx.Rows) ([]dates.Day, error) {
	var days []dates.Day

	for rows.Next() {
		var d pgtype.Date
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}

		days = append(days, fromDate(d))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dates: %w", err)
	}

	return days, nil
}

func observeFetch(source string) func() {
	start := time.Now()

	return func() {
		observability.SourceFetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	}
}
