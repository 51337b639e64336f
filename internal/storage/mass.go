package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jbreda/labdaily/internal/platform/dates"
)

// ErrMassNotFound is returned when no weighing exists for a day.
var ErrMassNotFound = errors.New("no mass record for animal on date")

// MassRecord is a single weighing in grams.
type MassRecord struct {
	AnimalID   string
	Date       dates.Day
	Mass       float64
	Technician string
}

// GetDailyMass fetches the weighing for one animal and day.
func (db *DB) GetDailyMass(ctx context.Context, animalID string, day dates.Day) (*MassRecord, error) {
	defer observeFetch("mass")()

	row := db.Pool.QueryRow(ctx, `
		SELECT mass, technician
		FROM mass
		WHERE animal_id = $1 AND mass_date = $2
	`, animalID, toDate(day))

	var (
		record     MassRecord
		technician pgtype.Text
	)

	if err := row.Scan(&record.Mass, &technician); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMassNotFound
		}

		return nil, fmt.Errorf("get daily mass: %w", err)
	}

	record.AnimalID = animalID
	record.Date = day
	record.Technician = fromText(technician)

	return &record, nil
}

// GetMassDates returns the distinct weighing dates for an animal within
// the inclusive range, ascending.
func (db *DB) GetMassDates(ctx context.Context, animalID string, r dates.Range) ([]dates.Day, error) {
	defer observeFetch("mass")()

	rows, err := db.Pool.Query(ctx, `
		SELECT DISTINCT mass_date
		FROM mass
		WHERE animal_id = $1
		  AND mass_date >= $2
		  AND mass_date <= $3
		ORDER BY mass_date
	`, animalID, toDate(r.Min), toDate(r.Max))
	if err != nil {
		return nil, fmt.Errorf("get mass dates: %w", err)
	}
	defer rows.Close()

	return scanDates(rows)
}
