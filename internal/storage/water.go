package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jbreda/labdaily/internal/platform/dates"
)

// ErrWaterNotFound is returned when no restriction entry exists for a day.
var ErrWaterNotFound = errors.New("no water record for animal on date")

// WaterRecord is a daily water-restriction entry: the volume given in
// the pub (mL) and the restriction percentage in force that day, as a
// fraction of body weight.
type WaterRecord struct {
	AnimalID      string
	Date          dates.Day
	PubVolume     float64
	PercentTarget float64
}

// GetDailyWater fetches the restriction entry for one animal and day.
// The water source occasionally carries a placeholder zero row next to
// the real one for the same day, so both fields take the MAX over the
// day's rows.
func (db *DB) GetDailyWater(ctx context.Context, animalID string, day dates.Day) (*WaterRecord, error) {
	defer observeFetch("water")()

	row := db.Pool.QueryRow(ctx, `
		SELECT MAX(pub_volume), MAX(percent_target)
		FROM water
		WHERE animal_id = $1 AND water_date = $2
		GROUP BY animal_id, water_date
	`, animalID, toDate(day))

	var (
		record WaterRecord
		pub    pgtype.Float8
		pct    pgtype.Float8
	)

	if err := row.Scan(&pub, &pct); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWaterNotFound
		}

		return nil, fmt.Errorf("get daily water: %w", err)
	}

	record.AnimalID = animalID
	record.Date = day
	record.PubVolume = pub.Float64
	record.PercentTarget = pct.Float64

	return &record, nil
}
