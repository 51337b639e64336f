package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jbreda/labdaily/internal/platform/dates"
)

// ErrRigWaterNotFound is returned when the rig-logging device recorded
// nothing for a day, typically because it was not enabled for the animal.
var ErrRigWaterNotFound = errors.New("no rig water record for animal on date")

// RigWaterRecord is the volume (mL) dispensed by the rig on a day.
type RigWaterRecord struct {
	AnimalID  string
	Date      dates.Day
	RigVolume float64
}

// GetDailyRigWater fetches the rig-dispensed record for one animal and day.
func (db *DB) GetDailyRigWater(ctx context.Context, animalID string, day dates.Day) (*RigWaterRecord, error) {
	defer observeFetch("rig_water")()

	row := db.Pool.QueryRow(ctx, `
		SELECT rig_volume
		FROM rig_water
		WHERE animal_id = $1 AND water_date = $2
	`, animalID, toDate(day))

	var record RigWaterRecord

	if err := row.Scan(&record.RigVolume); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRigWaterNotFound
		}

		return nil, fmt.Errorf("get daily rig water: %w", err)
	}

	record.AnimalID = animalID
	record.Date = day

	return &record, nil
}
