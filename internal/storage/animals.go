package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrAnimalNotFound is returned when the registry has no entry for an
// animal identifier.
var ErrAnimalNotFound = errors.New("animal not found in registry")

// Known species classes in the registry.
const (
	SpeciesMouse = "mouse"
	SpeciesRat   = "rat"
)

// Animal is a registry entry. PercentTarget is the animal's registered
// water restriction percentage as a fraction of body weight (e.g. 0.04)
// and is nil when the animal has no registered target.
type Animal struct {
	ID                string
	Species           string
	PercentTarget     *float64
	RigLoggingEnabled bool
}

// GetAnimal fetches a registry entry by animal identifier.
func (db *DB) GetAnimal(ctx context.Context, animalID string) (*Animal, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT animal_id, species, percent_target, rig_logging_enabled
		FROM animals
		WHERE animal_id = $1
	`, animalID)

	var (
		animal Animal
		pct    pgtype.Float8
	)

	if err := row.Scan(&animal.ID, &animal.Species, &pct, &animal.RigLoggingEnabled); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAnimalNotFound
		}

		return nil, fmt.Errorf("get animal: %w", err)
	}

	animal.PercentTarget = fromFloat8Ptr(pct)

	return &animal, nil
}
