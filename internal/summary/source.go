package summary

import (
	"context"

	"github.com/jbreda/labdaily/internal/platform/dates"
	"github.com/jbreda/labdaily/internal/storage"
)

// Source is the read-only view of the lab database the assembler
// consumes. *storage.DB satisfies it; tests substitute an in-memory
// fake.
type Source interface {
	GetAnimal(ctx context.Context, animalID string) (*storage.Animal, error)
	GetSessionDates(ctx context.Context, animalID string, r dates.Range) ([]dates.Day, error)
	GetMassDates(ctx context.Context, animalID string, r dates.Range) ([]dates.Day, error)
	GetDailySession(ctx context.Context, animalID string, day dates.Day) (*storage.SessionRecord, error)
	GetDailyMass(ctx context.Context, animalID string, day dates.Day) (*storage.MassRecord, error)
	GetDailyWater(ctx context.Context, animalID string, day dates.Day) (*storage.WaterRecord, error)
	GetDailyRigWater(ctx context.Context, animalID string, day dates.Day) (*storage.RigWaterRecord, error)
}

// Store persists assembled summary tables between sessions. The SQLite
// cache in internal/summary/cache is the production implementation.
type Store interface {
	Load(ctx context.Context) (Table, error)
	Save(ctx context.Context, table Table) error
	Replace(ctx context.Context, table Table) error
}
