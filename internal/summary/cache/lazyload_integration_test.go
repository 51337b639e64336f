package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jbreda/labdaily/internal/platform/dates"
	"github.com/jbreda/labdaily/internal/storage"
	"github.com/jbreda/labdaily/internal/summary"
)

// stubSource serves a fixed stretch of mass and session records for
// one animal, counting mass lookups so tests can assert which dates
// actually hit the source.
type stubSource struct {
	animal      storage.Animal
	days        []dates.Day
	massFetches int
}

func (s *stubSource) GetAnimal(_ context.Context, animalID string) (*storage.Animal, error) {
	if animalID != s.animal.ID {
		return nil, storage.ErrAnimalNotFound
	}

	a := s.animal

	return &a, nil
}

func (s *stubSource) GetSessionDates(_ context.Context, _ string, r dates.Range) ([]dates.Day, error) {
	return s.daysIn(r), nil
}

func (s *stubSource) GetMassDates(_ context.Context, _ string, r dates.Range) ([]dates.Day, error) {
	return s.daysIn(r), nil
}

func (s *stubSource) GetDailySession(_ context.Context, animalID string, d dates.Day) (*storage.SessionRecord, error) {
	if !s.has(d) {
		return nil, storage.ErrSessionNotFound
	}

	return &storage.SessionRecord{AnimalID: animalID, Date: d, NDoneTrials: 100, Rig: "Rig07"}, nil
}

func (s *stubSource) GetDailyMass(_ context.Context, animalID string, d dates.Day) (*storage.MassRecord, error) {
	s.massFetches++

	if !s.has(d) {
		return nil, storage.ErrMassNotFound
	}

	return &storage.MassRecord{AnimalID: animalID, Date: d, Mass: 300}, nil
}

func (s *stubSource) GetDailyWater(context.Context, string, dates.Day) (*storage.WaterRecord, error) {
	return nil, storage.ErrWaterNotFound
}

func (s *stubSource) GetDailyRigWater(context.Context, string, dates.Day) (*storage.RigWaterRecord, error) {
	return nil, storage.ErrRigWaterNotFound
}

func (s *stubSource) daysIn(r dates.Range) []dates.Day {
	var out []dates.Day

	for _, d := range s.days {
		if r.Contains(d) {
			out = append(out, d)
		}
	}

	return out
}

func (s *stubSource) has(d dates.Day) bool {
	for _, known := range s.days {
		if known.Equal(d) {
			return true
		}
	}

	return false
}

func TestLazyLoadAgainstCacheFile(t *testing.T) {
	ctx := context.Background()

	r, err := dates.ParseRange("2023-05-01", "2023-05-05")
	require.NoError(t, err)

	src := &stubSource{
		animal: storage.Animal{ID: "R610", Species: storage.SpeciesRat},
		days:   r.Days(),
	}

	path := filepath.Join(t.TempDir(), "daily_summary.db")
	logger := zerolog.Nop()

	store, err := Open(path)
	require.NoError(t, err)

	asm := summary.NewAssembler(src, summary.DefaultPolicy(), &logger, false)
	loader := summary.NewLazyLoader(store, asm, &logger)

	table, err := loader.Load(ctx, []string{"R610"}, r, summary.LoadOptions{SaveOut: true})
	require.NoError(t, err)
	require.Equal(t, 5, table.Len())

	fetchesAfterFirst := src.massFetches

	require.NoError(t, store.Close())

	// a new handle on the same file must see the saved rows and skip
	// refetching covered dates
	reopened, err := Open(path)
	require.NoError(t, err)

	defer reopened.Close()

	loader = summary.NewLazyLoader(reopened, asm, &logger)

	table, err = loader.Load(ctx, []string{"R610"}, r, summary.LoadOptions{SaveOut: true})
	require.NoError(t, err)
	require.Equal(t, 5, table.Len())
	require.Equal(t, fetchesAfterFirst, src.massFetches, "covered dates must be served from the cache file")
}
