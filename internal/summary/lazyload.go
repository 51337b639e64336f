package summary

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jbreda/labdaily/internal/platform/dates"
	"github.com/jbreda/labdaily/internal/platform/observability"
)

// LoadOptions controls a lazy load.
type LoadOptions struct {
	// ForceRefetch re-assembles every candidate date in range even when
	// the cache already covers it. Cached rows outside the request are
	// kept and survive a SaveOut.
	ForceRefetch bool

	// SaveOut persists the merged table back to the store afterwards.
	SaveOut bool
}

// LazyLoader serves summary tables from a persisted store, fetching
// only the (animal, date) pairs the store does not yet cover. Merging
// is a pure cache refresh: a freshly fetched row always replaces a
// cached row with the same key.
type LazyLoader struct {
	store     Store
	assembler *Assembler
	logger    *zerolog.Logger
}

// NewLazyLoader wires a lazy loader around a store and an assembler.
func NewLazyLoader(store Store, assembler *Assembler, logger *zerolog.Logger) *LazyLoader {
	return &LazyLoader{
		store:     store,
		assembler: assembler,
		logger:    logger,
	}
}

// Load returns the merged summary table for the requested animals and
// inclusive range. Cached rows are reused; candidate dates missing from
// the cache are assembled from the sources and folded in, fresh rows
// winning on key collisions. With SaveOut the merged table replaces the
// stored one.
func (l *LazyLoader) Load(ctx context.Context, animalIDs []string, r dates.Range, opts LoadOptions) (Table, error) {
	cached, err := l.loadCached(ctx, opts)
	if err != nil {
		return Table{}, err
	}

	fetched, cachedHits, err := l.fetchMissing(ctx, cached, animalIDs, r, opts)
	if err != nil {
		return Table{}, err
	}

	cached.Merge(fetched)

	observability.CacheRowsServed.WithLabelValues("cache").Add(float64(cachedHits))
	observability.CacheRowsServed.WithLabelValues("fetched").Add(float64(fetched.Len()))

	l.logger.Info().
		Int("cached", cachedHits).
		Int("fetched", fetched.Len()).
		Str("range", r.String()).
		Msg("lazy load complete")

	if opts.SaveOut {
		if err := l.store.Replace(ctx, cached); err != nil {
			return Table{}, fmt.Errorf("persist merged table: %w", err)
		}
	}

	return cached.Filter(animalIDs, r), nil
}

// loadCached always reads the stored table: even a forced refetch must
// merge into it, or a SaveOut would drop rows outside the request.
func (l *LazyLoader) loadCached(ctx context.Context, opts LoadOptions) (Table, error) {
	if opts.ForceRefetch {
		observability.CacheRefetches.Inc()
	}

	cached, err := l.store.Load(ctx)
	if err != nil {
		return Table{}, fmt.Errorf("load cached table: %w", err)
	}

	return cached, nil
}

// fetchMissing assembles every candidate date the cache does not cover
// and reports how many candidates were already cached.
func (l *LazyLoader) fetchMissing(ctx context.Context, cached Table, animalIDs []string, r dates.Range, opts LoadOptions) (Table, int, error) {
	var (
		fetched    Table
		cachedHits int
	)

	for _, animalID := range animalIDs {
		candidates, err := l.assembler.candidateDates(ctx, animalID, r)
		if err != nil {
			return Table{}, 0, err
		}

		missing := candidates

		if !opts.ForceRefetch {
			covered := cached.Dates(animalID)
			missing = missing[:0:0]

			for _, day := range candidates {
				if _, ok := covered[day]; ok {
					cachedHits++
					continue
				}

				missing = append(missing, day)
			}
		}

		rows, err := l.assembler.assembleAnimal(ctx, animalID, missing)
		if err != nil {
			return Table{}, 0, err
		}

		fetched.Upsert(rows...)
	}

	return fetched, cachedHits, nil
}
