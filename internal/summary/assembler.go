package summary

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/jbreda/labdaily/internal/platform/dates"
	"github.com/jbreda/labdaily/internal/platform/observability"
	"github.com/jbreda/labdaily/internal/storage"
)

// Assembler builds daily summary rows from the record sources.
type Assembler struct {
	source  Source
	policy  Policy
	logger  *zerolog.Logger
	verbose bool
}

// NewAssembler wires an assembler. The verbose flag gates fallback
// diagnostics in the log; it never changes computed values.
func NewAssembler(source Source, policy Policy, logger *zerolog.Logger, verbose bool) *Assembler {
	return &Assembler{
		source:  source,
		policy:  policy,
		logger:  logger,
		verbose: verbose,
	}
}

// Assemble produces one row per (animal, date) pair that has a session
// or mass record inside the inclusive range, sorted by (animal_id,
// date). An animal with no records in range contributes zero rows.
func (a *Assembler) Assemble(ctx context.Context, animalIDs []string, r dates.Range) (Table, error) {
	var table Table

	for _, animalID := range animalIDs {
		candidates, err := a.candidateDates(ctx, animalID, r)
		if err != nil {
			return Table{}, err
		}

		rows, err := a.assembleAnimal(ctx, animalID, candidates)
		if err != nil {
			return Table{}, err
		}

		table.Upsert(rows...)
	}

	return table, nil
}

// candidateDates returns the union of session and mass dates for an
// animal within the range, ascending.
func (a *Assembler) candidateDates(ctx context.Context, animalID string, r dates.Range) ([]dates.Day, error) {
	sessionDates, err := a.source.GetSessionDates(ctx, animalID, r)
	if err != nil {
		return nil, fmt.Errorf("session dates for %s: %w", animalID, err)
	}

	massDates, err := a.source.GetMassDates(ctx, animalID, r)
	if err != nil {
		return nil, fmt.Errorf("mass dates for %s: %w", animalID, err)
	}

	return unionDays(sessionDates, massDates), nil
}

func (a *Assembler) assembleAnimal(ctx context.Context, animalID string, days []dates.Day) ([]Row, error) {
	if len(days) == 0 {
		return nil, nil
	}

	animal, err := a.lookupAnimal(ctx, animalID)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(days))

	for _, day := range days {
		row, err := a.assembleDay(ctx, animal, day)
		if err != nil {
			return nil, err
		}

		rows = append(rows, row)
		observability.SummariesAssembled.WithLabelValues(animalID).Inc()
	}

	a.logger.Info().
		Str("animal", animalID).
		Int("days", len(rows)).
		Stringer("from", days[0]).
		Stringer("to", days[len(days)-1]).
		Msg("assembled daily summaries")

	return rows, nil
}

// lookupAnimal fetches the registry entry; a missing entry is not fatal
// because sessions can exist before registration is complete.
func (a *Assembler) lookupAnimal(ctx context.Context, animalID string) (*storage.Animal, error) {
	animal, err := a.source.GetAnimal(ctx, animalID)
	if err != nil {
		if errors.Is(err, storage.ErrAnimalNotFound) {
			a.logger.Warn().Str("animal", animalID).Msg("animal missing from registry, using policy defaults")

			return &storage.Animal{ID: animalID}, nil
		}

		return nil, fmt.Errorf("animal registry for %s: %w", animalID, err)
	}

	return animal, nil
}

func (a *Assembler) assembleDay(ctx context.Context, animal *storage.Animal, day dates.Day) (Row, error) {
	row := Row{
		AnimalID:  animal.ID,
		Date:      day,
		FetchedAt: time.Now().UTC(),
	}

	massRecord, err := a.fetchMass(ctx, animal.ID, day)
	if err != nil {
		return Row{}, err
	}

	if massRecord != nil {
		mass := massRecord.Mass
		row.Mass = &mass
		row.Technician = massRecord.Technician
	}

	if err := a.fetchWater(ctx, animal, day, &row); err != nil {
		return Row{}, err
	}

	rigVolume, err := a.fetchRigVolume(ctx, animal.ID, day)
	if err != nil {
		return Row{}, err
	}

	row.RigVolume = rigVolume

	if err := a.fetchSession(ctx, animal.ID, day, &row); err != nil {
		return Row{}, err
	}

	return row, nil
}

// fetchMass returns the day's weighing, looking back the configured
// number of calendar days when missing. Returns nil when no weighing is
// found within the lookback.
func (a *Assembler) fetchMass(ctx context.Context, animalID string, day dates.Day) (*storage.MassRecord, error) {
	record, err := a.source.GetDailyMass(ctx, animalID, day)
	if err == nil {
		return record, nil
	}

	if !errors.Is(err, storage.ErrMassNotFound) {
		return nil, fmt.Errorf("mass for %s on %s: %w", animalID, day, err)
	}

	prev := day

	for back := 1; back <= a.policy.MassLookbackDays; back++ {
		prev = prev.Prev()

		record, err = a.source.GetDailyMass(ctx, animalID, prev)
		if err == nil {
			a.fallback(observability.FallbackMassLookback, animalID, day, "mass not recorded, using previous day")

			reused := *record
			reused.Date = day
			reused.Technician = ""

			return &reused, nil
		}

		if !errors.Is(err, storage.ErrMassNotFound) {
			return nil, fmt.Errorf("mass lookback for %s on %s: %w", animalID, prev, err)
		}
	}

	a.fallback(observability.FallbackMassMissing, animalID, day, "mass not recorded within lookback, leaving null")

	return nil, nil
}

// fetchWater resolves percent target, restriction target and pub volume
// for the day. When no water entry exists, the percentage comes from the
// animal's registered target or the species default, and the pub volume
// is assumed to equal the computed restriction target.
func (a *Assembler) fetchWater(ctx context.Context, animal *storage.Animal, day dates.Day, row *Row) error {
	water, err := a.source.GetDailyWater(ctx, animal.ID, day)
	if err != nil && !errors.Is(err, storage.ErrWaterNotFound) {
		return fmt.Errorf("water for %s on %s: %w", animal.ID, day, err)
	}

	percent := a.resolvePercentTarget(animal, water, day)

	if row.Mass != nil {
		target := round2(*row.Mass * percent)
		row.RestrictionTarget = &target
	}

	if water != nil {
		pub := water.PubVolume
		row.PubVolume = &pub

		return nil
	}

	// No restriction entry that day: assume the animal was given exactly
	// its target in the pub. This is a data-filling policy, not a
	// measurement.
	if row.RestrictionTarget != nil {
		pub := *row.RestrictionTarget
		row.PubVolume = &pub
	}

	a.fallback(observability.FallbackPubDefault, animal.ID, day, "no water entry, assuming pub volume equals restriction target")

	return nil
}

// resolvePercentTarget picks the restriction percentage for a day: the
// day's water entry when it carries one, else the animal's registered
// percentage, else the species default.
func (a *Assembler) resolvePercentTarget(animal *storage.Animal, water *storage.WaterRecord, day dates.Day) float64 {
	if water != nil && water.PercentTarget > 0 {
		return water.PercentTarget
	}

	if animal.PercentTarget != nil && *animal.PercentTarget > 0 {
		return *animal.PercentTarget
	}

	percent, configured := a.policy.percentForSpecies(animal.Species)
	if !configured {
		a.fallback(observability.FallbackSpeciesPct, animal.ID, day, "species has no configured percent target, using fallback")
	}

	return percent
}

func (a *Assembler) fetchRigVolume(ctx context.Context, animalID string, day dates.Day) (float64, error) {
	record, err := a.source.GetDailyRigWater(ctx, animalID, day)
	if err != nil {
		if errors.Is(err, storage.ErrRigWaterNotFound) {
			a.fallback(observability.FallbackRigDefault, animalID, day, "rig volume not tracked, defaulting to 0 mL")

			return 0, nil
		}

		return 0, fmt.Errorf("rig water for %s on %s: %w", animalID, day, err)
	}

	return record.RigVolume, nil
}

func (a *Assembler) fetchSession(ctx context.Context, animalID string, day dates.Day, row *Row) error {
	session, err := a.source.GetDailySession(ctx, animalID, day)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil
		}

		return fmt.Errorf("session for %s on %s: %w", animalID, day, err)
	}

	trials := session.NDoneTrials
	row.NDoneTrials = &trials
	row.TrialRate = session.TrialRate
	row.Rig = session.Rig
	row.Performance = session.Performance
	row.SideBias = session.SideBias

	if session.Technician != "" {
		row.Technician = session.Technician
	}

	return nil
}

// fallback records a default substitution in the metrics and, when
// verbose, in the log.
func (a *Assembler) fallback(reason, animalID string, day dates.Day, msg string) {
	observability.FallbacksTotal.WithLabelValues(reason).Inc()

	if a.verbose {
		a.logger.Info().
			Str("animal", animalID).
			Stringer("date", day).
			Str("reason", reason).
			Msg(msg)
	}
}

func unionDays(a, b []dates.Day) []dates.Day {
	seen := make(map[dates.Day]struct{}, len(a)+len(b))

	for _, d := range a {
		seen[d] = struct{}{}
	}

	for _, d := range b {
		seen[d] = struct{}{}
	}

	union := make([]dates.Day, 0, len(seen))
	for d := range seen {
		union = append(union, d)
	}

	sort.Slice(union, func(i, j int) bool { return union[i].Before(union[j]) })

	return union
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
