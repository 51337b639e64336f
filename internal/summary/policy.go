package summary

import "github.com/jbreda/labdaily/internal/storage"

// Policy holds the default-substitution rules applied when a record
// source has no entry for a day. The species table is explicit
// configuration rather than a hidden branch so it can be overridden
// per deployment and asserted in tests.
type Policy struct {
	// SpeciesPercentTarget maps a species class to its default water
	// restriction percentage, as a fraction of body weight.
	SpeciesPercentTarget map[string]float64

	// FallbackPercentTarget applies when the species is absent from the
	// table and the animal has no registered percentage.
	FallbackPercentTarget float64

	// MassLookbackDays is how many calendar days to look back for a
	// missing weighing. The lab weighs daily, so this is exactly one;
	// deeper gaps leave the mass null rather than guessing.
	MassLookbackDays int
}

// DefaultPolicy returns the lab's standing restriction defaults:
// mice 4% of body weight, rats 3%.
func DefaultPolicy() Policy {
	return Policy{
		SpeciesPercentTarget: map[string]float64{
			storage.SpeciesMouse: 0.04,
			storage.SpeciesRat:   0.03,
		},
		FallbackPercentTarget: 0.04,
		MassLookbackDays:      1,
	}
}

// percentForSpecies resolves the default percentage for a species,
// reporting whether the species was configured.
func (p Policy) percentForSpecies(species string) (float64, bool) {
	if pct, ok := p.SpeciesPercentTarget[species]; ok {
		return pct, true
	}

	return p.FallbackPercentTarget, false
}
