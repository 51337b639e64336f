// Package summary assembles per-animal, per-day training summaries from
// the lab record sources, filling gaps with the lab's default policies,
// and lazily refreshes a persisted summary cache.
package summary

import (
	"sort"
	"time"

	"github.com/jbreda/labdaily/internal/platform/dates"
)

// Row is one denormalized daily summary for an (animal, date) pair.
// Pointer fields are null when the backing source had no entry and no
// fallback policy applies.
type Row struct {
	AnimalID          string
	Date              dates.Day
	Mass              *float64
	NDoneTrials       *int
	TrialRate         *float64
	RigVolume         float64
	PubVolume         *float64
	RestrictionTarget *float64
	Rig               string
	Technician        string
	Performance       *float64
	SideBias          *float64
	FetchedAt         time.Time
}

// Key identifies a row within a table.
type Key struct {
	AnimalID string
	Date     dates.Day
}

func (r Row) Key() Key {
	return Key{AnimalID: r.AnimalID, Date: r.Date}
}

// Table is a collection of summary rows with at most one row per
// (animal_id, date) key.
type Table struct {
	rows []Row
}

// NewTable builds a table from rows, de-duplicating on key with later
// rows overwriting earlier ones.
func NewTable(rows ...Row) Table {
	var t Table
	t.Upsert(rows...)

	return t
}

// Rows returns the rows sorted by (animal_id, date).
func (t *Table) Rows() []Row {
	t.sortRows()

	out := make([]Row, len(t.rows))
	copy(out, t.rows)

	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Upsert inserts rows, replacing any existing row with the same key.
func (t *Table) Upsert(rows ...Row) {
	for _, row := range rows {
		if i, ok := t.index(row.Key()); ok {
			t.rows[i] = row
			continue
		}

		t.rows = append(t.rows, row)
	}
}

// Merge folds a freshly fetched table into this one. Fresh rows win on
// key collisions; no other reconciliation is performed.
func (t *Table) Merge(fresh Table) {
	t.Upsert(fresh.rows...)
}

// Get returns the row for a key, if present.
func (t *Table) Get(key Key) (Row, bool) {
	if i, ok := t.index(key); ok {
		return t.rows[i], true
	}

	return Row{}, false
}

// Dates returns the set of dates the table covers for one animal.
func (t *Table) Dates(animalID string) map[dates.Day]struct{} {
	covered := make(map[dates.Day]struct{})

	for _, row := range t.rows {
		if row.AnimalID == animalID {
			covered[row.Date] = struct{}{}
		}
	}

	return covered
}

// AnimalIDs returns the distinct animal identifiers present, sorted.
func (t *Table) AnimalIDs() []string {
	seen := make(map[string]struct{})

	for _, row := range t.rows {
		seen[row.AnimalID] = struct{}{}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Filter returns the sub-table for the given animals and range.
func (t *Table) Filter(animalIDs []string, r dates.Range) Table {
	wanted := make(map[string]struct{}, len(animalIDs))
	for _, id := range animalIDs {
		wanted[id] = struct{}{}
	}

	var out Table

	for _, row := range t.rows {
		if _, ok := wanted[row.AnimalID]; !ok {
			continue
		}

		if !r.Contains(row.Date) {
			continue
		}

		out.rows = append(out.rows, row)
	}

	return out
}

func (t *Table) index(key Key) (int, bool) {
	for i, row := range t.rows {
		if row.Key() == key {
			return i, true
		}
	}

	return 0, false
}

func (t *Table) sortRows() {
	sort.Slice(t.rows, func(i, j int) bool {
		if t.rows[i].AnimalID != t.rows[j].AnimalID {
			return t.rows[i].AnimalID < t.rows[j].AnimalID
		}

		return t.rows[i].Date.Compare(t.rows[j].Date) < 0
	})
}
