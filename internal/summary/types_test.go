package summary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableUpsert_ReplacesOnKey(t *testing.T) {
	d := day(t, "2023-05-10")

	var table Table
	table.Upsert(Row{AnimalID: "R610", Date: d, Mass: floatPtr(300)})
	table.Upsert(Row{AnimalID: "R610", Date: d, Mass: floatPtr(305)})

	require.Equal(t, 1, table.Len())

	row, ok := table.Get(Key{AnimalID: "R610", Date: d})
	require.True(t, ok)
	require.Equal(t, 305.0, *row.Mass)
}

func TestTableMerge_FreshWins(t *testing.T) {
	d := day(t, "2023-05-10")

	cached := NewTable(
		Row{AnimalID: "R610", Date: d, Mass: floatPtr(300)},
		Row{AnimalID: "R610", Date: day(t, "2023-05-11"), Mass: floatPtr(301)},
	)

	fresh := NewTable(Row{AnimalID: "R610", Date: d, Mass: floatPtr(299)})

	cached.Merge(fresh)

	require.Equal(t, 2, cached.Len())

	row, _ := cached.Get(Key{AnimalID: "R610", Date: d})
	require.Equal(t, 299.0, *row.Mass)
}

func TestTableRows_Sorted(t *testing.T) {
	table := NewTable(
		Row{AnimalID: "R611", Date: day(t, "2023-05-10")},
		Row{AnimalID: "R610", Date: day(t, "2023-05-11")},
		Row{AnimalID: "R610", Date: day(t, "2023-05-09")},
	)

	rows := table.Rows()
	require.Equal(t, "R610", rows[0].AnimalID)
	require.Equal(t, "2023-05-09", rows[0].Date.String())
	require.Equal(t, "R610", rows[1].AnimalID)
	require.Equal(t, "R611", rows[2].AnimalID)
}

func TestTableFilter(t *testing.T) {
	table := NewTable(
		Row{AnimalID: "R610", Date: day(t, "2023-05-09")},
		Row{AnimalID: "R610", Date: day(t, "2023-06-01")},
		Row{AnimalID: "R611", Date: day(t, "2023-05-09")},
	)

	got := table.Filter([]string{"R610"}, testRange(t, "2023-05-01", "2023-05-31"))
	require.Equal(t, 1, got.Len())
	require.Equal(t, "R610", got.Rows()[0].AnimalID)
	require.Equal(t, "2023-05-09", got.Rows()[0].Date.String())
}

func TestTableDates(t *testing.T) {
	table := NewTable(
		Row{AnimalID: "R610", Date: day(t, "2023-05-09")},
		Row{AnimalID: "R611", Date: day(t, "2023-05-10")},
	)

	covered := table.Dates("R610")
	require.Len(t, covered, 1)

	_, ok := covered[day(t, "2023-05-09")]
	require.True(t, ok)
}
