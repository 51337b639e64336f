package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jbreda/labdaily/internal/platform/dates"
	"github.com/jbreda/labdaily/internal/summary"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func sampleTable(t *testing.T) summary.Table {
	t.Helper()

	d, err := dates.ParseDay("2023-05-10")
	require.NoError(t, err)

	return summary.NewTable(
		summary.Row{
			AnimalID:          "R610",
			Date:              d,
			Mass:              floatPtr(305.5),
			NDoneTrials:       intPtr(250),
			TrialRate:         floatPtr(110.2),
			RigVolume:         3.1,
			PubVolume:         floatPtr(6),
			RestrictionTarget: floatPtr(9.17),
			Rig:               "Rig07",
			Technician:        "jb",
			FetchedAt:         time.Now(),
		},
		summary.Row{
			AnimalID:  "R611",
			Date:      d,
			FetchedAt: time.Now(),
		},
	)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteText(&buf, sampleTable(t)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3, "header plus one line per row")
	require.Contains(t, lines[0], "animal_id")
	require.Contains(t, lines[0], "restriction_target")
	require.Contains(t, lines[1], "R610")
	require.Contains(t, lines[1], "2023-05-10")
	require.Contains(t, lines[1], "305.5")
	require.Contains(t, lines[2], "R611")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteCSV(&buf, sampleTable(t)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "animal_id", records[0][0])
	require.Len(t, records[1], len(records[0]))

	require.Equal(t, "R610", records[1][0])
	require.Equal(t, "2023-05-10", records[1][1])
	require.Equal(t, "305.5", records[1][2])
	require.Equal(t, "250", records[1][3])
	require.Equal(t, "9.17", records[1][7])

	// nullable fields come out as empty strings
	require.Equal(t, "", records[2][2])
	require.Equal(t, "", records[2][3])
}
