// Package report renders assembled summary tables for humans: a
// fixed-width text table for terminals and CSV for spreadsheets.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/jbreda/labdaily/internal/summary"
)

var columns = []string{
	"animal_id",
	"date",
	"mass",
	"n_done_trials",
	"trial_rate",
	"rig_volume",
	"pub_volume",
	"restriction_target",
	"rig",
	"technician",
	"performance",
	"side_bias",
}

// WriteText renders the table as aligned columns, one summary row per
// line. Missing values print as empty cells.
func WriteText(w io.Writer, table summary.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if err := writeLine(tw, columns); err != nil {
		return err
	}

	for _, row := range table.Rows() {
		if err := writeLine(tw, record(row)); err != nil {
			return err
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}

	return nil
}

func writeLine(w io.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if _, err := io.WriteString(w, "\t"); err != nil {
				return fmt.Errorf("write report line: %w", err)
			}
		}

		if _, err := io.WriteString(w, f); err != nil {
			return fmt.Errorf("write report line: %w", err)
		}
	}

	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write report line: %w", err)
	}

	return nil
}

// WriteCSV writes the table with a header row. Missing values are
// empty fields.
func WriteCSV(w io.Writer, table summary.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range table.Rows() {
		if err := cw.Write(record(row)); err != nil {
			return fmt.Errorf("write csv row %s %s: %w", row.AnimalID, row.Date, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

func record(row summary.Row) []string {
	return []string{
		row.AnimalID,
		row.Date.String(),
		formatFloat(row.Mass),
		formatInt(row.NDoneTrials),
		formatFloat(row.TrialRate),
		strconv.FormatFloat(row.RigVolume, 'f', -1, 64),
		formatFloat(row.PubVolume),
		formatFloat(row.RestrictionTarget),
		row.Rig,
		row.Technician,
		formatFloat(row.Performance),
		formatFloat(row.SideBias),
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}

	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}

	return strconv.Itoa(*v)
}
