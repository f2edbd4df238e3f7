package curve

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"bidding-trends/internal/model"
)

// ExportRow is one hour of one day, flattened for CSV.
type ExportRow struct {
	Resource model.ResourceKey
	Date     model.Date
	HourCurve
}

// ExportRows flattens a day grid.
func ExportRows(key model.ResourceKey, date model.Date, hours []HourCurve) []ExportRow {
	out := make([]ExportRow, 0, len(hours))
	for _, h := range hours {
		out = append(out, ExportRow{Resource: key, Date: date, HourCurve: h})
	}
	return out
}

func WriteDayCSV(path string, rows []ExportRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeAndClose(f, rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeAndClose closes out even when writing fails; a close error is only
// reported when the write itself succeeded.
func writeAndClose(out io.WriteCloser, rows []ExportRow) error {
	werr := WriteCSV(out, rows)
	cerr := out.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

// WriteCSV writes rows with the tier columns padded out to model.MaxTiers.
// Hours that were never submitted are written with present=false and blank tiers.
func WriteCSV(out io.Writer, rows []ExportRow) error {
	w := csv.NewWriter(out)

	header := []string{
		"resource_type",
		"resource_name",
		"delivery_date",
		"hour_ending",
		"qse",
		"present",
		"tiers",
	}
	for i := 1; i <= model.MaxTiers; i++ {
		header = append(header, "mw_"+strconv.Itoa(i))
	}
	for i := 1; i <= model.MaxTiers; i++ {
		header = append(header, "price_"+strconv.Itoa(i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		row := []string{
			r.Resource.Type,
			r.Resource.Name,
			r.Date.String(),
			strconv.Itoa(r.Hour),
			r.QSE,
			strconv.FormatBool(r.Present),
			strconv.Itoa(len(r.Prices)),
		}
		row = append(row, tierCells(r.Quantities)...)
		row = append(row, tierCells(r.Prices)...)
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func tierCells(values []float64) []string {
	cells := make([]string, model.MaxTiers)
	for i, v := range values {
		if i >= model.MaxTiers {
			break
		}
		cells[i] = fmtFloat(v)
	}
	return cells
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
