package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"bidding-trends/internal/model"
)

// Column names of the 60-day SCED disclosure.
const (
	ColDeliveryDate = "Delivery Date"
	ColHourEnding   = "Hour Ending"
	ColResourceName = "Resource Name"
	ColResourceType = "Resource Type"
	ColQSE          = "QSE"

	colMWPrefix    = "QSE submitted Curve-MW"
	colPricePrefix = "QSE submitted Curve-Price"
)

// MWColumn returns the header of tier i's quantity (1-based).
func MWColumn(i int) string { return colMWPrefix + strconv.Itoa(i) }

// PriceColumn returns the header of tier i's price (1-based).
func PriceColumn(i int) string { return colPricePrefix + strconv.Itoa(i) }

// CSVOptions tunes ReadCSV. The zero value reads the disclosure format.
type CSVOptions struct {
	// DateLayouts overrides model.DateLayouts.
	DateLayouts []string
	// Comma is the field separator (default ',').
	Comma rune
}

// ParseError reports a cell that could not be read.
type ParseError struct {
	Source string
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: column %q: %v", e.Source, e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	errMissingColumn = errors.New("missing required column")
	errHalfTier      = errors.New("tier has only one of MW and price")
)

type columns struct {
	date, hour, name, typ, qse int
	mw, price                  [model.MaxTiers]int
}

func mapHeader(header []string) (columns, error) {
	pos := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	var c columns
	for _, req := range []struct {
		name string
		dst  *int
	}{
		{ColDeliveryDate, &c.date},
		{ColHourEnding, &c.hour},
		{ColResourceName, &c.name},
		{ColResourceType, &c.typ},
		{ColQSE, &c.qse},
	} {
		i, ok := pos[req.name]
		if !ok {
			return c, fmt.Errorf("%w %q", errMissingColumn, req.name)
		}
		*req.dst = i
	}

	// tier columns are optional; a file may carry fewer than ten
	for t := 0; t < model.MaxTiers; t++ {
		c.mw[t], c.price[t] = -1, -1
		if i, ok := pos[MWColumn(t+1)]; ok {
			c.mw[t] = i
		}
		if i, ok := pos[PriceColumn(t+1)]; ok {
			c.price[t] = i
		}
	}
	return c, nil
}

// ReadCSV parses disclosure rows from r. source names the input in errors.
//
// Blank tiers are skipped. A tier with only one of its two cells filled is a
// ParseError at that cell, so tier i of Prices always pairs with tier i of
// Quantities.
func ReadCSV(r io.Reader, source string, opts CSVOptions) ([]model.BidRecord, error) {
	layouts := opts.DateLayouts
	if len(layouts) == 0 {
		layouts = model.DateLayouts
	}

	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return []model.BidRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", source, err)
	}
	cols, err := mapHeader(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	out := []model.BidRecord{}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		if blank(row) {
			continue
		}

		cell := func(i int) string {
			if i < 0 || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		fail := func(col string, err error) error {
			return &ParseError{Source: source, Line: line, Column: col, Err: err}
		}

		date, err := model.ParseDateLayouts(cell(cols.date), layouts)
		if err != nil {
			return nil, fail(ColDeliveryDate, err)
		}
		hour, err := parseHour(cell(cols.hour))
		if err != nil {
			return nil, fail(ColHourEnding, err)
		}

		rec := model.BidRecord{
			DeliveryDate: date,
			HourEnding:   hour,
			ResourceName: cell(cols.name),
			ResourceType: cell(cols.typ),
			QSE:          cell(cols.qse),
			Prices:       []float64{},
			Quantities:   []float64{},
		}
		for t := 0; t < model.MaxTiers; t++ {
			mw, price := cell(cols.mw[t]), cell(cols.price[t])
			switch {
			case mw == "" && price == "":
				continue
			case mw == "":
				return nil, fail(MWColumn(t+1), errHalfTier)
			case price == "":
				return nil, fail(PriceColumn(t+1), errHalfTier)
			}
			q, err := parseNumber(mw)
			if err != nil {
				return nil, fail(MWColumn(t+1), err)
			}
			p, err := parseNumber(price)
			if err != nil {
				return nil, fail(PriceColumn(t+1), err)
			}
			rec.Quantities = append(rec.Quantities, q)
			rec.Prices = append(rec.Prices, p)
		}
		out = append(out, rec)
	}
	return out, nil
}

// parseNumber reads a cell through decimal so values like "1,234.5" or
// "-250.00" parse without float formatting surprises.
func parseNumber(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// parseHour accepts "7", "07" and "07:00".
func parseHour(s string) (int, error) {
	s = strings.TrimSuffix(s, ":00")
	h, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid hour %q", s)
	}
	return h, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// WriteCSV writes records in the disclosure layout ReadCSV accepts.
func WriteCSV(w io.Writer, records []model.BidRecord) error {
	cw := csv.NewWriter(w)
	header := []string{ColDeliveryDate, ColHourEnding, ColResourceName, ColResourceType, ColQSE}
	for i := 1; i <= model.MaxTiers; i++ {
		header = append(header, MWColumn(i), PriceColumn(i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.DeliveryDate.Time(nil).Format("01/02/2006"),
			strconv.Itoa(r.HourEnding),
			r.ResourceName,
			r.ResourceType,
			r.QSE,
		}
		for i := 0; i < model.MaxTiers; i++ {
			row = append(row, numberCell(r.Quantities, i), numberCell(r.Prices, i))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func numberCell(values []float64, i int) string {
	if i >= len(values) {
		return ""
	}
	return decimal.NewFromFloat(values[i]).String()
}
