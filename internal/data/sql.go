package data

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"bidding-trends/internal/model"
)

// DefaultBidTable is read when SQLSource.Table is empty.
const DefaultBidTable = "bids"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLSource reads bid rows from a table with columns
// delivery_date, hour_ending, resource_name, resource_type, qse,
// mw_1..mw_10 and price_1..price_10 (NULL for unused tiers; a tier with
// only one of the pair NULL is rejected).
//
// Driver is "sqlite" (modernc) or "postgres" (lib/pq).
type SQLSource struct {
	Driver string
	DSN    string
	Table  string
}

func (s SQLSource) Name() string {
	return s.Driver + ":" + s.table()
}

func (s SQLSource) table() string {
	if s.Table == "" {
		return DefaultBidTable
	}
	return s.Table
}

func (s SQLSource) query() (string, error) {
	t := s.table()
	if !tableName.MatchString(t) {
		return "", fmt.Errorf("invalid table name %q", t)
	}
	cols := []string{"delivery_date", "hour_ending", "resource_name", "resource_type", "qse"}
	for i := 1; i <= model.MaxTiers; i++ {
		cols = append(cols, fmt.Sprintf("mw_%d", i))
	}
	for i := 1; i <= model.MaxTiers; i++ {
		cols = append(cols, fmt.Sprintf("price_%d", i))
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY delivery_date, resource_type, resource_name, hour_ending",
		strings.Join(cols, ", "), t), nil
}

func (s SQLSource) Load(ctx context.Context) ([]model.BidRecord, error) {
	query, err := s.query()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(s.Driver, s.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Driver, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", s.Driver, err)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table(), err)
	}
	defer rows.Close()

	out := []model.BidRecord{}
	line := 0
	for rows.Next() {
		line++
		var (
			date           any
			hour           int
			name, typ, qse string
			mw, price      [model.MaxTiers]sql.NullFloat64
		)
		dest := []any{&date, &hour, &name, &typ, &qse}
		for i := range mw {
			dest = append(dest, &mw[i])
		}
		for i := range price {
			dest = append(dest, &price[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s row %d: %w", s.table(), line, err)
		}

		d, err := scanDate(date)
		if err != nil {
			return nil, &ParseError{Source: s.Name(), Line: line, Column: "delivery_date", Err: err}
		}
		rec := model.BidRecord{
			DeliveryDate: d,
			HourEnding:   hour,
			ResourceName: name,
			ResourceType: typ,
			QSE:          qse,
			Quantities:   []float64{},
			Prices:       []float64{},
		}
		for i := 0; i < model.MaxTiers; i++ {
			switch {
			case !mw[i].Valid && !price[i].Valid:
				continue
			case !mw[i].Valid:
				return nil, &ParseError{Source: s.Name(), Line: line, Column: fmt.Sprintf("mw_%d", i+1), Err: errHalfTier}
			case !price[i].Valid:
				return nil, &ParseError{Source: s.Name(), Line: line, Column: fmt.Sprintf("price_%d", i+1), Err: errHalfTier}
			}
			rec.Quantities = append(rec.Quantities, mw[i].Float64)
			rec.Prices = append(rec.Prices, price[i].Float64)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.table(), err)
	}
	return out, nil
}

// scanDate accepts what the drivers hand back for a DATE or TEXT column.
func scanDate(v any) (model.Date, error) {
	switch t := v.(type) {
	case time.Time:
		return model.DateOf(t), nil
	case string:
		return model.ParseDate(t)
	case []byte:
		return model.ParseDate(string(t))
	case nil:
		return model.Date{}, fmt.Errorf("null date")
	}
	return model.Date{}, fmt.Errorf("unsupported date value %T", v)
}
