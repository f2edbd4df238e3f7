// Package curve pulls bid curves for one delivery hour or day out of a
// resource's records.
package curve

import (
	"bidding-trends/internal/model"
)

// Curve is one hour's submitted offer: Quantities[i] MW at Prices[i] $/MWh.
// Tiers are in submission order.
type Curve struct {
	Quantities []float64 `json:"quantities"`
	Prices     []float64 `json:"prices"`
}

// Empty reports whether the curve has no tiers.
func (c Curve) Empty() bool { return len(c.Prices) == 0 }

func emptyCurve() Curve {
	return Curve{Quantities: []float64{}, Prices: []float64{}}
}

// Extract returns the curve for (date, hour) from records, which are
// expected to belong to a single resource (see store.Dataset.Filter).
//
// No match yields an empty curve and a nil error. More than one match is a
// *model.DuplicateRecordError; Extract never picks one of them.
func Extract(records []model.BidRecord, date model.Date, hour int) (Curve, error) {
	var (
		found *model.BidRecord
		count int
	)
	for i := range records {
		r := &records[i]
		if r.HourEnding != hour || !r.DeliveryDate.Equal(date) {
			continue
		}
		if found == nil {
			found = r
		}
		count++
	}

	switch {
	case count == 0:
		return emptyCurve(), nil
	case count > 1:
		return emptyCurve(), &model.DuplicateRecordError{
			Key:   found.Key(),
			Date:  date,
			Hour:  hour,
			Count: count,
		}
	}

	out := Curve{
		Quantities: make([]float64, len(found.Quantities)),
		Prices:     make([]float64, len(found.Prices)),
	}
	copy(out.Quantities, found.Quantities)
	copy(out.Prices, found.Prices)
	return out, nil
}

// HourCurve is one cell of the 24-hour grid.
type HourCurve struct {
	Hour    int    `json:"hour_ending"`
	QSE     string `json:"qse,omitempty"`
	Present bool   `json:"present"`
	Curve
}

// Day extracts hours 1..24 of date. Missing hours come back with
// Present=false and an empty curve. The first duplicate aborts the day.
func Day(records []model.BidRecord, date model.Date) ([]HourCurve, error) {
	sameDay := make([]model.BidRecord, 0, model.HoursPerDay)
	qse := map[int]string{}
	for _, r := range records {
		if r.DeliveryDate.Equal(date) {
			sameDay = append(sameDay, r)
			if _, ok := qse[r.HourEnding]; !ok {
				qse[r.HourEnding] = r.QSE
			}
		}
	}

	out := make([]HourCurve, 0, model.HoursPerDay)
	for hour := 1; hour <= model.HoursPerDay; hour++ {
		c, err := Extract(sameDay, date, hour)
		if err != nil {
			return nil, err
		}
		out = append(out, HourCurve{
			Hour:    hour,
			QSE:     qse[hour],
			Present: hasHour(sameDay, hour),
			Curve:   c,
		})
	}
	return out, nil
}

// Agents lists the distinct QSEs that submitted for date, first seen first.
func Agents(records []model.BidRecord, date model.Date) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, r := range records {
		if !r.DeliveryDate.Equal(date) || seen[r.QSE] {
			continue
		}
		seen[r.QSE] = true
		out = append(out, r.QSE)
	}
	return out
}

// a record with zero tiers still counts as submitted
func hasHour(records []model.BidRecord, hour int) bool {
	for _, r := range records {
		if r.HourEnding == hour {
			return true
		}
	}
	return false
}
