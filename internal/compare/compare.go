// Package compare assembles the single-day and year-over-year views from a
// dataset snapshot.
package compare

import (
	"fmt"

	"bidding-trends/internal/curve"
	"bidding-trends/internal/dates"
	"bidding-trends/internal/model"
	"bidding-trends/internal/store"
)

// DayView is the 24-hour grid of one resource on one delivery date.
type DayView struct {
	ResourceType string            `json:"resource_type"`
	ResourceName string            `json:"resource_name"`
	Date         model.Date        `json:"date"`
	Agents       []string          `json:"agents"`
	Hours        []curve.HourCurve `json:"hours"`
}

// Key returns the resource the view belongs to.
func (v DayView) Key() model.ResourceKey {
	return model.ResourceKey{Type: v.ResourceType, Name: v.ResourceName}
}

// Submitted counts the hours with a record.
func (v DayView) Submitted() int {
	n := 0
	for _, h := range v.Hours {
		if h.Present {
			n++
		}
	}
	return n
}

// BuildDay extracts the day grid. A date with no records yields 24 empty
// hours, not an error.
func BuildDay(ds *store.Dataset, resourceType, resourceName string, date model.Date) (DayView, error) {
	records := ds.Filter(resourceType, resourceName)
	hours, err := curve.Day(records, date)
	if err != nil {
		return DayView{}, fmt.Errorf("build day %s: %w", date, err)
	}
	return DayView{
		ResourceType: resourceType,
		ResourceName: resourceName,
		Date:         date,
		Agents:       curve.Agents(records, date),
		Hours:        hours,
	}, nil
}

// YearOverYearView puts a date's grid next to the grid of the same day
// one year earlier.
type YearOverYearView struct {
	Pair      model.AlignedPair `json:"pair"`
	Current   DayView           `json:"current"`
	PriorYear DayView           `json:"prior_year"`
}

// BuildYearOverYear builds both grids for date. ok is false when date has
// no counterpart one year back in the resource's dates.
func BuildYearOverYear(ds *store.Dataset, resourceType, resourceName string, date model.Date) (YearOverYearView, bool, error) {
	pair, ok := ds.YearPairs(resourceType, resourceName).Lookup(date)
	if !ok {
		return YearOverYearView{}, false, nil
	}

	current, err := BuildDay(ds, resourceType, resourceName, pair.Date)
	if err != nil {
		return YearOverYearView{}, true, err
	}
	prior, err := BuildDay(ds, resourceType, resourceName, pair.PriorYear)
	if err != nil {
		return YearOverYearView{}, true, err
	}
	return YearOverYearView{Pair: pair, Current: current, PriorYear: prior}, true, nil
}

// Mode selects which date sequence navigation walks.
type Mode string

const (
	ModeAll          Mode = "all"
	ModeYearOverYear Mode = "year_over_year"
)

// ParseMode accepts "all" (also the empty string) and "year_over_year".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAll:
		return ModeAll, nil
	case ModeYearOverYear, "yoy":
		return ModeYearOverYear, nil
	}
	return "", fmt.Errorf("invalid mode %q (expected all or year_over_year)", s)
}

// Dates returns the navigable dates for mode: every date of the resource,
// or only the forward dates of its year-over-year pairs.
func Dates(ds *store.Dataset, resourceType, resourceName string, mode Mode) dates.Index {
	if mode == ModeYearOverYear {
		return ds.YearPairs(resourceType, resourceName).Forward()
	}
	return ds.DistinctDates(resourceType, resourceName)
}

// Step moves one date in dir within the mode's sequence.
func Step(ds *store.Dataset, resourceType, resourceName string, current model.Date, dir model.Direction, mode Mode) model.Date {
	return dates.Adjacent(Dates(ds, resourceType, resourceName, mode), current, dir)
}
