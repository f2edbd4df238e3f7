// Package dates holds the per-resource date index and the navigation and
// year-over-year alignment built on top of it.
package dates

import (
	"sort"

	"bidding-trends/internal/model"
)

// Index is the ascending, duplicate-free set of delivery dates for one
// resource. The zero value is an empty index. An Index is immutable once built.
type Index struct {
	dates []model.Date
	pos   map[model.Date]int
}

// NewIndex sorts and de-duplicates in. The input slice is not modified.
func NewIndex(in []model.Date) Index {
	if len(in) == 0 {
		return Index{}
	}
	sorted := make([]model.Date, len(in))
	copy(sorted, in)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	out := sorted[:0]
	for i, d := range sorted {
		if i > 0 && d.Equal(out[len(out)-1]) {
			continue
		}
		out = append(out, d)
	}

	pos := make(map[model.Date]int, len(out))
	for i, d := range out {
		pos[d] = i
	}
	return Index{dates: out, pos: pos}
}

func (x Index) Len() int { return len(x.dates) }

// Dates returns a copy of the ordered dates.
func (x Index) Dates() []model.Date {
	out := make([]model.Date, len(x.dates))
	copy(out, x.dates)
	return out
}

func (x Index) At(i int) model.Date { return x.dates[i] }

func (x Index) Contains(d model.Date) bool {
	_, ok := x.pos[d]
	return ok
}

// Position returns the ordinal of d in the index.
func (x Index) Position(d model.Date) (int, bool) {
	i, ok := x.pos[d]
	return i, ok
}

func (x Index) First() (model.Date, bool) {
	if len(x.dates) == 0 {
		return model.Date{}, false
	}
	return x.dates[0], true
}

func (x Index) Last() (model.Date, bool) {
	if len(x.dates) == 0 {
		return model.Date{}, false
	}
	return x.dates[len(x.dates)-1], true
}
