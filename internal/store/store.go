// Package store holds the loaded bid dataset and its per-resource views.
package store

import (
	"fmt"
	"sort"
	"time"

	"bidding-trends/internal/dates"
	"bidding-trends/internal/model"
)

// Dataset is an immutable snapshot of the bid records plus the lookups
// derived from them. It is safe for concurrent readers.
type Dataset struct {
	records []model.BidRecord

	byResource map[model.ResourceKey][]int
	byDate     map[model.Date][]int
	dateIndex  map[model.ResourceKey]dates.Index
	pairs      map[model.ResourceKey]dates.PairSequence

	duplicates []model.DuplicateRecordError
	loadedAt   time.Time
}

type slotKey struct {
	resource model.ResourceKey
	date     model.Date
	hour     int
}

// New validates records and builds a dataset. The first malformed record
// aborts the build with a *model.SchemaError; no partial dataset is returned.
//
// Duplicate (resource, date, hour) rows are kept and reported by Duplicates;
// extraction surfaces them as *model.DuplicateRecordError.
func New(records []model.BidRecord) (*Dataset, error) {
	for i, r := range records {
		if err := r.Validate(i); err != nil {
			return nil, fmt.Errorf("load bid records: %w", err)
		}
	}

	ds := &Dataset{
		records:    make([]model.BidRecord, len(records)),
		byResource: map[model.ResourceKey][]int{},
		byDate:     map[model.Date][]int{},
		dateIndex:  map[model.ResourceKey]dates.Index{},
		pairs:      map[model.ResourceKey]dates.PairSequence{},
		loadedAt:   time.Now(),
	}
	for i, r := range records {
		ds.records[i] = detach(r)
	}

	slots := map[slotKey]int{}
	var slotOrder []slotKey
	datesByResource := map[model.ResourceKey][]model.Date{}

	for i, r := range ds.records {
		key := r.Key()
		ds.byResource[key] = append(ds.byResource[key], i)
		ds.byDate[r.DeliveryDate] = append(ds.byDate[r.DeliveryDate], i)
		datesByResource[key] = append(datesByResource[key], r.DeliveryDate)

		sk := slotKey{resource: key, date: r.DeliveryDate, hour: r.HourEnding}
		if slots[sk] == 0 {
			slotOrder = append(slotOrder, sk)
		}
		slots[sk]++
	}

	for key, days := range datesByResource {
		idx := dates.NewIndex(days)
		ds.dateIndex[key] = idx
		ds.pairs[key] = dates.NewPairSequence(idx)
	}

	for _, sk := range slotOrder {
		if n := slots[sk]; n > 1 {
			ds.duplicates = append(ds.duplicates, model.DuplicateRecordError{
				Key:   sk.resource,
				Date:  sk.date,
				Hour:  sk.hour,
				Count: n,
			})
		}
	}

	return ds, nil
}

func (d *Dataset) Len() int { return len(d.records) }

func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Filter returns every record for the resource in load order. An unknown
// resource yields an empty slice.
func (d *Dataset) Filter(resourceType, resourceName string) []model.BidRecord {
	return d.collect(d.byResource[model.ResourceKey{Type: resourceType, Name: resourceName}])
}

// ByDate returns every record delivered on date, across all resources.
func (d *Dataset) ByDate(date model.Date) []model.BidRecord {
	return d.collect(d.byDate[date])
}

// DistinctDates is the ascending set of delivery dates for the resource.
func (d *Dataset) DistinctDates(resourceType, resourceName string) dates.Index {
	return d.dateIndex[model.ResourceKey{Type: resourceType, Name: resourceName}]
}

// YearPairs is the year-over-year pair sequence for the resource.
func (d *Dataset) YearPairs(resourceType, resourceName string) dates.PairSequence {
	return d.pairs[model.ResourceKey{Type: resourceType, Name: resourceName}]
}

// ResourceTypes lists the distinct resource types, sorted.
func (d *Dataset) ResourceTypes() []string {
	seen := map[string]bool{}
	out := []string{}
	for key := range d.byResource {
		if !seen[key.Type] {
			seen[key.Type] = true
			out = append(out, key.Type)
		}
	}
	sort.Strings(out)
	return out
}

// ResourceNames lists the resources of one type, sorted.
func (d *Dataset) ResourceNames(resourceType string) []string {
	out := []string{}
	for key := range d.byResource {
		if key.Type == resourceType {
			out = append(out, key.Name)
		}
	}
	sort.Strings(out)
	return out
}

// Resources lists every resource key, sorted by type then name.
func (d *Dataset) Resources() []model.ResourceKey {
	out := make([]model.ResourceKey, 0, len(d.byResource))
	for key := range d.byResource {
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Duplicates lists every key that violates the one-record-per-hour rule,
// in first-seen order.
func (d *Dataset) Duplicates() []model.DuplicateRecordError {
	out := make([]model.DuplicateRecordError, len(d.duplicates))
	copy(out, d.duplicates)
	return out
}

// collect copies the records out, tier slices included, so callers never
// share backing arrays with the snapshot.
func (d *Dataset) collect(positions []int) []model.BidRecord {
	out := make([]model.BidRecord, len(positions))
	for i, p := range positions {
		out[i] = detach(d.records[p])
	}
	return out
}

func detach(r model.BidRecord) model.BidRecord {
	r.Prices = append([]float64(nil), r.Prices...)
	r.Quantities = append([]float64(nil), r.Quantities...)
	return r
}
