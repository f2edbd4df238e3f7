package model

import "strings"

// MaxTiers is the number of price/MW pairs a QSE can submit per hour.
const MaxTiers = 10

// HoursPerDay is the number of hour-ending intervals in a delivery day.
// DST days are published as 24 rows as well (with a repeated-hour flag we ignore).
const HoursPerDay = 24

// ResourceKey identifies a generating unit. Resource names are only unique
// within a resource type in the disclosures, so the pair is the key.
type ResourceKey struct {
	Type string `json:"resource_type"`
	Name string `json:"resource_name"`
}

func (k ResourceKey) String() string {
	return k.Type + "/" + k.Name
}

// BidRecord is one row of the bid disclosure: the offer curve a QSE submitted
// for one resource and one delivery hour.
//
// Prices[i] pairs with Quantities[i]. Nothing here assumes the curve is
// monotonic; upstream data is not always economically ordered.
type BidRecord struct {
	DeliveryDate Date   `json:"delivery_date"`
	HourEnding   int    `json:"hour_ending"`
	ResourceName string `json:"resource_name"`
	ResourceType string `json:"resource_type"`
	QSE          string `json:"qse"`

	// Prices in $/MWh.
	Prices []float64 `json:"prices"`
	// Quantities in MW.
	Quantities []float64 `json:"quantities"`
}

func (r BidRecord) Key() ResourceKey {
	return ResourceKey{Type: r.ResourceType, Name: r.ResourceName}
}

func (r BidRecord) TierCount() int {
	return len(r.Prices)
}

// Validate checks the schema-level invariants of a single record.
// index is the record's position in the load, used only for error reporting.
func (r BidRecord) Validate(index int) error {
	switch {
	case r.DeliveryDate.IsZero():
		return &SchemaError{Index: index, Field: "Delivery Date", Reason: "missing"}
	case r.HourEnding < 1 || r.HourEnding > HoursPerDay:
		return &SchemaError{Index: index, Field: "Hour Ending", Reason: "must be in [1, 24]"}
	case strings.TrimSpace(r.ResourceName) == "":
		return &SchemaError{Index: index, Field: "Resource Name", Reason: "missing"}
	case strings.TrimSpace(r.ResourceType) == "":
		return &SchemaError{Index: index, Field: "Resource Type", Reason: "missing"}
	case strings.TrimSpace(r.QSE) == "":
		return &SchemaError{Index: index, Field: "QSE", Reason: "missing"}
	case len(r.Prices) != len(r.Quantities):
		return &SchemaError{
			Index:  index,
			Field:  "tiers",
			Reason: tierMismatch(len(r.Prices), len(r.Quantities)),
		}
	case len(r.Prices) > MaxTiers:
		return &SchemaError{Index: index, Field: "tiers", Reason: "more than 10 price/MW pairs"}
	}
	return nil
}
