package model

import "fmt"

// SchemaError reports a malformed input record. It aborts a dataset load.
type SchemaError struct {
	Index  int    // position of the record in the load
	Field  string // column or logical field
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("record %d: %s: %s", e.Index, e.Field, e.Reason)
}

// DuplicateRecordError reports more than one record for a
// (resource, delivery date, hour ending) key.
type DuplicateRecordError struct {
	Key   ResourceKey
	Date  Date
	Hour  int
	Count int
}

func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("duplicate bid records: %d rows for %s on %s hour %d", e.Count, e.Key, e.Date, e.Hour)
}

func tierMismatch(prices, quantities int) string {
	return fmt.Sprintf("%d prices but %d quantities", prices, quantities)
}
