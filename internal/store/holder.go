package store

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"bidding-trends/internal/model"
)

// Holder owns the current dataset and swaps it on reload.
//
// Readers call Current once per query and keep using that snapshot, so a
// reload that lands mid-request is never half visible.
type Holder struct {
	mu      sync.RWMutex
	current *Dataset
	version int
}

func NewHolder() *Holder {
	return &Holder{}
}

// Load builds a dataset from records and swaps it in. On error the
// previous dataset stays current.
func (h *Holder) Load(records []model.BidRecord) error {
	start := time.Now()
	ds, err := New(records)
	if err != nil {
		return err
	}
	h.Swap(ds)

	log := logrus.WithFields(logrus.Fields{
		"component": "store",
		"records":   ds.Len(),
		"resources": len(ds.Resources()),
		"version":   h.Version(),
		"duration":  time.Since(start),
	})
	if dups := ds.Duplicates(); len(dups) > 0 {
		log.WithField("duplicate_keys", len(dups)).Warn("dataset loaded with duplicate (resource, date, hour) rows")
	} else {
		log.Info("dataset loaded")
	}
	return nil
}

// Swap installs ds as the current dataset.
func (h *Holder) Swap(ds *Dataset) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = ds
	h.version++
}

// Current returns the loaded dataset, or nil before the first load.
func (h *Holder) Current() *Dataset {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.current
}

// Version counts successful swaps.
func (h *Holder) Version() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.version
}
