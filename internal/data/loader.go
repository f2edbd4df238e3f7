package data

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"bidding-trends/internal/metrics"
	"bidding-trends/internal/store"
)

// Loader reads a Source into a store.Holder. Reloads are serialized; a
// failed reload leaves the previous dataset in place.
type Loader struct {
	source  Source
	holder  *store.Holder
	metrics *metrics.Metrics
	mu      sync.Mutex
}

func NewLoader(source Source, holder *store.Holder, m *metrics.Metrics) *Loader {
	return &Loader{source: source, holder: holder, metrics: m}
}

func (l *Loader) SourceName() string {
	if l == nil || l.source == nil {
		return ""
	}
	return l.source.Name()
}

// Reload loads the source and swaps the result in.
func (l *Loader) Reload(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	log := logrus.WithFields(logrus.Fields{"component": "loader", "source": l.source.Name()})
	records, err := l.source.Load(ctx)
	if err == nil {
		err = l.holder.Load(records)
	}
	if err != nil {
		l.metrics.ReloadFailed()
		log.WithError(err).Error("dataset reload failed")
		return err
	}

	ds := l.holder.Current()
	l.metrics.DatasetLoaded(ds.Len(), len(ds.Duplicates()), l.holder.Version())
	return nil
}
