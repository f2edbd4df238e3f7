// Package metrics holds the Prometheus collectors of the API server.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	datasetRecords  prometheus.Gauge
	datasetVersion  prometheus.Gauge
	duplicateKeys   prometheus.Gauge
	reloads         *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bids_http_requests_total",
				Help: "HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bids_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		datasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bids_dataset_records",
			Help: "Bid records in the current dataset",
		}),
		datasetVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bids_dataset_version",
			Help: "Number of successful dataset loads",
		}),
		duplicateKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bids_dataset_duplicate_keys",
			Help: "(resource, date, hour) keys with more than one record",
		}),
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bids_dataset_reloads_total",
				Help: "Dataset reload attempts by result",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(
		m.requestCounter,
		m.requestDuration,
		m.datasetRecords,
		m.datasetVersion,
		m.duplicateKeys,
		m.reloads,
	)
	return m
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requestCounter.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// DatasetLoaded records a successful load.
func (m *Metrics) DatasetLoaded(records, duplicates, version int) {
	if m == nil {
		return
	}
	m.datasetRecords.Set(float64(records))
	m.duplicateKeys.Set(float64(duplicates))
	m.datasetVersion.Set(float64(version))
	m.reloads.WithLabelValues("ok").Inc()
}

func (m *Metrics) ReloadFailed() {
	if m == nil {
		return
	}
	m.reloads.WithLabelValues("error").Inc()
}
