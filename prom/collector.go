// Package prom exports segbench metrics to Prometheus.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/segbench"
)

const namespace = "segbench"

// Collector implements segbench.MetricsCollector on Prometheus metrics.
type Collector struct {
	initDuration  prometheus.Histogram
	initFailures  prometheus.Counter
	arenaGrows    prometheus.Counter
	arenaGrown    prometheus.Counter
	growDuration  prometheus.Histogram
	bulkAppends   *prometheus.CounterVec
	bulkRecords   prometheus.Counter
	bulkDuration  prometheus.Histogram
	documents     *prometheus.CounterVec
	documentBytes prometheus.Counter
	docDuration   *prometheus.HistogramVec
	saves         *prometheus.CounterVec
	savedBytes    prometheus.Counter
	saveDuration  prometheus.Histogram
}

var _ segbench.MetricsCollector = (*Collector)(nil)

// NewCollector registers the segbench metrics with reg.
// A nil reg creates the metrics without registering them.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)

	return &Collector{
		initDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "initialize_duration_seconds",
			Help:      "Time spent in runtime initialization.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		initFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "initialize_failures_total",
			Help:      "Failed runtime initializations.",
		}),
		arenaGrows: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "arena",
			Name:      "reallocations_total",
			Help:      "Arena buffer reallocations.",
		}),
		arenaGrown: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "arena",
			Name:      "grown_records_total",
			Help:      "Records of capacity added by reallocations.",
		}),
		growDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "arena",
			Name:      "reallocation_duration_seconds",
			Help:      "Time spent allocating and copying during a reallocation.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		bulkAppends: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "arena",
			Name:      "bulk_appends_total",
			Help:      "Bulk appends by outcome.",
		}, []string{"result"}),
		bulkRecords: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "arena",
			Name:      "bulk_appended_records_total",
			Help:      "Records written by successful bulk appends.",
		}),
		bulkDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "arena",
			Name:      "bulk_append_duration_seconds",
			Help:      "Bulk append latency.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		documents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "document",
			Name:      "requests_total",
			Help:      "Document requests by preset and outcome.",
		}, []string{"key", "result"}),
		documentBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "document",
			Name:      "bytes_total",
			Help:      "Bytes of documents produced.",
		}),
		docDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "document",
			Name:      "duration_seconds",
			Help:      "Document production latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"key"}),
		saves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "save",
			Name:      "requests_total",
			Help:      "Saves by outcome.",
		}, []string{"result"}),
		savedBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "save",
			Name:      "bytes_total",
			Help:      "Bytes saved.",
		}),
		saveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "save",
			Name:      "duration_seconds",
			Help:      "Save latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// RecordInitialize implements segbench.MetricsCollector.
func (c *Collector) RecordInitialize(duration time.Duration, err error) {
	c.initDuration.Observe(duration.Seconds())
	if err != nil {
		c.initFailures.Inc()
	}
}

// RecordArenaGrow implements segbench.MetricsCollector.
func (c *Collector) RecordArenaGrow(fromRecords, toRecords int, duration time.Duration) {
	c.arenaGrows.Inc()
	c.arenaGrown.Add(float64(toRecords - fromRecords))
	c.growDuration.Observe(duration.Seconds())
}

// RecordAppendBulk implements segbench.MetricsCollector.
func (c *Collector) RecordAppendBulk(records int, duration time.Duration, err error) {
	c.bulkAppends.WithLabelValues(result(err)).Inc()
	c.bulkDuration.Observe(duration.Seconds())
	if err == nil {
		c.bulkRecords.Add(float64(records))
	}
}

// RecordDocument implements segbench.MetricsCollector.
func (c *Collector) RecordDocument(key string, size int, duration time.Duration, err error) {
	c.documents.WithLabelValues(key, result(err)).Inc()
	c.docDuration.WithLabelValues(key).Observe(duration.Seconds())
	if err == nil {
		c.documentBytes.Add(float64(size))
	}
}

// RecordSave implements segbench.MetricsCollector.
func (c *Collector) RecordSave(size int, duration time.Duration, err error) {
	c.saves.WithLabelValues(result(err)).Inc()
	c.saveDuration.Observe(duration.Seconds())
	if err == nil {
		c.savedBytes.Add(float64(size))
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
