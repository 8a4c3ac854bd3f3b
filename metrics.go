package segbench

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the prom
// package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordInitialize is called once when initialization finishes.
	RecordInitialize(duration time.Duration, err error)

	// RecordArenaGrow is called after every arena reallocation.
	RecordArenaGrow(fromRecords, toRecords int, duration time.Duration)

	// RecordAppendBulk is called after every bulk append into an arena
	// created by the Runtime.
	RecordAppendBulk(records int, duration time.Duration, err error)

	// RecordDocument is called after each document request.
	// size is the document size in bytes, 0 on error.
	RecordDocument(key string, size int, duration time.Duration, err error)

	// RecordSave is called after each save of an exported document.
	RecordSave(size int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInitialize(time.Duration, error)            {}
func (NoopMetricsCollector) RecordArenaGrow(int, int, time.Duration)          {}
func (NoopMetricsCollector) RecordAppendBulk(int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordDocument(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSave(int, time.Duration, error)             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InitializeCount   atomic.Int64
	InitializeErrors  atomic.Int64
	GrowCount         atomic.Int64
	GrowRecords       atomic.Int64
	AppendBulkCount   atomic.Int64
	AppendBulkRecords atomic.Int64
	AppendBulkErrors  atomic.Int64
	DocumentCount     atomic.Int64
	DocumentErrors    atomic.Int64
	DocumentBytes     atomic.Int64
	DocumentNanos     atomic.Int64
	SaveCount         atomic.Int64
	SaveErrors        atomic.Int64
	SaveBytes         atomic.Int64
}

// RecordInitialize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInitialize(_ time.Duration, err error) {
	b.InitializeCount.Add(1)
	if err != nil {
		b.InitializeErrors.Add(1)
	}
}

// RecordArenaGrow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordArenaGrow(fromRecords, toRecords int, _ time.Duration) {
	b.GrowCount.Add(1)
	b.GrowRecords.Add(int64(toRecords - fromRecords))
}

// RecordAppendBulk implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAppendBulk(records int, _ time.Duration, err error) {
	b.AppendBulkCount.Add(1)
	if err != nil {
		b.AppendBulkErrors.Add(1)
		return
	}
	b.AppendBulkRecords.Add(int64(records))
}

// RecordDocument implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDocument(_ string, size int, duration time.Duration, err error) {
	b.DocumentCount.Add(1)
	b.DocumentNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DocumentErrors.Add(1)
		return
	}
	b.DocumentBytes.Add(int64(size))
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(size int, _ time.Duration, err error) {
	b.SaveCount.Add(1)
	if err != nil {
		b.SaveErrors.Add(1)
		return
	}
	b.SaveBytes.Add(int64(size))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InitializeCount:   b.InitializeCount.Load(),
		InitializeErrors:  b.InitializeErrors.Load(),
		GrowCount:         b.GrowCount.Load(),
		GrowRecords:       b.GrowRecords.Load(),
		AppendBulkCount:   b.AppendBulkCount.Load(),
		AppendBulkRecords: b.AppendBulkRecords.Load(),
		AppendBulkErrors:  b.AppendBulkErrors.Load(),
		DocumentCount:     b.DocumentCount.Load(),
		DocumentErrors:    b.DocumentErrors.Load(),
		DocumentBytes:     b.DocumentBytes.Load(),
		DocumentAvgNanos:  b.getAvgDocumentNanos(),
		SaveCount:         b.SaveCount.Load(),
		SaveErrors:        b.SaveErrors.Load(),
		SaveBytes:         b.SaveBytes.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgDocumentNanos() int64 {
	count := b.DocumentCount.Load()
	if count == 0 {
		return 0
	}
	return b.DocumentNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InitializeCount   int64
	InitializeErrors  int64
	GrowCount         int64
	GrowRecords       int64
	AppendBulkCount   int64
	AppendBulkRecords int64
	AppendBulkErrors  int64
	DocumentCount     int64
	DocumentErrors    int64
	DocumentBytes     int64
	DocumentAvgNanos  int64
	SaveCount         int64
	SaveErrors        int64
	SaveBytes         int64
}

// arenaObserver forwards arena events to a MetricsCollector.
type arenaObserver struct {
	mc MetricsCollector
}

func (o arenaObserver) OnGrow(fromRecords, toRecords int, elapsed time.Duration) {
	o.mc.RecordArenaGrow(fromRecords, toRecords, elapsed)
}

func (o arenaObserver) OnAppendBulk(records int, elapsed time.Duration, err error) {
	o.mc.RecordAppendBulk(records, elapsed, err)
}
