package hexzone

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordGenerate is called after each region generation.
	// cells is the size of the compacted set.
	RecordGenerate(cells int, duration time.Duration, err error)

	// RecordFind is called after each find.
	RecordFind(needles, matches int, duration time.Duration, err error)

	// RecordOverlaps is called after each overlap detection.
	RecordOverlaps(regions, conflicts int, duration time.Duration, err error)

	// RecordCountries is called after each country map generation. files
	// counts the boundary files used and nodes the cells stored.
	RecordCountries(files, nodes int, duration time.Duration, err error)

	// RecordLookup is called after each lookup. A miss is reported with
	// an error wrapping ErrNotFound.
	RecordLookup(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordGenerate(int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordFind(int, int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordOverlaps(int, int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordCountries(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordLookup(time.Duration, error)              {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	GenerateCount      atomic.Int64
	GenerateErrors     atomic.Int64
	GenerateCells      atomic.Int64
	GenerateTotalNanos atomic.Int64
	FindCount          atomic.Int64
	FindErrors         atomic.Int64
	FindMatches        atomic.Int64
	OverlapsCount      atomic.Int64
	OverlapsErrors     atomic.Int64
	OverlapsConflicts  atomic.Int64
	CountriesCount     atomic.Int64
	CountriesErrors    atomic.Int64
	CountriesFiles     atomic.Int64
	CountriesNodes     atomic.Int64
	LookupCount        atomic.Int64
	LookupMisses       atomic.Int64
	LookupTotalNanos   atomic.Int64
}

// RecordGenerate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGenerate(cells int, duration time.Duration, err error) {
	b.GenerateCount.Add(1)
	b.GenerateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.GenerateErrors.Add(1)
		return
	}
	b.GenerateCells.Add(int64(cells))
}

// RecordFind implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFind(_, matches int, _ time.Duration, err error) {
	b.FindCount.Add(1)
	if err != nil {
		b.FindErrors.Add(1)
		return
	}
	b.FindMatches.Add(int64(matches))
}

// RecordOverlaps implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOverlaps(_, conflicts int, _ time.Duration, err error) {
	b.OverlapsCount.Add(1)
	if err != nil {
		b.OverlapsErrors.Add(1)
		return
	}
	b.OverlapsConflicts.Add(int64(conflicts))
}

// RecordCountries implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCountries(files, nodes int, _ time.Duration, err error) {
	b.CountriesCount.Add(1)
	if err != nil {
		b.CountriesErrors.Add(1)
		return
	}
	b.CountriesFiles.Add(int64(files))
	b.CountriesNodes.Add(int64(nodes))
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(duration time.Duration, err error) {
	b.LookupCount.Add(1)
	b.LookupTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LookupMisses.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		GenerateCount:     b.GenerateCount.Load(),
		GenerateErrors:    b.GenerateErrors.Load(),
		GenerateCells:     b.GenerateCells.Load(),
		GenerateAvgNanos:  avg(b.GenerateTotalNanos.Load(), b.GenerateCount.Load()),
		FindCount:         b.FindCount.Load(),
		FindErrors:        b.FindErrors.Load(),
		FindMatches:       b.FindMatches.Load(),
		OverlapsCount:     b.OverlapsCount.Load(),
		OverlapsErrors:    b.OverlapsErrors.Load(),
		OverlapsConflicts: b.OverlapsConflicts.Load(),
		CountriesCount:    b.CountriesCount.Load(),
		CountriesErrors:   b.CountriesErrors.Load(),
		CountriesFiles:    b.CountriesFiles.Load(),
		CountriesNodes:    b.CountriesNodes.Load(),
		LookupCount:       b.LookupCount.Load(),
		LookupMisses:      b.LookupMisses.Load(),
		LookupAvgNanos:    avg(b.LookupTotalNanos.Load(), b.LookupCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	GenerateCount     int64
	GenerateErrors    int64
	GenerateCells     int64
	GenerateAvgNanos  int64
	FindCount         int64
	FindErrors        int64
	FindMatches       int64
	OverlapsCount     int64
	OverlapsErrors    int64
	OverlapsConflicts int64
	CountriesCount    int64
	CountriesErrors   int64
	CountriesFiles    int64
	CountriesNodes    int64
	LookupCount       int64
	LookupMisses      int64
	LookupAvgNanos    int64
}
