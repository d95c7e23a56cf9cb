package engine

import (
	"sync"
	"time"

	"device-sync/feature/devicesync/models"
)

// MetricsRecorder accumulates per-phase latency and throughput-cost for one
// run. The two fetch phases record concurrently, so access is guarded.
type MetricsRecorder struct {
	mu      sync.Mutex
	started time.Time
	now     func() time.Time

	timings models.PhaseTimings
	costs   models.CostBreakdown
}

// NewMetricsRecorder starts a recorder at the current instant.
func NewMetricsRecorder(now func() time.Time) *MetricsRecorder {
	if now == nil {
		now = time.Now
	}
	return &MetricsRecorder{started: now(), now: now}
}

// Phase returns the current instant, to be passed back to one of the record
// methods when the phase ends.
func (m *MetricsRecorder) Phase() time.Time {
	return m.now()
}

func (m *MetricsRecorder) elapsed(since time.Time) int64 {
	return m.now().Sub(since).Milliseconds()
}

// FetchProtection records the protection fetch phase.
func (m *MetricsRecorder) FetchProtection(since time.Time, cost models.Cost) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings.FetchProtectionMs = m.elapsed(since)
	m.costs.FetchProtection = cost
}

// FetchMdm records the MDM fetch phase.
func (m *MetricsRecorder) FetchMdm(since time.Time, cost models.Cost) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings.FetchMdmMs = m.elapsed(since)
	m.costs.FetchMdm = cost
}

// Matching records the in-memory classification phase.
func (m *MetricsRecorder) Matching(since time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings.MatchingMs = m.elapsed(since)
}

// Clear records the store-clearing phase.
func (m *MetricsRecorder) Clear(since time.Time, cost models.Cost) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings.ClearMs = m.elapsed(since)
	m.costs.Clear = cost
}

// Upsert records the persistence phase.
func (m *MetricsRecorder) Upsert(since time.Time, cost models.Cost) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings.UpsertMs = m.elapsed(since)
	m.costs.Upsert = cost
}

// Performance returns the run's latency figures up to the current instant.
func (m *MetricsRecorder) Performance() models.Performance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.Performance{
		TotalExecutionTimeMs: m.elapsed(m.started),
		Phases:               m.timings,
	}
}

// Usage returns the run's accumulated cost figures.
func (m *MetricsRecorder) Usage() models.ResourceUsage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.ResourceUsage{
		TotalCost: m.costs.FetchProtection + m.costs.FetchMdm + m.costs.Clear + m.costs.Upsert,
		Breakdown: m.costs,
	}
}

// Percentages derives the classification shares from run statistics. A run
// that classified nothing reports zero across the board.
func Percentages(stats models.Statistics) models.Percentages {
	if stats.TotalProcessed == 0 {
		return models.Percentages{}
	}
	total := float64(stats.TotalProcessed)
	return models.Percentages{
		Matched:        float64(stats.Matched) / total * 100,
		OnlyProtection: float64(stats.OnlyProtection) / total * 100,
		OnlyMdm:        float64(stats.OnlyMdm) / total * 100,
	}
}
