package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects per-operation call counters for the parse engine.
// Recording takes no lock once an operation has been seen.
type Metrics struct {
	// Counters
	callTotal  atomic.Int64
	callFailed atomic.Int64

	opMetrics sync.Map // op -> *OpMetrics
}

// OpMetrics holds the counters of one operation.
type OpMetrics struct {
	callCount     atomic.Int64
	errorCount    atomic.Int64
	totalDuration atomic.Int64 // microseconds
	maxDuration   atomic.Int64 // microseconds
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Global metrics instance.
var globalMetrics = NewMetrics()

// GlobalMetrics returns the global metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// Record records one call of op with its outcome and duration.
func (m *Metrics) Record(op string, duration time.Duration, err error) {
	om := m.getOpMetrics(op)

	m.callTotal.Add(1)
	om.callCount.Add(1)
	if err != nil {
		m.callFailed.Add(1)
		om.errorCount.Add(1)
	}

	us := duration.Microseconds()
	om.totalDuration.Add(us)
	for {
		cur := om.maxDuration.Load()
		if us <= cur || om.maxDuration.CompareAndSwap(cur, us) {
			break
		}
	}
}

// GetCallTotal returns the total number of calls.
func (m *Metrics) GetCallTotal() int64 {
	return m.callTotal.Load()
}

// GetCallFailed returns the total number of failed calls.
func (m *Metrics) GetCallFailed() int64 {
	return m.callFailed.Load()
}

// getOpMetrics gets or creates the counters for op.
func (m *Metrics) getOpMetrics(op string) *OpMetrics {
	if om, ok := m.opMetrics.Load(op); ok {
		return om.(*OpMetrics)
	}
	om, _ := m.opMetrics.LoadOrStore(op, &OpMetrics{})
	return om.(*OpMetrics)
}

// Reset resets all metrics (useful for testing).
func (m *Metrics) Reset() {
	m.callTotal.Store(0)
	m.callFailed.Store(0)

	m.opMetrics.Clear()
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	ops := make(map[string]*OpMetricsSnapshot)
	m.opMetrics.Range(func(key, value any) bool {
		om := value.(*OpMetrics)
		count := om.callCount.Load()
		total := om.totalDuration.Load()
		var avg int64
		if count > 0 {
			avg = total / count
		}
		ops[key.(string)] = &OpMetricsSnapshot{
			CallCount:       count,
			ErrorCount:      om.errorCount.Load(),
			TotalDurationUs: total,
			AverageDuration: avg,
			MaxDurationUs:   om.maxDuration.Load(),
		}
		return true
	})

	return &MetricsSnapshot{
		CallTotal:  m.callTotal.Load(),
		CallFailed: m.callFailed.Load(),
		Ops:        ops,
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	CallTotal  int64                         `json:"call_total"`
	CallFailed int64                         `json:"call_failed"`
	Ops        map[string]*OpMetricsSnapshot `json:"ops"`
}

// OpMetricsSnapshot represents the counters of one operation.
type OpMetricsSnapshot struct {
	CallCount       int64 `json:"call_count"`
	ErrorCount      int64 `json:"error_count"`
	TotalDurationUs int64 `json:"total_duration_us"`
	AverageDuration int64 `json:"avg_duration_us"`
	MaxDurationUs   int64 `json:"max_duration_us"`
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.CallTotal == 0 {
		return 100.0
	}
	return float64(s.CallTotal-s.CallFailed) / float64(s.CallTotal) * 100.0
}

// OpNames returns the recorded operation names in sorted order.
func (s *MetricsSnapshot) OpNames() []string {
	names := make([]string, 0, len(s.Ops))
	for op := range s.Ops {
		names = append(names, op)
	}
	sort.Strings(names)
	return names
}
