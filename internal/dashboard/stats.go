package dashboard

import (
	"sync"
	"time"

	"github.com/Shrike-Security/shrike-guard-go/guard"
)

const timeSeriesMinutes = 60

// Stats accumulates real-time statistics from scan decision events.
type Stats struct {
	mu sync.RWMutex

	totalRequests uint64
	blockedCount  uint64
	allowedCount  uint64
	failedCount   uint64
	confidenceSum float64

	statusCounts   map[string]uint64
	threatCounts   map[string]uint64
	severityCounts map[string]uint64
	confidenceHist [10]uint64 // buckets: [0.0-0.1), [0.1-0.2), ..., [0.9-1.0]

	// Per-minute buckets for the last 60 minutes
	timeBuckets [timeSeriesMinutes]timeBucket
}

type timeBucket struct {
	minute  time.Time // truncated to minute
	count   uint64
	blocked uint64
}

// NewStats creates a new stats accumulator.
func NewStats() *Stats {
	return &Stats{
		statusCounts:   make(map[string]uint64),
		threatCounts:   make(map[string]uint64),
		severityCounts: make(map[string]uint64),
	}
}

// Record ingests a single scan decision event.
func (s *Stats) Record(event *DashboardEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalRequests++

	switch event.Status {
	case guard.StatusBlocked:
		s.blockedCount++
	case guard.StatusFailed:
		s.failedCount++
	default:
		s.allowedCount++
	}

	if event.Status == guard.StatusBlocked {
		s.confidenceSum += event.Confidence

		// Confidence histogram: bucket index = floor(confidence * 10), capped at 9
		bucket := int(event.Confidence * 10)
		if bucket > 9 {
			bucket = 9
		}
		s.confidenceHist[bucket]++

		if event.ThreatType != "" {
			s.threatCounts[event.ThreatType]++
		}
		if event.Severity != "" {
			s.severityCounts[event.Severity]++
		}
	}

	// Status distribution
	s.statusCounts[string(event.Status)]++

	// Time series
	now := event.Timestamp.Truncate(time.Minute)
	idx := now.Minute() % timeSeriesMinutes
	if s.timeBuckets[idx].minute != now {
		s.timeBuckets[idx] = timeBucket{minute: now}
	}
	s.timeBuckets[idx].count++
	if event.Status == guard.StatusBlocked {
		s.timeBuckets[idx].blocked++
	}
}

// Snapshot returns a point-in-time copy of the stats.
func (s *Stats) Snapshot() *StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &StatsSnapshot{
		TotalRequests:  s.totalRequests,
		BlockedCount:   s.blockedCount,
		AllowedCount:   s.allowedCount,
		FailedCount:    s.failedCount,
		StatusCounts:   copyMap(s.statusCounts),
		ThreatCounts:   copyMap(s.threatCounts),
		SeverityCounts: copyMap(s.severityCounts),
		ConfidenceHist: s.confidenceHist,
	}

	if s.blockedCount > 0 {
		snap.AvgConfidence = s.confidenceSum / float64(s.blockedCount)
	}

	// Build time series from buckets (last 60 minutes, chronological)
	now := time.Now().UTC().Truncate(time.Minute)
	cutoff := now.Add(-timeSeriesMinutes * time.Minute)
	for i := 0; i < timeSeriesMinutes; i++ {
		t := cutoff.Add(time.Duration(i+1) * time.Minute)
		idx := t.Minute() % timeSeriesMinutes
		b := s.timeBuckets[idx]
		if b.minute == t {
			snap.TimeSeries = append(snap.TimeSeries, TimeSeriesPoint{
				Timestamp: b.minute,
				Count:     b.count,
				Blocked:   b.blocked,
			})
		} else {
			snap.TimeSeries = append(snap.TimeSeries, TimeSeriesPoint{
				Timestamp: t,
				Count:     0,
				Blocked:   0,
			})
		}
	}

	return snap
}

func copyMap(m map[string]uint64) map[string]uint64 {
	c := make(map[string]uint64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
