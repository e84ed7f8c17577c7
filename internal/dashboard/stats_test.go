package dashboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/Shrike-Security/shrike-guard-go/guard"
)

func TestRingBuffer_Overwrite(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := 0; i < 5; i++ {
		rb.Add(&DashboardEvent{ID: fmt.Sprintf("evt-%d", i)})
	}

	if rb.Len() != 3 {
		t.Fatalf("expected len 3, got %d", rb.Len())
	}

	all := rb.All()
	want := []string{"evt-2", "evt-3", "evt-4"}
	for i, ev := range all {
		if ev.ID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], ev.ID)
		}
	}
}

func TestStats_Record(t *testing.T) {
	s := NewStats()
	now := time.Now().UTC()

	s.Record(&DashboardEvent{Event: guard.Event{
		Timestamp: now, Status: guard.StatusAllowed,
	}})
	s.Record(&DashboardEvent{Event: guard.Event{
		Timestamp: now, Status: guard.StatusBlocked,
		ThreatType: "prompt_injection", Severity: "high", Confidence: 0.75,
	}})
	s.Record(&DashboardEvent{Event: guard.Event{
		Timestamp: now, Status: guard.StatusBlocked,
		ThreatType: "prompt_injection", Severity: "high", Confidence: 0.25,
	}})
	s.Record(&DashboardEvent{Event: guard.Event{
		Timestamp: now, Status: guard.StatusFailed,
	}})

	snap := s.Snapshot()
	if snap.TotalRequests != 4 {
		t.Errorf("expected 4 total, got %d", snap.TotalRequests)
	}
	if snap.BlockedCount != 2 || snap.AllowedCount != 1 || snap.FailedCount != 1 {
		t.Errorf("unexpected counts: blocked=%d allowed=%d failed=%d",
			snap.BlockedCount, snap.AllowedCount, snap.FailedCount)
	}
	if snap.ThreatCounts["prompt_injection"] != 2 {
		t.Errorf("expected 2 prompt_injection, got %d", snap.ThreatCounts["prompt_injection"])
	}
	if snap.AvgConfidence != 0.5 {
		t.Errorf("expected avg confidence 0.5, got %v", snap.AvgConfidence)
	}
	if snap.ConfidenceHist[7] != 1 || snap.ConfidenceHist[2] != 1 {
		t.Errorf("unexpected histogram: %v", snap.ConfidenceHist)
	}
}

func TestStats_TimeSeries(t *testing.T) {
	s := NewStats()
	now := time.Now().UTC()

	s.Record(&DashboardEvent{Event: guard.Event{Timestamp: now, Status: guard.StatusBlocked}})
	s.Record(&DashboardEvent{Event: guard.Event{Timestamp: now, Status: guard.StatusAllowed}})

	snap := s.Snapshot()
	if len(snap.TimeSeries) != timeSeriesMinutes {
		t.Fatalf("expected %d points, got %d", timeSeriesMinutes, len(snap.TimeSeries))
	}

	last := snap.TimeSeries[len(snap.TimeSeries)-1]
	if last.Count != 2 || last.Blocked != 1 {
		t.Errorf("expected current minute count=2 blocked=1, got count=%d blocked=%d",
			last.Count, last.Blocked)
	}
}
