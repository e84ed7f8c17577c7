package dashboard

import (
	"time"

	"github.com/Shrike-Security/shrike-guard-go/guard"
)

// DashboardEvent wraps a guard.Event with a unique dashboard ID.
type DashboardEvent struct {
	ID string `json:"id"`
	guard.Event
}

// WSMessage is the envelope for all WebSocket messages.
type WSMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// StatsSnapshot is a point-in-time snapshot of accumulated statistics.
type StatsSnapshot struct {
	TotalRequests  uint64            `json:"total_requests"`
	BlockedCount   uint64            `json:"blocked_count"`
	AllowedCount   uint64            `json:"allowed_count"`
	FailedCount    uint64            `json:"failed_count"`
	AvgConfidence  float64           `json:"avg_confidence"`
	StatusCounts   map[string]uint64 `json:"status_counts"`
	ThreatCounts   map[string]uint64 `json:"threat_counts"`
	SeverityCounts map[string]uint64 `json:"severity_counts"`
	ConfidenceHist [10]uint64        `json:"confidence_histogram"`
	TimeSeries     []TimeSeriesPoint `json:"time_series"`
}

// TimeSeriesPoint is a single point in the 60-minute time series.
type TimeSeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Count     uint64    `json:"count"`
	Blocked   uint64    `json:"blocked"`
}

// ProxyInfo describes the running proxy configuration, sent to clients
// alongside the initial event backlog.
type ProxyInfo struct {
	Endpoint string `json:"endpoint"`
	FailMode string `json:"fail_mode"`
	Upstream string `json:"upstream,omitempty"`
}

// InitialState is sent to clients on WebSocket connect.
type InitialState struct {
	Events []*DashboardEvent `json:"events"`
	Stats  *StatsSnapshot    `json:"stats"`
	Proxy  ProxyInfo         `json:"proxy"`
}
