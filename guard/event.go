package guard

import (
	"sync"
	"time"

	"github.com/Shrike-Security/shrike-guard-go/config"
	"github.com/Shrike-Security/shrike-guard-go/scan"
)

// Event describes one scan decision for observers (audit log, dashboard).
type Event struct {
	Timestamp  time.Time       `json:"timestamp"`
	RequestID  string          `json:"request_id"`
	Source     string          `json:"source"` // "sdk" or "proxy"
	Kind       scan.Kind       `json:"kind"`
	Status     Status          `json:"status"`
	ThreatType string          `json:"threat_type,omitempty"`
	Severity   string          `json:"severity,omitempty"`
	Confidence float64         `json:"confidence,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	FailMode   config.FailMode `json:"fail_mode"`
	Duration   time.Duration   `json:"duration"`
}

// Observer is a callback invoked for every scan decision.
type Observer func(Event)

// Notifier fans events out to registered observers. The zero value is ready
// to use. Observers must not block; they run on the scanning goroutine.
type Notifier struct {
	mu        sync.RWMutex
	observers []Observer
}

// AddObserver registers a callback for all subsequent events.
func (n *Notifier) AddObserver(fn Observer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.observers = append(n.observers, fn)
}

// Publish delivers an event to all registered observers.
func (n *Notifier) Publish(e Event) {
	n.mu.RLock()
	observers := n.observers
	n.mu.RUnlock()

	for _, fn := range observers {
		fn(e)
	}
}
