package guard

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shrike-Security/shrike-guard-go/config"
	"github.com/Shrike-Security/shrike-guard-go/scan"
)

var requestCounter atomic.Uint64

// Scanner performs one scan round trip. *scan.Client satisfies it; tests
// substitute stubs.
type Scanner interface {
	Do(ctx context.Context, req scan.Request) (*scan.Verdict, error)
}

// Adapter binds the interceptor to one provider call shape. Scannable must
// return every user- and system-authored text segment of the call; Invoke
// performs the real provider call. Implementations hold no mutable state.
type Adapter[Req, Resp any] interface {
	// Scannable extracts the scannable artifacts from a call. An empty
	// result means there is nothing to scan and the call proceeds.
	Scannable(req Req) []scan.Request

	// Invoke delegates to the wrapped provider. It runs only after every
	// artifact has an allowed outcome.
	Invoke(ctx context.Context, req Req) (Resp, error)
}

// Interceptor wraps a provider call surface with scanning. For each call it
// extracts scannable text, scans every artifact, interprets the results,
// applies the fail-mode policy, and only then delegates to the provider.
// The provider call never starts before the scan outcome is determined.
type Interceptor[Req, Resp any] struct {
	scanner Scanner
	adapter Adapter[Req, Resp]
	mode    config.FailMode
	source  string
	logger  zerolog.Logger

	Notifier
}

// InterceptorOption configures an Interceptor.
type InterceptorOption func(*interceptorSettings)

type interceptorSettings struct {
	source string
	logger zerolog.Logger
}

// WithLogger attaches a structured logger to the interceptor.
func WithLogger(l zerolog.Logger) InterceptorOption {
	return func(s *interceptorSettings) { s.logger = l }
}

// WithSource tags emitted events with an origin label.
func WithSource(source string) InterceptorOption {
	return func(s *interceptorSettings) { s.source = source }
}

// NewInterceptor creates an interceptor over the given scanner and adapter.
func NewInterceptor[Req, Resp any](scanner Scanner, adapter Adapter[Req, Resp], mode config.FailMode, opts ...InterceptorOption) *Interceptor[Req, Resp] {
	settings := interceptorSettings{source: "sdk", logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&settings)
	}
	return &Interceptor[Req, Resp]{
		scanner: scanner,
		adapter: adapter,
		mode:    mode,
		source:  settings.source,
		logger:  settings.logger,
	}
}

// Do runs one guarded call. On a proceed decision the provider response and
// error pass through unchanged; otherwise the zero response is returned with
// a *BlockedError or *ScanError and the provider is never invoked.
func (ic *Interceptor[Req, Resp]) Do(ctx context.Context, req Req) (Resp, error) {
	var zero Resp

	outcome := ic.scanAll(ctx, ic.adapter.Scannable(req))

	switch Decide(outcome, ic.mode) {
	case RaiseBlocked:
		return zero, blockedError(outcome)
	case RaiseScanError:
		return zero, &ScanError{Cause: outcome.Cause}
	}

	if outcome.Status == StatusFailed {
		ic.logger.Warn().
			Err(outcome.Cause).
			Msg("scan failed, failing open (allowing request)")
	}

	return ic.adapter.Invoke(ctx, req)
}

// scanAll scans artifacts in order and combines their outcomes: the first
// blocked artifact wins and stops further scanning; otherwise the first
// failure is remembered; otherwise the call is allowed. Zero artifacts
// means there is no user content to scan and the call is allowed without
// a network round trip.
func (ic *Interceptor[Req, Resp]) scanAll(ctx context.Context, artifacts []scan.Request) Outcome {
	combined := Allowed()

	for _, artifact := range artifacts {
		start := time.Now()
		verdict, err := ic.scanner.Do(ctx, artifact)
		outcome := Interpret(verdict, err)
		ic.publish(artifact, outcome, time.Since(start))

		switch outcome.Status {
		case StatusBlocked:
			return outcome
		case StatusFailed:
			if combined.Status != StatusFailed {
				combined = outcome
			}
		}
	}

	return combined
}

func (ic *Interceptor[Req, Resp]) publish(artifact scan.Request, o Outcome, elapsed time.Duration) {
	ic.Publish(Event{
		Timestamp:  time.Now().UTC(),
		RequestID:  fmt.Sprintf("req-%d", requestCounter.Add(1)),
		Source:     ic.source,
		Kind:       artifact.Kind,
		Status:     o.Status,
		ThreatType: o.ThreatType,
		Severity:   o.Severity,
		Confidence: o.Confidence,
		Reason:     o.Reason,
		FailMode:   ic.mode,
		Duration:   elapsed,
	})
}
