package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/Shrike-Security/shrike-guard-go/config"
	"github.com/Shrike-Security/shrike-guard-go/scan"
)

// fakeScanner returns verdicts in sequence, one per call.
type fakeScanner struct {
	verdicts []*scan.Verdict
	errs     []error
	calls    int
	seen     []scan.Request
}

func (f *fakeScanner) Do(ctx context.Context, req scan.Request) (*scan.Verdict, error) {
	i := f.calls
	f.calls++
	f.seen = append(f.seen, req)
	var v *scan.Verdict
	var err error
	if i < len(f.verdicts) {
		v = f.verdicts[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return v, err
}

// echoAdapter scans the request string and returns it upper-wrapped.
type echoAdapter struct {
	artifacts []scan.Request
	invoked   int
}

func (a *echoAdapter) Scannable(req string) []scan.Request {
	return a.artifacts
}

func (a *echoAdapter) Invoke(ctx context.Context, req string) (string, error) {
	a.invoked++
	return "response:" + req, nil
}

func promptArtifact(text string) []scan.Request {
	return []scan.Request{{Text: text, Kind: scan.KindPrompt}}
}

func TestInterceptor_AllowedProceeds(t *testing.T) {
	scanner := &fakeScanner{verdicts: []*scan.Verdict{{Safe: true}}}
	adapter := &echoAdapter{artifacts: promptArtifact("hello")}
	ic := NewInterceptor[string, string](scanner, adapter, config.FailOpen)

	resp, err := ic.Do(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "response:hello" {
		t.Errorf("unexpected response: %q", resp)
	}
	if adapter.invoked != 1 {
		t.Errorf("expected 1 invocation, got %d", adapter.invoked)
	}
}

func TestInterceptor_BlockedNeverInvokes(t *testing.T) {
	for _, mode := range []config.FailMode{config.FailOpen, config.FailClosed} {
		scanner := &fakeScanner{verdicts: []*scan.Verdict{{
			Safe:       false,
			Reason:     "injection detected",
			ThreatType: "prompt_injection",
			Confidence: 0.97,
		}}}
		adapter := &echoAdapter{artifacts: promptArtifact("bad")}
		ic := NewInterceptor[string, string](scanner, adapter, mode)

		resp, err := ic.Do(context.Background(), "bad")
		var berr *BlockedError
		if !errors.As(err, &berr) {
			t.Fatalf("mode %s: expected BlockedError, got %v", mode, err)
		}
		if berr.ThreatType != "prompt_injection" || berr.Confidence != 0.97 {
			t.Errorf("mode %s: blocked fields not carried: %+v", mode, berr)
		}
		if resp != "" {
			t.Errorf("mode %s: expected zero response, got %q", mode, resp)
		}
		if adapter.invoked != 0 {
			t.Errorf("mode %s: provider must not be invoked on block", mode)
		}
	}
}

func TestInterceptor_FailOpenProceeds(t *testing.T) {
	scanner := &fakeScanner{errs: []error{
		&scan.TransportError{Kind: scan.ErrorNetwork, Err: errors.New("refused")},
	}}
	adapter := &echoAdapter{artifacts: promptArtifact("hello")}
	ic := NewInterceptor[string, string](scanner, adapter, config.FailOpen)

	resp, err := ic.Do(context.Background(), "hello")
	if err != nil {
		t.Fatalf("expected fail-open to proceed, got %v", err)
	}
	if resp != "response:hello" {
		t.Errorf("unexpected response: %q", resp)
	}
}

func TestInterceptor_FailClosedRaises(t *testing.T) {
	cause := &scan.TransportError{Kind: scan.ErrorTimeout, Err: errors.New("deadline")}
	scanner := &fakeScanner{errs: []error{cause}}
	adapter := &echoAdapter{artifacts: promptArtifact("hello")}
	ic := NewInterceptor[string, string](scanner, adapter, config.FailClosed)

	_, err := ic.Do(context.Background(), "hello")
	var serr *ScanError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ScanError, got %v", err)
	}
	var terr *scan.TransportError
	if !errors.As(err, &terr) || terr.Kind != scan.ErrorTimeout {
		t.Error("expected the transport error to be reachable via Unwrap")
	}
	if adapter.invoked != 0 {
		t.Error("provider must not be invoked under fail-closed scan failure")
	}
}

func TestInterceptor_NoArtifactsSkipsScan(t *testing.T) {
	scanner := &fakeScanner{}
	adapter := &echoAdapter{artifacts: nil}
	ic := NewInterceptor[string, string](scanner, adapter, config.FailClosed)

	resp, err := ic.Do(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "response:   " {
		t.Errorf("unexpected response: %q", resp)
	}
	if scanner.calls != 0 {
		t.Errorf("expected no scans, got %d", scanner.calls)
	}
}

func TestInterceptor_FirstBlockShortCircuits(t *testing.T) {
	scanner := &fakeScanner{verdicts: []*scan.Verdict{
		{Safe: false, Reason: "blocked", ThreatType: "sql_injection"},
		{Safe: true},
	}}
	adapter := &echoAdapter{artifacts: []scan.Request{
		{Text: "DROP TABLE users", Kind: scan.KindSQL},
		{Text: "hello", Kind: scan.KindPrompt},
	}}
	ic := NewInterceptor[string, string](scanner, adapter, config.FailOpen)

	_, err := ic.Do(context.Background(), "multi")
	var berr *BlockedError
	if !errors.As(err, &berr) {
		t.Fatalf("expected BlockedError, got %v", err)
	}
	if scanner.calls != 1 {
		t.Errorf("expected scanning to stop after the block, got %d calls", scanner.calls)
	}
}

func TestInterceptor_FailureRememberedAcrossArtifacts(t *testing.T) {
	// First artifact fails, second is safe: the combined outcome is still
	// failed, so fail-closed raises.
	scanner := &fakeScanner{
		verdicts: []*scan.Verdict{nil, {Safe: true}},
		errs: []error{
			&scan.TransportError{Kind: scan.ErrorNetwork, Err: errors.New("refused")},
			nil,
		},
	}
	adapter := &echoAdapter{artifacts: []scan.Request{
		{Text: "one", Kind: scan.KindPrompt},
		{Text: "two", Kind: scan.KindPrompt},
	}}
	ic := NewInterceptor[string, string](scanner, adapter, config.FailClosed)

	_, err := ic.Do(context.Background(), "multi")
	var serr *ScanError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ScanError, got %v", err)
	}
	if scanner.calls != 2 {
		t.Errorf("failures should not stop scanning, got %d calls", scanner.calls)
	}
}

func TestInterceptor_PublishesEvents(t *testing.T) {
	scanner := &fakeScanner{verdicts: []*scan.Verdict{{
		Safe:       false,
		Reason:     "blocked",
		ThreatType: "prompt_injection",
		Severity:   "high",
	}}}
	adapter := &echoAdapter{artifacts: promptArtifact("bad")}
	ic := NewInterceptor[string, string](scanner, adapter, config.FailOpen, WithSource("test"))

	var events []Event
	ic.AddObserver(func(ev Event) { events = append(events, ev) })

	_, _ = ic.Do(context.Background(), "bad")

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Status != StatusBlocked {
		t.Errorf("expected blocked event, got %s", ev.Status)
	}
	if ev.Source != "test" {
		t.Errorf("expected source test, got %s", ev.Source)
	}
	if ev.Kind != scan.KindPrompt {
		t.Errorf("expected kind prompt, got %s", ev.Kind)
	}
	if ev.RequestID == "" {
		t.Error("expected non-empty request id")
	}
	if ev.FailMode != config.FailOpen {
		t.Errorf("expected fail mode open, got %s", ev.FailMode)
	}
}
