package audit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Shrike-Security/shrike-guard-go/guard"
	"github.com/Shrike-Security/shrike-guard-go/scan"
)

func TestLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	err := logger.Log(Entry{
		RequestID:  "req-1",
		Source:     "sdk",
		Kind:       "prompt",
		Status:     "blocked",
		ThreatType: "prompt_injection",
		Severity:   "high",
		Confidence: 0.97,
	})
	if err != nil {
		t.Fatalf("failed to log: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "req-1") {
		t.Error("expected request_id in output")
	}
	if !strings.Contains(output, "blocked") {
		t.Error("expected status in output")
	}

	// Verify it's valid JSON
	var entry Entry
	if err := json.Unmarshal([]byte(output), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry.RequestID != "req-1" {
		t.Errorf("expected request_id req-1, got %s", entry.RequestID)
	}
	if entry.ThreatType != "prompt_injection" {
		t.Errorf("expected threat_type prompt_injection, got %s", entry.ThreatType)
	}
}

func TestLogger_TimestampAutoFill(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	before := time.Now().UTC()
	logger.Log(Entry{RequestID: "ts-test", Source: "sdk", Status: "allowed"})
	after := time.Now().UTC()

	var entry Entry
	json.Unmarshal(buf.Bytes(), &entry)

	if entry.Timestamp.Before(before) || entry.Timestamp.After(after) {
		t.Error("auto-filled timestamp is out of range")
	}
}

func TestLogger_OnEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.OnEvent(guard.Event{
		Timestamp: time.Now().UTC(),
		RequestID: "req-2",
		Source:    "proxy",
		Kind:      scan.KindPrompt,
		Status:    guard.StatusFailed,
		FailMode:  "open",
		Reason:    "scan backend unreachable",
		Duration:  25 * time.Millisecond,
	})

	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry.Status != "failed" {
		t.Errorf("expected status failed, got %s", entry.Status)
	}
	if entry.Kind != "prompt" {
		t.Errorf("expected kind prompt, got %s", entry.Kind)
	}
	if entry.DurationMS != 25 {
		t.Errorf("expected duration_ms 25, got %v", entry.DurationMS)
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	err := logger.Log(Entry{RequestID: "nop", Source: "sdk", Status: "allowed"})
	if err != nil {
		t.Errorf("nop logger should not error: %v", err)
	}
}
