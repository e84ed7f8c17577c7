// Package proxy implements a guarding reverse proxy for OpenAI-compatible
// chat endpoints. Prompts are scanned before they are forwarded upstream;
// blocked prompts never leave the proxy.
package proxy

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Shrike-Security/shrike-guard-go/config"
	"github.com/Shrike-Security/shrike-guard-go/guard"
	"github.com/Shrike-Security/shrike-guard-go/scan"
)

// GuardProxy is an HTTP reverse proxy that scans chat prompts before
// forwarding them upstream.
type GuardProxy struct {
	scanner  guard.Scanner
	mode     config.FailMode
	upstream *url.URL
	proxy    *httputil.ReverseProxy
	logger   zerolog.Logger

	guard.Notifier
}

// New creates a GuardProxy forwarding to upstreamURL.
func New(scanner guard.Scanner, mode config.FailMode, upstreamURL string, logger zerolog.Logger) (*GuardProxy, error) {
	target, err := url.Parse(upstreamURL)
	if err != nil {
		return nil, err
	}

	gp := &GuardProxy{
		scanner:  scanner,
		mode:     mode,
		upstream: target,
		logger:   logger,
	}

	gp.proxy = &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = target.Scheme
			req.URL.Host = target.Host
			req.Host = target.Host
		},
	}

	return gp, nil
}

// ServeHTTP handles incoming requests.
func (gp *GuardProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only inspect chat completion endpoints
	if !isChatCompletionEndpoint(r.URL.Path) {
		// Pass through non-chat requests directly
		gp.proxy.ServeHTTP(w, r)
		return
	}

	// Read the request body
	bodyBytes, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	r.ContentLength = int64(len(bodyBytes))

	// Parse the chat request
	chatReq, err := ParseChatRequest(bodyBytes)
	if err != nil {
		// Not a valid chat request, pass through
		gp.proxy.ServeHTTP(w, r)
		return
	}

	requestID := uuid.NewString()
	content := ExtractUserContent(chatReq)

	// Nothing scannable: forward without a network round trip.
	if strings.TrimSpace(content) == "" {
		gp.publish(requestID, guard.Allowed(), 0)
		gp.proxy.ServeHTTP(w, r)
		return
	}

	start := time.Now()
	verdict, scanErr := gp.scanner.Do(r.Context(), scan.Request{
		Text: content,
		Kind: scan.KindPrompt,
	})
	outcome := guard.Interpret(verdict, scanErr)
	elapsed := time.Since(start)

	gp.logger.Info().
		Str("request_id", requestID).
		Str("status", string(outcome.Status)).
		Str("threat_type", outcome.ThreatType).
		Dur("scan_duration", elapsed).
		Msg("ingress scan")

	gp.publish(requestID, outcome, elapsed)

	switch guard.Decide(outcome, gp.mode) {
	case guard.RaiseBlocked:
		gp.logger.Warn().
			Str("request_id", requestID).
			Str("threat_type", outcome.ThreatType).
			Str("severity", outcome.Severity).
			Str("reason", outcome.Reason).
			Msg("blocked")
		gp.writeDeny(w, chatReq.Model, requestID, outcome)
		return

	case guard.RaiseScanError:
		gp.logger.Error().
			Str("request_id", requestID).
			Err(outcome.Cause).
			Msg("scan failed, failing closed")
		gp.writeScanUnavailable(w, requestID)
		return
	}

	if outcome.Status == guard.StatusFailed {
		gp.logger.Warn().
			Str("request_id", requestID).
			Err(outcome.Cause).
			Msg("scan failed, failing open (allowing request)")
	}

	// Allowed or failing open: forward upstream. Streaming responses pass
	// through untouched; the prompt was already scanned.
	gp.proxy.ServeHTTP(w, r)
}

// Handler returns the proxy as an http.Handler.
func (gp *GuardProxy) Handler() http.Handler {
	return gp
}

// writeDeny responds with a well-formed chat completion carrying a refusal
// message and the scan report, so agent loops keep functioning.
func (gp *GuardProxy) writeDeny(w http.ResponseWriter, model, requestID string, o guard.Outcome) {
	message := "[Shrike Guard] Request blocked: " + o.Reason
	denyResp := MakeDenyResponse(message, model, &Report{
		RequestID:  requestID,
		Verdict:    string(o.Status),
		ThreatType: o.ThreatType,
		Severity:   o.Severity,
		Confidence: o.Confidence,
		Reason:     o.Reason,
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(denyResp)
}

// writeScanUnavailable responds with 502 when the scan backend is down and
// the proxy runs fail-closed.
func (gp *GuardProxy) writeScanUnavailable(w http.ResponseWriter, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message":    "security scan unavailable and fail mode is closed",
			"type":       "scan_unavailable",
			"request_id": requestID,
		},
	})
}

func (gp *GuardProxy) publish(requestID string, o guard.Outcome, elapsed time.Duration) {
	gp.Publish(guard.Event{
		Timestamp:  time.Now().UTC(),
		RequestID:  requestID,
		Source:     "proxy",
		Kind:       scan.KindPrompt,
		Status:     o.Status,
		ThreatType: o.ThreatType,
		Severity:   o.Severity,
		Confidence: o.Confidence,
		Reason:     o.Reason,
		FailMode:   gp.mode,
		Duration:   elapsed,
	})
}

// isChatCompletionEndpoint checks if the path matches known chat completion endpoints.
func isChatCompletionEndpoint(path string) bool {
	chatPaths := []string{
		"/v1/chat/completions",
		"/api/chat",
		"/api/generate",
		"/chat/completions",
	}
	for _, p := range chatPaths {
		if strings.HasSuffix(path, p) || path == p {
			return true
		}
	}
	return false
}
