package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shrike-Security/shrike-guard-go/config"
)

// Client is the HTTP client for the Shrike scan backend. It is safe for
// concurrent use: the underlying http.Client pools connections, and the
// Client itself is immutable after construction.
type Client struct {
	apiKey   string
	endpoint string
	timeout  time.Duration
	http     *http.Client
	logger   zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the backend base URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = strings.TrimRight(endpoint, "/") }
}

// WithTimeout overrides the per-scan timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger attaches a structured logger. The default discards all output.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a scan client for the given Shrike API key.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		endpoint: config.DefaultEndpoint,
		timeout:  config.DefaultScanTimeout,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c
}

// Scan submits a prompt for threat analysis. conversationContext may be
// empty; when present it gives the backend multi-turn context.
func (c *Client) Scan(ctx context.Context, prompt, conversationContext string) (*Verdict, error) {
	if v := checkContentSize(prompt, conversationContext); v != nil {
		return v, nil
	}

	payload := map[string]any{"prompt": prompt}
	if conversationContext != "" {
		payload["context"] = conversationContext
	}
	return c.post(ctx, "/scan", payload)
}

// ScanSQL submits a SQL query for injection analysis. allowDestructive
// permits DROP/TRUNCATE operations.
func (c *Client) ScanSQL(ctx context.Context, query, database string, allowDestructive bool) (*Verdict, error) {
	if v := checkContentSize(query, ""); v != nil {
		return v, nil
	}

	payload := map[string]any{
		"content":      query,
		"content_type": "sql",
		"context": map[string]string{
			"database":          database,
			"allow_destructive": strconv.FormatBool(allowDestructive),
		},
	}
	return c.post(ctx, "/api/scan/specialized", payload)
}

// ScanFile validates a file path, and when content is non-empty also scans
// the content for secrets and PII.
func (c *Client) ScanFile(ctx context.Context, path, content string) (*Verdict, error) {
	if v := checkContentSize(path, content); v != nil {
		return v, nil
	}

	contentType := "file_path"
	if content != "" {
		contentType = "file_content"
	}
	payload := map[string]any{
		"content":      path,
		"content_type": contentType,
	}
	if content != "" {
		payload["context"] = map[string]string{"file_content": content}
	}
	return c.post(ctx, "/api/scan/specialized", payload)
}

// Do submits a Request, dispatching on its Kind. This is the entry point
// the call interceptor uses.
func (c *Client) Do(ctx context.Context, req Request) (*Verdict, error) {
	switch req.Kind {
	case KindPrompt:
		return c.Scan(ctx, req.Text, req.Meta("context"))
	case KindSQL:
		allowDestructive, _ := strconv.ParseBool(req.Meta("allow_destructive"))
		return c.ScanSQL(ctx, req.Text, req.Meta("database"), allowDestructive)
	case KindFilePath:
		return c.ScanFile(ctx, req.Text, "")
	case KindFileContent:
		return c.ScanFile(ctx, req.Text, req.Meta("file_content"))
	default:
		return nil, protocolError("unknown scan kind %q", req.Kind)
	}
}

// Close releases pooled connections. The client must not be used afterwards.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// post performs one round trip against the backend. The scan timeout bounds
// the whole exchange; cancelling the context aborts the request in flight.
func (c *Client) post(ctx context.Context, path string, payload any) (*Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, protocolError("encoding scan request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Kind: ErrorNetwork, Err: err}
	}
	for k, v := range Headers(c.apiKey, "") {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		terr := classify(err)
		c.logger.Warn().
			Str("path", path).
			Str("error_kind", string(terr.Kind)).
			Dur("elapsed", time.Since(start)).
			Msg("scan round trip failed")
		return nil, terr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, protocolError("scan backend returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(fmt.Errorf("reading scan response: %w", err))
	}

	verdict, derr := decodeVerdict(data)
	if derr != nil {
		return nil, derr
	}

	c.logger.Debug().
		Str("path", path).
		Bool("safe", verdict.Safe).
		Str("threat_type", verdict.ThreatType).
		Dur("elapsed", time.Since(start)).
		Msg("scan complete")
	return verdict, nil
}
