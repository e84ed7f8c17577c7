// Package gemini provides a guarded client for Google's Generative
// Language API. Every GenerateContent call is scanned through the Shrike
// backend before the prompt reaches the model.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Shrike-Security/shrike-guard-go/config"
	"github.com/Shrike-Security/shrike-guard-go/guard"
	"github.com/Shrike-Security/shrike-guard-go/scan"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Part is a single content part. Only text parts are scannable.
type Part struct {
	Text string `json:"text,omitempty"`
}

// Content is one conversation turn.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerateRequest is the generateContent request format.
type GenerateRequest struct {
	Contents []Content `json:"contents"`
}

// TextRequest builds a single-turn user request from plain text.
func TextRequest(text string) GenerateRequest {
	return GenerateRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: text}}}},
	}
}

// Candidate is one generated response candidate.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// GenerateResponse is the generateContent response format.
type GenerateResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Text returns the text of the first candidate, or "".
func (r *GenerateResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var parts []string
	for _, p := range r.Candidates[0].Content.Parts {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "")
}

// APIError is an error response from the Gemini API, passed through to
// callers unchanged.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return "gemini: " + e.Message
}

// Client is a guarded Gemini client. Models are obtained via
// GenerativeModel, mirroring the upstream SDK shape.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	scanner *scan.Client
	cfg     config.Config
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Gemini API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient injects a custom HTTP client for provider calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithScanClient injects a pre-configured scan client.
func WithScanClient(sc *scan.Client) Option {
	return func(c *Client) { c.scanner = sc }
}

// New creates a guarded Gemini client from the given configuration.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: defaultBaseURL,
		cfg:     cfg,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.scanner == nil {
		c.scanner = scan.New(cfg.ShrikeAPIKey,
			scan.WithEndpoint(cfg.Endpoint),
			scan.WithTimeout(cfg.ScanTimeout),
		)
	}
	return c, nil
}

// GenerativeModel returns a guarded handle for the named model.
func (c *Client) GenerativeModel(name string) *GenerativeModel {
	m := &GenerativeModel{name: name, client: c}
	m.generate = guard.NewInterceptor[GenerateRequest, *GenerateResponse](
		c.scanner, generateAdapter{model: m}, c.cfg.FailMode)
	return m
}

// Scan exposes the low-level prompt scan for direct use.
func (c *Client) Scan(ctx context.Context, prompt string) (*scan.Verdict, error) {
	return c.scanner.Scan(ctx, prompt, "")
}

// ScanSQL scans an AI-generated SQL query before execution.
func (c *Client) ScanSQL(ctx context.Context, query, database string, allowDestructive bool) (*scan.Verdict, error) {
	return c.scanner.ScanSQL(ctx, query, database, allowDestructive)
}

// ScanFile validates a file path and optionally its content.
func (c *Client) ScanFile(ctx context.Context, path, content string) (*scan.Verdict, error) {
	return c.scanner.ScanFile(ctx, path, content)
}

// Close releases the scan client's connections.
func (c *Client) Close() {
	c.scanner.Close()
}

// GenerativeModel is a guarded handle for one Gemini model.
type GenerativeModel struct {
	name     string
	client   *Client
	generate *guard.Interceptor[GenerateRequest, *GenerateResponse]
}

// GenerateContent scans the user content and, when allowed, generates a
// response from the model, returned unchanged.
func (m *GenerativeModel) GenerateContent(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return m.generate.Do(ctx, req)
}

// GenerateText is a convenience wrapper for a single-turn text prompt.
func (m *GenerativeModel) GenerateText(ctx context.Context, text string) (*GenerateResponse, error) {
	return m.GenerateContent(ctx, TextRequest(text))
}

// AddObserver registers a callback for every scan decision this model makes.
func (m *GenerativeModel) AddObserver(fn guard.Observer) {
	m.generate.AddObserver(fn)
}

// generateContent performs the real generateContent call.
func (m *GenerativeModel) generateContent(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding generate request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", m.client.baseURL, m.name, m.client.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var wrapper struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(data, &wrapper) == nil && wrapper.Error.Message != "" {
			apiErr.Message = wrapper.Error.Message
		} else {
			apiErr.Message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return nil, apiErr
	}

	var gr GenerateResponse
	if err := json.Unmarshal(data, &gr); err != nil {
		return nil, fmt.Errorf("decoding generate response: %w", err)
	}
	return &gr, nil
}

// generateAdapter binds the interceptor to generateContent calls.
type generateAdapter struct {
	model *GenerativeModel
}

func (a generateAdapter) Scannable(req GenerateRequest) []scan.Request {
	content := extractContent(req.Contents)
	if strings.TrimSpace(content) == "" {
		return nil
	}
	return []scan.Request{{Text: content, Kind: scan.KindPrompt}}
}

func (a generateAdapter) Invoke(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return a.model.generateContent(ctx, req)
}

// extractContent collects all text parts across contents, joined with
// newlines. Gemini requests may omit roles for single-turn prompts, so all
// turns are scanned rather than user turns only.
func extractContent(contents []Content) string {
	var parts []string
	for _, content := range contents {
		if content.Role == "model" {
			continue
		}
		for _, p := range content.Parts {
			if p.Text != "" {
				parts = append(parts, p.Text)
			}
		}
	}
	return strings.Join(parts, "\n")
}
