// Package anthropic provides a guarded client for the Anthropic Messages
// API. Every CreateMessage call is scanned through the Shrike backend
// before the request reaches the model.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Shrike-Security/shrike-guard-go/config"
	"github.com/Shrike-Security/shrike-guard-go/guard"
	"github.com/Shrike-Security/shrike-guard-go/scan"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// Client is a guarded Anthropic Messages API client.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	scanner *scan.Client
	cfg     config.Config

	messages *guard.Interceptor[MessageRequest, *MessageResponse]
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Anthropic API base URL.
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

// New creates a guarded Anthropic client from the given configuration.
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

	c.messages = guard.NewInterceptor[MessageRequest, *MessageResponse](
		c.scanner, messagesAdapter{client: c}, cfg.FailMode, guard.WithLogger(zerolog.Nop()))
	return c, nil
}

// CreateMessage scans the user messages and, when allowed, sends the request
// to the Messages API, returning its response unchanged.
func (c *Client) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	return c.messages.Do(ctx, req)
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

// AddObserver registers a callback for every scan decision this client makes.
func (c *Client) AddObserver(fn guard.Observer) {
	c.messages.AddObserver(fn)
}

// Close releases the scan client's connections.
func (c *Client) Close() {
	c.scanner.Close()
}

// createMessage performs the real Messages API call.
func (c *Client) createMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding message request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
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
			Error *APIError `json:"error"`
		}
		if json.Unmarshal(data, &wrapper) == nil && wrapper.Error != nil {
			apiErr.Type = wrapper.Error.Type
			apiErr.Message = wrapper.Error.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return nil, apiErr
	}

	var msg MessageResponse
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decoding message response: %w", err)
	}
	return &msg, nil
}

// messagesAdapter binds the interceptor to Messages API calls.
type messagesAdapter struct {
	client *Client
}

func (a messagesAdapter) Scannable(req MessageRequest) []scan.Request {
	content := extractUserContent(req.Messages)
	if strings.TrimSpace(content) == "" {
		return nil
	}
	return []scan.Request{{Text: content, Kind: scan.KindPrompt}}
}

func (a messagesAdapter) Invoke(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	return a.client.createMessage(ctx, req)
}

// extractUserContent collects the text blocks of all user messages, joined
// with newlines.
func extractUserContent(messages []Message) string {
	var parts []string
	for _, msg := range messages {
		if msg.Role != RoleUser {
			continue
		}
		for _, block := range msg.Content {
			if block.Type == "text" && block.Text != "" {
				parts = append(parts, block.Text)
			}
		}
	}
	return strings.Join(parts, "\n")
}
