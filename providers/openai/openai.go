// Package openai provides a drop-in replacement for the go-openai client
// that scans every prompt through the Shrike backend before it reaches the
// model. The call surface mirrors the wrapped client: substituting this
// Client requires no caller-visible change beyond construction.
package openai

import (
	"context"

	"github.com/rs/zerolog"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/Shrike-Security/shrike-guard-go/config"
	"github.com/Shrike-Security/shrike-guard-go/guard"
	"github.com/Shrike-Security/shrike-guard-go/scan"
)

// Client wraps goopenai.Client with prompt scanning. A blocked prompt
// surfaces as *guard.BlockedError; a scan failure under fail-closed mode
// surfaces as *guard.ScanError. Provider errors pass through unchanged.
type Client struct {
	openai  *goopenai.Client
	scanner *scan.Client
	cfg     config.Config

	chat   *guard.Interceptor[goopenai.ChatCompletionRequest, goopenai.ChatCompletionResponse]
	stream *guard.Interceptor[goopenai.ChatCompletionRequest, *goopenai.ChatCompletionStream]
}

// Option configures a Client.
type Option func(*options)

type options struct {
	openai  *goopenai.Client
	scanner *scan.Client
	logger  zerolog.Logger
}

// WithOpenAIClient injects a pre-configured go-openai client (custom base
// URL, org ID, proxy settings).
func WithOpenAIClient(oc *goopenai.Client) Option {
	return func(o *options) { o.openai = oc }
}

// WithScanClient injects a pre-configured scan client.
func WithScanClient(sc *scan.Client) Option {
	return func(o *options) { o.scanner = sc }
}

// WithLogger attaches a structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a guarded OpenAI client from the given configuration.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.openai == nil {
		o.openai = goopenai.NewClient(cfg.APIKey)
	}
	if o.scanner == nil {
		o.scanner = scan.New(cfg.ShrikeAPIKey,
			scan.WithEndpoint(cfg.Endpoint),
			scan.WithTimeout(cfg.ScanTimeout),
			scan.WithLogger(o.logger),
		)
	}

	c := &Client{
		openai:  o.openai,
		scanner: o.scanner,
		cfg:     cfg,
	}
	c.chat = guard.NewInterceptor[goopenai.ChatCompletionRequest, goopenai.ChatCompletionResponse](
		o.scanner, chatAdapter{openai: o.openai}, cfg.FailMode, guard.WithLogger(o.logger))
	c.stream = guard.NewInterceptor[goopenai.ChatCompletionRequest, *goopenai.ChatCompletionStream](
		o.scanner, streamAdapter{openai: o.openai}, cfg.FailMode, guard.WithLogger(o.logger))
	return c, nil
}

// CreateChatCompletion scans the user messages and, when allowed, delegates
// to the wrapped client, returning its response unchanged.
func (c *Client) CreateChatCompletion(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
	return c.chat.Do(ctx, req)
}

// CreateChatCompletionStream scans the user messages before the stream
// opens; nothing is sent to the provider for a blocked prompt.
func (c *Client) CreateChatCompletionStream(ctx context.Context, req goopenai.ChatCompletionRequest) (*goopenai.ChatCompletionStream, error) {
	return c.stream.Do(ctx, req)
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
	c.chat.AddObserver(fn)
	c.stream.AddObserver(fn)
}

// Close releases the scan client's connections.
func (c *Client) Close() {
	c.scanner.Close()
}

// chatAdapter binds the interceptor to chat completion calls.
type chatAdapter struct {
	openai *goopenai.Client
}

func (a chatAdapter) Scannable(req goopenai.ChatCompletionRequest) []scan.Request {
	return scannableMessages(req.Messages)
}

func (a chatAdapter) Invoke(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
	return a.openai.CreateChatCompletion(ctx, req)
}

// streamAdapter shares extraction with chatAdapter; only delegation differs.
type streamAdapter struct {
	openai *goopenai.Client
}

func (a streamAdapter) Scannable(req goopenai.ChatCompletionRequest) []scan.Request {
	return scannableMessages(req.Messages)
}

func (a streamAdapter) Invoke(ctx context.Context, req goopenai.ChatCompletionRequest) (*goopenai.ChatCompletionStream, error) {
	return a.openai.CreateChatCompletionStream(ctx, req)
}
