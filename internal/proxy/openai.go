package proxy

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ChatMessage represents a single message in the OpenAI chat format.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the OpenAI chat completions request format.
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

// ChatChoice represents a single choice in the response.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatCompletionResponse is the OpenAI chat completions response format.
type ChatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   *Usage       `json:"usage,omitempty"`
	Shrike  *Report      `json:"_shrike,omitempty"`
}

// Usage tracks token usage.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Report carries the scan verdict attached to proxy deny responses under
// the _shrike field.
type Report struct {
	RequestID  string  `json:"request_id"`
	Verdict    string  `json:"verdict"`
	ThreatType string  `json:"threat_type,omitempty"`
	Severity   string  `json:"severity,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// ParseChatRequest parses an OpenAI chat completion request from JSON bytes.
func ParseChatRequest(data []byte) (*ChatCompletionRequest, error) {
	var req ChatCompletionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parsing chat request: %w", err)
	}
	return &req, nil
}

// ExtractUserContent extracts the text of all user-role messages, joined
// with newlines. System and assistant turns are not scanned.
func ExtractUserContent(req *ChatCompletionRequest) string {
	var parts []string
	for _, msg := range req.Messages {
		if msg.Role != "user" {
			continue
		}
		if msg.Content != "" {
			parts = append(parts, msg.Content)
		}
	}
	return strings.Join(parts, "\n")
}

// MakeDenyResponse creates a chat completion response carrying a refusal
// message and the scan report.
func MakeDenyResponse(message, model string, report *Report) *ChatCompletionResponse {
	return &ChatCompletionResponse{
		ID:      "shrike-deny",
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Shrike:  report,
		Choices: []ChatChoice{
			{
				Index: 0,
				Message: ChatMessage{
					Role:    "assistant",
					Content: message,
				},
				FinishReason: "stop",
			},
		},
	}
}
