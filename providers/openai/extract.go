package openai

import (
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/Shrike-Security/shrike-guard-go/scan"
)

// extractUserContent collects the text of all user messages, including text
// parts of multimodal content, joined with newlines.
func extractUserContent(messages []goopenai.ChatCompletionMessage) string {
	var parts []string
	for _, msg := range messages {
		if msg.Role != goopenai.ChatMessageRoleUser {
			continue
		}
		if msg.Content != "" {
			parts = append(parts, msg.Content)
		}
		for _, part := range msg.MultiContent {
			if part.Type == goopenai.ChatMessagePartTypeText && part.Text != "" {
				parts = append(parts, part.Text)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// scannableMessages builds the scan requests for a chat call: all user
// content combined into one prompt scan. No user content means nothing to
// scan and no network round trip.
func scannableMessages(messages []goopenai.ChatCompletionMessage) []scan.Request {
	content := extractUserContent(messages)
	if strings.TrimSpace(content) == "" {
		return nil
	}
	return []scan.Request{{Text: content, Kind: scan.KindPrompt}}
}
