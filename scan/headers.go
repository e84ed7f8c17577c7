package scan

import (
	"github.com/google/uuid"

	"github.com/Shrike-Security/shrike-guard-go/config"
)

// Version is the SDK version reported to the backend.
const Version = "0.4.0"

// Headers builds the HTTP headers for a scan request. When requestID is
// empty a fresh UUID is generated, so every round trip is traceable.
func Headers(apiKey, requestID string) map[string]string {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return map[string]string{
		"Authorization":        "Bearer " + apiKey,
		"Content-Type":         "application/json",
		"X-Shrike-SDK":         config.SDKName,
		"X-Shrike-SDK-Version": Version,
		"X-Shrike-Request-ID":  requestID,
	}
}
