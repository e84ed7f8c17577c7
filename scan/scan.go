// Package scan implements the HTTP transport for the Shrike scan backend.
//
// A Client performs one network round trip per scan and classifies every
// failure into a TransportError before it reaches callers. All methods take
// a context; a blocking call site passes context.Background(), a cooperative
// one passes its own context, so the round trip is expressed exactly once.
package scan

// Kind identifies what sort of artifact a Request carries.
type Kind string

const (
	KindPrompt      Kind = "prompt"
	KindSQL         Kind = "sql"
	KindFilePath    Kind = "file_path"
	KindFileContent Kind = "file_content"
)

// Request is a single scannable artifact. It is immutable once constructed;
// the transport never mutates it.
type Request struct {
	// Text is the primary content to scan: the prompt, the SQL query, or
	// the file path.
	Text string

	// Kind selects the backend scan route and content type.
	Kind Kind

	// Metadata carries kind-specific context. Recognized keys:
	// "context" (prompt conversation context), "database" and
	// "allow_destructive" (SQL), "file_content" (file scans).
	Metadata map[string]string
}

// Meta returns the metadata value for key, or "" when absent.
func (r Request) Meta(key string) string {
	if r.Metadata == nil {
		return ""
	}
	return r.Metadata[key]
}
