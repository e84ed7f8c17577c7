package scan

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a transport failure.
type ErrorKind string

const (
	// ErrorNetwork covers connection refusals, DNS failures, and other
	// I/O errors before a response arrives.
	ErrorNetwork ErrorKind = "network"
	// ErrorTimeout means no response arrived within the scan timeout.
	ErrorTimeout ErrorKind = "timeout"
	// ErrorProtocol means the backend responded with something the SDK
	// cannot interpret: an error status or a malformed body.
	ErrorProtocol ErrorKind = "protocol"
)

// TransportError is the only error type the transport returns. It is never
// surfaced to applications directly; the guard wraps it in a ScanError when
// fail mode requires one.
type TransportError struct {
	Kind ErrorKind
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("scan transport (%s): %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a scan timeout.
func (e *TransportError) Timeout() bool {
	return e.Kind == ErrorTimeout
}

// classify wraps an error from the HTTP round trip into a TransportError,
// distinguishing timeouts from other network failures.
func classify(err error) *TransportError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Kind: ErrorTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Kind: ErrorTimeout, Err: err}
	}
	return &TransportError{Kind: ErrorNetwork, Err: err}
}

func protocolError(format string, args ...any) *TransportError {
	return &TransportError{Kind: ErrorProtocol, Err: fmt.Errorf(format, args...)}
}
