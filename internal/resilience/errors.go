package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// TransientError wraps an error that is safe to retry (429, 5xx, network
// timeout) with an optional HTTP status code.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps an error as transient with an optional HTTP status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// IsTransient returns true if the error (or any error in its chain) is a
// TransientError, or if it matches common transient network patterns.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String heuristics for errors wrapped by HTTP clients.
	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTransientHTTPStatus reports whether an HTTP status code indicates a
// transient server-side issue that is safe to retry.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// ErrorClass buckets a failure for user-facing messaging at the chat
// boundary. The presentation layer renders a different hint per class.
type ErrorClass string

const (
	ErrClassNetwork ErrorClass = "network"
	ErrClassTimeout ErrorClass = "timeout"
	ErrClassServer  ErrorClass = "server"
	ErrClassUnknown ErrorClass = "unknown"
)

// Classify assigns an ErrorClass to err. Timeout is checked before the
// generic network bucket because deadline errors also satisfy net.Error.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrClassUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrClassTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrClassTimeout
		}
		return ErrClassNetwork
	}

	var te *TransientError
	if errors.As(err, &te) && te.StatusCode >= 500 {
		return ErrClassServer
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return ErrClassTimeout
	case strings.Contains(msg, "connection") || strings.Contains(msg, "no such host"):
		return ErrClassNetwork
	case strings.Contains(msg, "status 5"):
		return ErrClassServer
	}
	return ErrClassUnknown
}
