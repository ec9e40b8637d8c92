package duraclient

import (
	"errors"
	"fmt"
	"time"
)

// Error type labels used in ClientError.Type. They form the error taxonomy of
// the client: retryability and fallback behavior are decided from these.
const (
	ErrorTypeNetwork        = "Network"
	ErrorTypeTimeout        = "Timeout"
	ErrorTypeCircuitOpen    = "CircuitOpen"
	ErrorTypeAuthentication = "Authentication"
	ErrorTypeServer         = "Server"
	ErrorTypeClient         = "Client"
	ErrorTypeQuotaExceeded  = "QuotaExceeded"
	ErrorTypeCorruptEntry   = "CorruptEntry"
	ErrorTypeRateLimit      = "RateLimit"
	ErrorTypeValidation     = "Validation"
)

// Sentinel errors for common failure scenarios
var (
	// ErrCircuitOpen is returned when the circuit breaker is in open state
	ErrCircuitOpen = errors.New("duraclient: circuit open")

	// ErrCacheMiss is returned when a cache lookup fails
	ErrCacheMiss = errors.New("duraclient: cache miss")

	// ErrOffline is returned when a call requires connectivity, none is
	// available, and no cached or local fallback exists
	ErrOffline = errors.New("duraclient: offline and no local fallback")

	// ErrQuotaExceeded is returned when a cache write would exceed the
	// configured storage quota
	ErrQuotaExceeded = errors.New("duraclient: storage quota exceeded")

	// ErrRateLimited is returned when a request is denied due to rate limiting
	ErrRateLimited = errors.New("duraclient: rate limited")
)

// ClientError is the structured error produced by the client. Type carries the
// taxonomy label; Cause the underlying error, if any.
type ClientError struct {
	Type       string
	Message    string
	Cause      error
	RequestID  string
	Method     string
	URL        string
	Attempt    int
	MaxRetries int
	Timestamp  time.Time
	Duration   time.Duration
	StatusCode int
	Endpoint   string

	// RetryAfter carries a server-provided delay hint (Retry-After header)
	// honored by the retry controller in place of computed backoff.
	RetryAfter time.Duration
}

// IsRetryable determines if an error represents a transient failure that might
// succeed on retry. Network errors, timeouts, 5xx responses and rate limiting
// are retryable; authentication and other 4xx client errors (except 429) are
// not. A CircuitOpen error is not retryable from the caller's side: the
// breaker, not the retry loop, decides when the downstream may be probed again.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrCircuitOpen) {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrOffline) {
		return true
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Type {
		case ErrorTypeNetwork, ErrorTypeTimeout, ErrorTypeServer, ErrorTypeRateLimit:
			return true
		case ErrorTypeClient:
			// 429 Too Many Requests is transient
			return clientErr.StatusCode == 429
		default:
			return false
		}
	}

	// Unclassified errors come from the transport and are treated as
	// network-level transient failures.
	return true
}

// Error implements error interface.
func (e *ClientError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var msg string
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Cause)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	if e.Attempt > 0 {
		msg = fmt.Sprintf("%s (attempt %d/%d)", msg, e.Attempt, e.MaxRetries)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ClientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error types for errors.Is.
func (e *ClientError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*ClientError); ok {
		return e.Type == targetErr.Type
	}
	switch target {
	case ErrCircuitOpen:
		return e.Type == ErrorTypeCircuitOpen
	case ErrQuotaExceeded:
		return e.Type == ErrorTypeQuotaExceeded
	case ErrRateLimited:
		return e.Type == ErrorTypeRateLimit
	}
	return false
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *ClientError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Error Type: %s\n", e.Type)
	info += fmt.Sprintf("Message: %s\n", e.Message)
	if e.RequestID != "" {
		info += fmt.Sprintf("Request ID: %s\n", e.RequestID)
	}
	if e.Method != "" {
		info += fmt.Sprintf("Method: %s\n", e.Method)
	}
	if e.URL != "" {
		info += fmt.Sprintf("URL: %s\n", e.URL)
	}
	if e.Endpoint != "" {
		info += fmt.Sprintf("Endpoint: %s\n", e.Endpoint)
	}
	if e.StatusCode > 0 {
		info += fmt.Sprintf("Status Code: %d\n", e.StatusCode)
	}
	if e.Attempt > 0 {
		info += fmt.Sprintf("Attempt: %d/%d\n", e.Attempt, e.MaxRetries)
	}
	if !e.Timestamp.IsZero() {
		info += fmt.Sprintf("Timestamp: %s\n", e.Timestamp.Format(time.RFC3339))
	}
	if e.Duration > 0 {
		info += fmt.Sprintf("Duration: %v\n", e.Duration)
	}
	if e.Cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.Cause)
	}
	return info
}

// classifyStatus maps an HTTP status code to an error type label.
func classifyStatus(status int) string {
	switch {
	case status == 401 || status == 403:
		return ErrorTypeAuthentication
	case status == 429:
		return ErrorTypeRateLimit
	case status >= 500:
		return ErrorTypeServer
	case status >= 400:
		return ErrorTypeClient
	default:
		return ""
	}
}
