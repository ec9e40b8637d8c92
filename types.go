package duraclient

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Config is the complete, explicit configuration of a Client. Functional
// options write into it; it is validated once at construction and never
// mutated afterwards.
type Config struct {
	// BaseURL is the root of the remote API, e.g. "https://api.example.com".
	BaseURL string

	// ResourcePath is the path segment for resource fetch / preference
	// endpoints, e.g. "users" for GET /users/{id}.
	ResourcePath string

	// Namespace prefixes all durable cache keys owned by this client.
	Namespace string

	// ConnectionTimeout bounds every outbound call, including health probes.
	ConnectionTimeout time.Duration

	// Retry controls.
	RetryAttempts     int
	RetryBaseDelay    time.Duration
	RetryMaxDelay     time.Duration
	BackoffMultiplier float64
	Jitter            float64

	// Cache controls.
	CacheTTL             time.Duration
	CompressionThreshold int
	StorageQuotaBytes    int64
	SweepInterval        time.Duration

	// Circuit breaker controls.
	CircuitFailureThreshold int
	CircuitCooldown         time.Duration
	CircuitSuccessThreshold int
}

// DefaultConfig returns the configuration New starts from before options run.
func DefaultConfig() Config {
	return Config{
		ResourcePath:            "resources",
		Namespace:               "duraclient",
		ConnectionTimeout:       10 * time.Second,
		RetryAttempts:           3,
		RetryBaseDelay:          100 * time.Millisecond,
		RetryMaxDelay:           10 * time.Second,
		BackoffMultiplier:       2.0,
		Jitter:                  0.1,
		CacheTTL:                5 * time.Minute,
		CompressionThreshold:    1024,
		StorageQuotaBytes:       50 * 1024 * 1024,
		SweepInterval:           time.Minute,
		CircuitFailureThreshold: 5,
		CircuitCooldown:         60 * time.Second,
		CircuitSuccessThreshold: 2,
	}
}

// ConnectivityProbe reports whether the host currently has network
// connectivity. Injected so the client is testable with fakes and portable
// across hosts; when nil the client assumes it is online until told otherwise.
type ConnectivityProbe interface {
	Online() bool
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	FailureThreshold int
	RecoveryTimeout  time.Duration
	SuccessThreshold int
}

// CircuitState represents the state of the circuit breaker
type CircuitState int64

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

// String returns the lowercase state name used in logs and metrics.
func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Request is the canonical description of one API call. Its signature (method,
// path, body) keys both deduplication and breaker-family lookup.
type Request struct {
	Method string
	Path   string
	Body   []byte
	Header http.Header

	// IdempotencyKey, when set, is attached as X-Idempotency-Key so a replay
	// the server already recorded is not double-applied.
	IdempotencyKey string
}

// Result is the settled outcome of an API call. Stale marks a value served
// from cache after the network path failed; FromCache marks any cache-served
// value, fresh or stale.
type Result struct {
	StatusCode int
	Body       []byte
	Header     http.Header
	Stale      bool
	FromCache  bool
}

// Identity is an authenticated or locally synthesized principal. IsLocal
// identities are created while offline and reconciled on reconnect.
type Identity struct {
	ID        string    `json:"id" msgpack:"id"`
	IsLocal   bool      `json:"isLocal" msgpack:"isLocal"`
	CreatedAt time.Time `json:"createdAt" msgpack:"createdAt"`
}

// ConnectionStats is the observability snapshot exposed to collaborators.
type ConnectionStats struct {
	CircuitState    CircuitState
	CircuitFamilies map[string]CircuitState
	QueueSize       int
	Online          bool
	Config          Config
}

// HealthStatus is the outcome of a connection test.
type HealthStatus struct {
	Healthy bool
	Latency time.Duration
	Status  int
}

// Option represents a configuration option
type Option func(*Client)

// KeyFunc derives a guarded-operation-family key from a request, used by the
// breaker registry to scope failure tracking per host or endpoint group.
type KeyFunc func(req *Request) string

func defaultRequestID() string {
	return uuid.NewString()
}
