package duraclient

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/arkareza/duraclient/store/file"
)

func validTestOptions(t *testing.T) []Option {
	t.Helper()
	st, err := file.New(file.Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	return []Option{
		WithBaseURL("https://api.example.com"),
		WithStore(st),
	}
}

func newValidClient(t *testing.T, extra ...Option) *Client {
	t.Helper()
	c := New(append(validTestOptions(t), extra...)...)
	if !c.IsValid() {
		t.Fatalf("expected valid client, got %v", c.ValidationError())
	}
	t.Cleanup(c.Close)
	return c
}

func TestNewAppliesDefaults(t *testing.T) {
	c := newValidClient(t)

	if c.config.RetryAttempts != 3 {
		t.Errorf("RetryAttempts = %d, want default 3", c.config.RetryAttempts)
	}
	if c.config.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want default 5m", c.config.CacheTTL)
	}
	if c.config.CircuitFailureThreshold != 5 {
		t.Errorf("CircuitFailureThreshold = %d, want default 5", c.config.CircuitFailureThreshold)
	}
	if c.httpClient == nil {
		t.Error("httpClient must be constructed by default")
	}
	if c.cache == nil || c.queue == nil || c.breakers == nil || c.retry == nil {
		t.Error("Expected all pipeline components to be constructed")
	}
}

func TestOptionsWriteIntoConfig(t *testing.T) {
	c := newValidClient(t,
		WithBaseURL("https://api.example.com/"),
		WithResourcePath("/users/"),
		WithNamespace("app"),
		WithConnectionTimeout(3*time.Second),
		WithRetryAttempts(7),
		WithRetryBaseDelay(50*time.Millisecond),
		WithRetryMaxDelay(2*time.Second),
		WithBackoffMultiplier(3),
		WithJitter(0.5),
		WithCacheTTL(time.Minute),
		WithCompressionThreshold(2048),
		WithStorageQuota(1<<20),
		WithSweepInterval(10*time.Second),
	)

	if c.config.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", c.config.BaseURL)
	}
	if c.config.ResourcePath != "users" {
		t.Errorf("ResourcePath = %q, want slashes trimmed", c.config.ResourcePath)
	}
	if c.config.Namespace != "app" {
		t.Errorf("Namespace = %q", c.config.Namespace)
	}
	if c.config.ConnectionTimeout != 3*time.Second || c.httpClient.Timeout != 3*time.Second {
		t.Error("ConnectionTimeout must propagate to the HTTP client")
	}
	if c.config.RetryAttempts != 7 || c.config.RetryBaseDelay != 50*time.Millisecond {
		t.Error("Retry options not applied")
	}
	if c.config.BackoffMultiplier != 3 || c.config.Jitter != 0.5 {
		t.Error("Backoff options not applied")
	}
	if c.config.CacheTTL != time.Minute || c.config.CompressionThreshold != 2048 {
		t.Error("Cache options not applied")
	}
	if c.config.StorageQuotaBytes != 1<<20 || c.config.SweepInterval != 10*time.Second {
		t.Error("Storage options not applied")
	}
}

func TestWithJitterClamped(t *testing.T) {
	c := newValidClient(t, WithJitter(2.5))
	if c.config.Jitter != 1 {
		t.Errorf("Jitter = %v, want clamped to 1", c.config.Jitter)
	}

	c2 := newValidClient(t, WithJitter(-0.3))
	if c2.config.Jitter != 0 {
		t.Errorf("Jitter = %v, want clamped to 0", c2.config.Jitter)
	}
}

func TestWithCircuitBreaker(t *testing.T) {
	c := newValidClient(t, WithCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 9,
		RecoveryTimeout:  time.Minute,
		SuccessThreshold: 4,
	}))

	if c.config.CircuitFailureThreshold != 9 {
		t.Errorf("CircuitFailureThreshold = %d, want 9", c.config.CircuitFailureThreshold)
	}
	if c.config.CircuitCooldown != time.Minute {
		t.Errorf("CircuitCooldown = %v, want 1m", c.config.CircuitCooldown)
	}
	if c.config.CircuitSuccessThreshold != 4 {
		t.Errorf("CircuitSuccessThreshold = %d, want 4", c.config.CircuitSuccessThreshold)
	}
}

func TestWithBreakerKeyFuncOrderIndependent(t *testing.T) {
	c := newValidClient(t,
		WithBreakerKeyFunc(func(req *Request) string { return "all" }),
		WithCircuitBreaker(CircuitBreakerConfig{
			FailureThreshold: 2,
			RecoveryTimeout:  time.Hour,
			SuccessThreshold: 1,
		}),
	)

	cb, family := c.breakers.GetBreaker(&Request{Method: http.MethodGet, Path: "/x"})
	if family != "all" {
		t.Errorf("family = %q, want the custom key func applied", family)
	}

	// Thresholds set after the key func must still take effect.
	cb.RecordFailure()
	if cb.State() != StateClosed {
		t.Fatal("one failure must not open the breaker")
	}
	cb.RecordFailure()
	if cb.State() != StateOpen {
		t.Error("two failures must open a breaker with threshold 2")
	}
}

func TestWithHTTPClient(t *testing.T) {
	custom := &http.Client{}
	c := newValidClient(t, WithHTTPClient(custom))

	if c.httpClient != custom {
		t.Error("Custom HTTP client not installed")
	}
	if custom.Timeout != c.config.ConnectionTimeout {
		t.Error("Connection timeout must be applied to the custom client")
	}
}

func TestValidationRejectsMissingBaseURL(t *testing.T) {
	st, err := file.New(file.Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("file store: %v", err)
	}

	c := New(WithStore(st))
	if c.IsValid() {
		t.Fatal("Expected invalid client without a base URL")
	}
	if !strings.Contains(c.ValidationError().Error(), "baseURL") {
		t.Errorf("ValidationError = %v, want baseURL mentioned", c.ValidationError())
	}
}

func TestValidationRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
		want string
	}{
		{"scheme", WithBaseURL("ftp://files.example.com"), "http"},
		{"retry attempts", WithRetryAttempts(0), "retryAttempts"},
		{"base delay", WithRetryBaseDelay(-time.Second), "retryBaseDelay"},
		{"max below base", WithRetryMaxDelay(time.Nanosecond), "retryMaxDelay"},
		{"multiplier", WithBackoffMultiplier(0.5), "backoffMultiplier"},
		{"cache ttl", WithCacheTTL(-time.Minute), "cacheTTL"},
		{"quota", WithStorageQuota(-1), "storageQuotaBytes"},
		{"sweep", WithSweepInterval(-time.Second), "sweepInterval"},
		{"timeout", WithConnectionTimeout(-time.Second), "connectionTimeout"},
		{"breaker", WithCircuitBreaker(CircuitBreakerConfig{FailureThreshold: -1, RecoveryTimeout: time.Second, SuccessThreshold: 1}), "circuitFailureThreshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(append(validTestOptions(t), tt.opt)...)
			if c.IsValid() {
				t.Fatal("Expected invalid configuration")
			}
			if !strings.Contains(c.ValidationError().Error(), tt.want) {
				t.Errorf("ValidationError = %v, want %q mentioned", c.ValidationError(), tt.want)
			}
		})
	}
}

func TestValidationErrorIsClientError(t *testing.T) {
	c := New(WithRetryAttempts(-1), WithBaseURL("https://x.example.com"))
	if c.IsValid() {
		t.Fatal("Expected invalid configuration")
	}
	clientErr, ok := c.ValidationError().(*ClientError)
	if !ok {
		t.Fatalf("ValidationError type = %T, want *ClientError", c.ValidationError())
	}
	if clientErr.Type != ErrorTypeValidation {
		t.Errorf("Type = %q, want %q", clientErr.Type, ErrorTypeValidation)
	}
}

func TestWithDebugEnablesAllAreas(t *testing.T) {
	c := newValidClient(t, WithDebug())

	if !c.debug.Enabled {
		t.Error("WithDebug must enable debug logging")
	}
	if !c.debug.LogRequests || !c.debug.LogCache {
		t.Error("Areas must stay on by default")
	}
}

func TestWithRateLimiter(t *testing.T) {
	c := newValidClient(t, WithRateLimiter(10, time.Second))

	if c.rateLimiter == nil {
		t.Fatal("Rate limiter not installed")
	}
	if c.rateLimiter.Tokens() != 10 {
		t.Errorf("Tokens = %d, want 10", c.rateLimiter.Tokens())
	}
}

func TestWithCredential(t *testing.T) {
	c := newValidClient(t, WithCredential("tok-123"))

	c.credMu.RLock()
	defer c.credMu.RUnlock()
	if c.credential != "tok-123" {
		t.Errorf("credential = %q", c.credential)
	}
}
