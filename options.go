package duraclient

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/arkareza/duraclient/store"
)

// WithBaseURL sets the root of the remote API
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.config.BaseURL = strings.TrimRight(u, "/")
	}
}

// WithResourcePath sets the path segment used by GetResource and
// UpdatePreferences, e.g. "users" for GET /users/{id}
func WithResourcePath(p string) Option {
	return func(c *Client) {
		c.config.ResourcePath = strings.Trim(p, "/")
	}
}

// WithNamespace sets the prefix applied to all durable keys owned by this
// client. Two clients with distinct namespaces never collide in a shared store
func WithNamespace(ns string) Option {
	return func(c *Client) {
		c.config.Namespace = ns
	}
}

// WithConnectionTimeout bounds every outbound call
func WithConnectionTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.config.ConnectionTimeout = d
		if c.httpClient != nil {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetryAttempts sets the maximum number of attempts per call
func WithRetryAttempts(n int) Option {
	return func(c *Client) {
		c.config.RetryAttempts = n
	}
}

// WithRetryBaseDelay sets the first retry delay
func WithRetryBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		c.config.RetryBaseDelay = d
	}
}

// WithRetryMaxDelay caps the computed retry delay
func WithRetryMaxDelay(d time.Duration) Option {
	return func(c *Client) {
		c.config.RetryMaxDelay = d
	}
}

// WithBackoffMultiplier sets the exponential growth factor between delays
func WithBackoffMultiplier(f float64) Option {
	return func(c *Client) {
		c.config.BackoffMultiplier = f
	}
}

// WithJitter sets the jitter factor for backoff (0.0 to 1.0)
func WithJitter(f float64) Option {
	return func(c *Client) {
		if f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}
		c.config.Jitter = f
	}
}

// WithCacheTTL sets the default freshness window for cached responses.
// Cache-Control max-age on a response overrides it per entry
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) {
		c.config.CacheTTL = d
	}
}

// WithCompressionThreshold sets the payload size above which cached values
// are gzip-compressed before hitting the store
func WithCompressionThreshold(bytes int) Option {
	return func(c *Client) {
		c.config.CompressionThreshold = bytes
	}
}

// WithStorageQuota caps total durable cache usage in bytes
func WithStorageQuota(bytes int64) Option {
	return func(c *Client) {
		c.config.StorageQuotaBytes = bytes
	}
}

// WithSweepInterval sets how often expired entries are reclaimed
func WithSweepInterval(d time.Duration) Option {
	return func(c *Client) {
		c.config.SweepInterval = d
	}
}

// WithCircuitBreaker sets the circuit breaker thresholds shared by all
// operation families
func WithCircuitBreaker(config CircuitBreakerConfig) Option {
	return func(c *Client) {
		c.config.CircuitFailureThreshold = config.FailureThreshold
		c.config.CircuitCooldown = config.RecoveryTimeout
		c.config.CircuitSuccessThreshold = config.SuccessThreshold
	}
}

// WithBreakerKeyFunc sets how requests map to breaker families. The default
// splits reads from writes. The registry itself is built once all options
// have run, so ordering relative to WithCircuitBreaker does not matter
func WithBreakerKeyFunc(fn KeyFunc) Option {
	return func(c *Client) {
		c.breakerKeyFunc = fn
	}
}

// WithStore sets the durable store backing the cache and the sync queue.
// The caller owns the store's lifecycle
func WithStore(st store.Store) Option {
	return func(c *Client) {
		c.store = st
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
		if c.config.ConnectionTimeout != 0 {
			c.httpClient.Timeout = c.config.ConnectionTimeout
		}
	}
}

// WithConnectivityProbe injects the host's connectivity signal. Without one,
// NotifyOnline / NotifyOffline drive the online flag
func WithConnectivityProbe(p ConnectivityProbe) Option {
	return func(c *Client) {
		c.probe = p
	}
}

// WithRateLimiter enables client-side rate limiting
func WithRateLimiter(maxTokens int, refillRate time.Duration) Option {
	return func(c *Client) {
		c.rateLimiter = NewRateLimiter(maxTokens, refillRate)
	}
}

// WithCredential sets the initial bearer credential. SetCredential rotates it
func WithCredential(token string) Option {
	return func(c *Client) {
		c.credential = token
	}
}

// WithMetrics enables Prometheus metrics collection
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithLogger sets a custom logger for debug output
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables debug logging with default configuration
func WithDebug() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets custom debug configuration
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		c.debug = config
	}
}

// WithSimpleLogger enables debug logging with a simple console logger
func WithSimpleLogger() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewSimpleLogger()
	}
}

// WithRequestIDGenerator sets a custom function for generating request IDs
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.RequestIDGen = gen
	}
}

// WithDeduplicationKeyFunc sets a custom deduplication key function
func WithDeduplicationKeyFunc(fn DeduplicationKeyFunc) Option {
	return func(c *Client) {
		c.dedupKeyFunc = fn
	}
}

// WithDeduplicationCondition sets a custom deduplication condition function
func WithDeduplicationCondition(fn DeduplicationCondition) Option {
	return func(c *Client) {
		c.dedupCondition = fn
	}
}

// ValidateConfiguration validates the client configuration and returns an
// error if invalid. New calls it once; the result is also cached in
// ValidationError so construction stays infallible at the call site.
func (c *Client) ValidateConfiguration() error {
	var errs []string

	errs = append(errs, c.validateEndpointConfig()...)
	errs = append(errs, c.validateRetryConfig()...)
	errs = append(errs, c.validateCacheConfig()...)
	errs = append(errs, c.validateCircuitBreakerConfig()...)
	errs = append(errs, c.validateRateLimiterConfig()...)
	errs = append(errs, c.validateDebugConfig()...)
	errs = append(errs, c.validateDeduplicationConfig()...)

	if len(errs) > 0 {
		return &ClientError{
			Type:    ErrorTypeValidation,
			Message: "configuration validation failed",
			Cause:   fmt.Errorf("validation errors: %v", errs),
		}
	}

	return nil
}

func (c *Client) validateEndpointConfig() []string {
	var errs []string

	if c.config.BaseURL == "" {
		errs = append(errs, "baseURL must be set")
	} else if !strings.HasPrefix(c.config.BaseURL, "http://") && !strings.HasPrefix(c.config.BaseURL, "https://") {
		errs = append(errs, "baseURL must start with http:// or https://")
	}

	if c.config.ResourcePath == "" {
		errs = append(errs, "resourcePath must be non-empty")
	}

	if c.config.Namespace == "" {
		errs = append(errs, "namespace must be non-empty")
	}

	if c.config.ConnectionTimeout <= 0 {
		errs = append(errs, "connectionTimeout must be positive")
	}

	if c.httpClient == nil {
		errs = append(errs, "HTTP client cannot be nil")
	}

	return errs
}

func (c *Client) validateRetryConfig() []string {
	var errs []string

	if c.config.RetryAttempts < 1 {
		errs = append(errs, "retryAttempts must be at least 1")
	}

	if c.config.RetryBaseDelay <= 0 {
		errs = append(errs, "retryBaseDelay must be positive")
	}

	if c.config.RetryMaxDelay < c.config.RetryBaseDelay {
		errs = append(errs, "retryMaxDelay must be greater than or equal to retryBaseDelay")
	}

	if c.config.BackoffMultiplier <= 1 {
		errs = append(errs, "backoffMultiplier must be greater than 1")
	}

	if c.config.Jitter < 0 || c.config.Jitter > 1 {
		errs = append(errs, "jitter must be between 0 and 1")
	}

	return errs
}

func (c *Client) validateCacheConfig() []string {
	var errs []string

	if c.config.CacheTTL <= 0 {
		errs = append(errs, "cacheTTL must be positive")
	}

	if c.config.CompressionThreshold < 0 {
		errs = append(errs, "compressionThreshold must be non-negative")
	}

	if c.config.StorageQuotaBytes <= 0 {
		errs = append(errs, "storageQuotaBytes must be positive")
	}

	if c.config.SweepInterval <= 0 {
		errs = append(errs, "sweepInterval must be positive")
	}

	if c.store == nil {
		errs = append(errs, "store cannot be nil")
	}

	return errs
}

func (c *Client) validateCircuitBreakerConfig() []string {
	var errs []string

	if c.config.CircuitFailureThreshold <= 0 {
		errs = append(errs, "circuitFailureThreshold must be positive")
	}

	if c.config.CircuitCooldown <= 0 {
		errs = append(errs, "circuitCooldown must be positive")
	}

	if c.config.CircuitSuccessThreshold <= 0 {
		errs = append(errs, "circuitSuccessThreshold must be positive")
	}

	return errs
}

func (c *Client) validateRateLimiterConfig() []string {
	var errs []string

	if c.rateLimiter != nil {
		if c.rateLimiter.maxTokens <= 0 {
			errs = append(errs, "rateLimiter maxTokens must be positive")
		}
		if c.rateLimiter.refillRate <= 0 {
			errs = append(errs, "rateLimiter refillRate must be positive")
		}
	}

	return errs
}

func (c *Client) validateDebugConfig() []string {
	var errs []string

	if c.debug != nil && c.debug.Enabled {
		if c.debug.RequestIDGen == nil {
			errs = append(errs, "debug RequestIDGen must be set when debug is enabled")
		}
		if c.logger == nil {
			errs = append(errs, "logger must be set when debug is enabled")
		}
	}

	return errs
}

func (c *Client) validateDeduplicationConfig() []string {
	var errs []string

	if c.dedupKeyFunc == nil {
		errs = append(errs, "deduplication key function cannot be nil")
	}
	if c.dedupCondition == nil {
		errs = append(errs, "deduplication condition cannot be nil")
	}

	return errs
}
