package duraclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/arkareza/duraclient/codec"
	"github.com/arkareza/duraclient/internal/singleflight"
	"github.com/arkareza/duraclient/store"
	bcstore "github.com/arkareza/duraclient/store/bigcache"
)

// Client is the public entry point: it composes deduplication, bounded
// retries, circuit breaking, the persistent cache and the offline sync queue
// around an HTTP transport. It is safe for concurrent use.
type Client struct {
	config     Config
	httpClient *http.Client

	probe  ConnectivityProbe
	online int32

	breakers       *BreakerRegistry
	breakerKeyFunc KeyFunc
	retry          *RetryController
	dedup          *DeduplicationTracker
	dedupKeyFunc   DeduplicationKeyFunc
	dedupCondition DeduplicationCondition
	rateLimiter    *RateLimiter

	store    store.Store
	ownStore bool
	cache    *PersistentCache[[]byte]
	queue    *OfflineSyncQueue

	revalidate *singleflight.Group

	metrics *MetricsCollector
	logger  Logger
	debug   *DebugConfig

	credMu     sync.RWMutex
	credential string

	validationError error
	closeOnce       sync.Once
}

// New constructs a Client using the provided functional options. A best
// effort validation is performed; call IsValid / ValidationError for errors.
// Without WithStore, a process-local bigcache store backs the cache and queue:
// functional, but not durable across restarts.
func New(options ...Option) *Client {
	client := &Client{
		config:         DefaultConfig(),
		online:         1,
		dedup:          NewDeduplicationTracker(),
		dedupKeyFunc:   DefaultDeduplicationKeyFunc,
		dedupCondition: DefaultDeduplicationCondition,
		revalidate:     singleflight.New(),
		logger:         NopLogger{},
		debug:          DefaultDebugConfig(),
	}

	for _, option := range options {
		option(client)
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: client.config.ConnectionTimeout}
	}

	if client.store == nil {
		st, err := bcstore.New(bcstore.Config{LifeWindow: 24 * time.Hour})
		if err != nil {
			client.validationError = fmt.Errorf("duraclient: default store: %w", err)
			return client
		}
		client.store = st
		client.ownStore = true
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
		return client
	}

	keyFunc := client.breakerKeyFunc
	if keyFunc == nil {
		keyFunc = DefaultFamilyKeyFunc
	}
	client.breakers = NewBreakerRegistry(keyFunc, CircuitBreakerConfig{
		FailureThreshold: client.config.CircuitFailureThreshold,
		RecoveryTimeout:  client.config.CircuitCooldown,
		SuccessThreshold: client.config.CircuitSuccessThreshold,
	})

	client.retry = NewRetryController(RetryPolicy{
		MaxAttempts: client.config.RetryAttempts,
		BaseDelay:   client.config.RetryBaseDelay,
		MaxDelay:    client.config.RetryMaxDelay,
		Multiplier:  client.config.BackoffMultiplier,
		Jitter:      client.config.Jitter,
	}, client.logger, client.debug, client.metrics)

	cache, err := NewPersistentCache(CacheOptions[[]byte]{
		Namespace:            client.config.Namespace,
		Store:                client.store,
		Codec:                codec.Bytes{},
		DefaultTTL:           client.config.CacheTTL,
		CompressionThreshold: client.config.CompressionThreshold,
		QuotaBytes:           client.config.StorageQuotaBytes,
		Logger:               client.logger,
		Metrics:              client.metrics,
	})
	if err != nil {
		client.validationError = err
		return client
	}
	client.cache = cache
	client.cache.StartSweeper(client.config.SweepInterval)

	client.queue = NewOfflineSyncQueue(client.config.Namespace, client.store, client.logger, client.metrics)

	return client
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

// Close stops background work. The injected store is closed only if the
// client created it.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if c.cache != nil {
			c.cache.Close()
		}
		if c.ownStore && c.store != nil {
			if err := c.store.Close(context.Background()); err != nil {
				c.logger.Warn("Closing default store failed", "error", err.Error())
			}
		}
	})
}

// SetCredential installs the bearer credential attached to authenticated
// calls. An empty credential omits the Authorization header entirely.
func (c *Client) SetCredential(token string) {
	c.credMu.Lock()
	c.credential = token
	c.credMu.Unlock()
}

// Online reports current connectivity: the injected probe when present,
// otherwise the last Notify* signal (initially online).
func (c *Client) Online() bool {
	if c.probe != nil {
		return c.probe.Online()
	}
	return atomic.LoadInt32(&c.online) == 1
}

// NotifyOnline records a connectivity-restored signal and flushes the
// offline sync queue in the background.
func (c *Client) NotifyOnline() {
	atomic.StoreInt32(&c.online, 1)
	if c.debug != nil && c.debug.Enabled && c.debug.LogQueue {
		c.logger.Info("Connectivity restored, flushing sync queue")
	}
	go func() {
		if _, err := c.FlushQueue(context.Background()); err != nil {
			c.logger.Warn("Background queue flush failed", "error", err.Error())
		}
	}()
}

// NotifyOffline records a connectivity-lost signal; network attempts are
// suspended until the next NotifyOnline.
func (c *Client) NotifyOffline() {
	atomic.StoreInt32(&c.online, 0)
}

// CheckHealth is a lightweight probe of GET /health: not retried, not
// deduplicated, not recorded by the circuit breaker, so monitoring cannot
// mutate reliability state.
func (c *Client) CheckHealth(ctx context.Context) error {
	if c.validationError != nil {
		return c.validationError
	}
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.classifyTransportError(err, "/health", "")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return &ClientError{
			Type:       classifyStatus(resp.StatusCode),
			Message:    "health check failed",
			StatusCode: resp.StatusCode,
			Endpoint:   "/health",
			Timestamp:  time.Now(),
		}
	}
	return nil
}

// TestConnection measures round-trip latency to the health endpoint.
func (c *Client) TestConnection(ctx context.Context) HealthStatus {
	start := time.Now()
	err := c.CheckHealth(ctx)
	status := HealthStatus{
		Healthy: err == nil,
		Latency: time.Since(start),
	}
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		status.Status = clientErr.StatusCode
	} else if err == nil {
		status.Status = http.StatusOK
	}
	return status
}

// GetResource fetches one resource by id: network-first with the persistent
// cache as offline / exhausted-retries fallback.
func (c *Client) GetResource(ctx context.Context, id string) (*Result, error) {
	req := &Request{
		Method: http.MethodGet,
		Path:   "/" + c.config.ResourcePath + "/" + id,
	}
	return c.AuthenticatedCall(ctx, req)
}

// UpdatePreferences replaces the preferences of one resource. Offline or
// after exhausted retries the mutation is queued durably for replay.
func (c *Client) UpdatePreferences(ctx context.Context, id string, prefs interface{}) (*Result, error) {
	body, err := json.Marshal(prefs)
	if err != nil {
		return nil, &ClientError{
			Type:      ErrorTypeValidation,
			Message:   "preferences are not serializable",
			Cause:     err,
			Timestamp: time.Now(),
		}
	}
	req := &Request{
		Method: http.MethodPut,
		Path:   "/" + c.config.ResourcePath + "/" + id + "/preferences",
		Body:   body,
	}
	res, err := c.AuthenticatedCall(ctx, req)
	if err == nil && c.cache != nil {
		// The cached representation is out of date either way.
		_ = c.cache.Invalidate(ctx, "resource:"+id)
	}
	return res, err
}

// CreateAnonymousIdentity creates a remote anonymous identity, or, absent
// connectivity or after exhausted retries, synthesizes a locally scoped one
// (IsLocal=true, id "local_…") and queues its creation for reconciliation.
// It never fails outright for transient reasons.
func (c *Client) CreateAnonymousIdentity(ctx context.Context) (*Identity, error) {
	if c.validationError != nil {
		return nil, c.validationError
	}
	req := &Request{
		Method:         http.MethodPost,
		Path:           "/auth/anonymous",
		IdempotencyKey: uuid.NewString(),
	}

	// The generic dispatch path would queue the bare POST on failure; identity
	// creation instead queues its own reconciliation item carrying the local
	// identity, so the network attempt runs directly.
	if c.Online() {
		cb, family := c.breakers.GetBreaker(req)
		var res *Result
		err := c.retry.Do(ctx, cb, req.Path, func(ctx context.Context) error {
			var opErr error
			res, opErr = c.execute(ctx, req, "")
			return opErr
		})
		c.metrics.RecordCircuitBreakerState(family, cb.State())

		if err == nil && res.StatusCode < 300 {
			var identity Identity
			if jerr := json.Unmarshal(res.Body, &identity); jerr == nil && identity.ID != "" {
				if identity.CreatedAt.IsZero() {
					identity.CreatedAt = time.Now()
				}
				c.cacheIdentity(ctx, &identity)
				return &identity, nil
			}
		}

		// Only a definitive rejection is surfaced; everything else degrades
		// to a local identity.
		var clientErr *ClientError
		if errors.As(err, &clientErr) && clientErr.Type == ErrorTypeAuthentication {
			return nil, err
		}
	}

	identity := &Identity{
		ID:        "local_" + uuid.NewString(),
		IsLocal:   true,
		CreatedAt: time.Now(),
	}
	payload, _ := json.Marshal(identity)
	if c.queue != nil {
		qerr := c.queue.Enqueue(ctx, &SyncQueueItem{
			Operation:      OpCreate,
			Path:           "/auth/anonymous",
			Payload:        payload,
			IdempotencyKey: req.IdempotencyKey,
		})
		if qerr != nil {
			c.logger.Warn("Failed to queue identity reconciliation", "error", qerr.Error())
		}
	}
	c.cacheIdentity(ctx, identity)
	if c.metrics != nil {
		c.metrics.RecordOfflineFallback("local_identity")
	}
	c.logger.Info("Synthesized local identity", "id", identity.ID)
	return identity, nil
}

func (c *Client) cacheIdentity(ctx context.Context, identity *Identity) {
	if c.cache == nil {
		return
	}
	if blob, err := json.Marshal(identity); err == nil {
		_ = c.cache.Set(ctx, "identity:"+identity.ID, blob, 0)
	}
}

// AuthenticatedCall executes one API call through the full pipeline:
// deduplication by canonical request signature, then bounded retries through
// the operation family's circuit breaker. Read failures fall back to the
// cache with a staleness flag; write failures degrade to the offline queue.
func (c *Client) AuthenticatedCall(ctx context.Context, req *Request) (*Result, error) {
	if c.validationError != nil {
		return nil, c.validationError
	}
	start := time.Now()
	endpoint := req.Path

	var requestID string
	if c.debug != nil && c.debug.Enabled && c.debug.RequestIDGen != nil {
		requestID = c.debug.RequestIDGen()
	}
	if c.debug != nil && c.debug.Enabled && c.debug.LogRequests {
		c.logger.Debug("Starting request", "requestID", requestID, "method", req.Method, "endpoint", endpoint)
	}

	c.metrics.RecordRequestStart(req.Method, endpoint)
	defer c.metrics.RecordRequestEnd(req.Method, endpoint)

	dedupEnabled := c.dedup != nil && c.dedupCondition(req)
	if dedupEnabled {
		dedupKey := c.dedupKeyFunc(req)
		entry, owner := c.dedup.GetOrCreateEntry(dedupKey)
		if !owner {
			res, err := entry.Wait(ctx)
			c.metrics.RecordDeduplicationHit(endpoint)
			if c.debug != nil && c.debug.Enabled {
				c.logger.Debug("Deduplication hit", "requestID", requestID, "dedupKey", dedupKey)
			}
			return res, err
		}

		res, err := c.dispatch(ctx, req, requestID, start)
		c.dedup.Complete(dedupKey, res, err)
		return res, err
	}

	return c.dispatch(ctx, req, requestID, start)
}

// dispatch routes one owned request: offline short-circuit, then the
// retry/breaker network path, then local fallbacks.
func (c *Client) dispatch(ctx context.Context, req *Request, requestID string, start time.Time) (*Result, error) {
	endpoint := req.Path
	cacheKey := c.cacheKeyFor(req)

	if !c.Online() {
		// No connectivity: skip the network entirely, no retry delay burned.
		return c.resolveOffline(ctx, req, cacheKey, requestID)
	}

	if c.rateLimiter != nil && !c.rateLimiter.Allow() {
		if c.debug != nil && c.debug.Enabled && c.debug.LogRateLimit {
			c.logger.Warn("Rate limit exceeded", "requestID", requestID, "endpoint", endpoint)
		}
		c.metrics.RecordError(ErrorTypeRateLimit, endpoint)
		return nil, c.newClientError(ErrorTypeRateLimit, "rate limit exceeded", nil, requestID, req, time.Since(start))
	}
	if c.rateLimiter != nil {
		c.metrics.RecordRateLimiterTokens("default", c.rateLimiter.Tokens())
	}

	cb, family := c.breakers.GetBreaker(req)

	var res *Result
	err := c.retry.Do(ctx, cb, endpoint, func(ctx context.Context) error {
		var opErr error
		res, opErr = c.execute(ctx, req, requestID)
		return opErr
	})
	c.metrics.RecordCircuitBreakerState(family, cb.State())

	duration := time.Since(start)
	if err == nil {
		c.metrics.RecordRequest(req.Method, endpoint, res.StatusCode, duration)
		c.storeResult(ctx, req, cacheKey, res, requestID)
		return res, nil
	}

	statusCode := 0
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		statusCode = clientErr.StatusCode
		c.metrics.RecordError(clientErr.Type, endpoint)
	}
	c.metrics.RecordRequest(req.Method, endpoint, statusCode, duration)

	return c.degrade(ctx, req, cacheKey, requestID, err)
}

// resolveOffline serves a call without touching the network: cache for reads,
// the sync queue for writes.
func (c *Client) resolveOffline(ctx context.Context, req *Request, cacheKey, requestID string) (*Result, error) {
	if isReadMethod(req.Method) {
		if res, ok := c.fromCache(ctx, req, cacheKey, true); ok {
			if c.debug != nil && c.debug.Enabled && c.debug.LogCache {
				c.logger.Debug("Offline cache hit", "requestID", requestID, "cacheKey", cacheKey)
			}
			c.metrics.RecordOfflineFallback("stale_cache")
			return res, nil
		}
		c.metrics.RecordCacheMiss(req.Path)
		return nil, &ClientError{
			Type:      ErrorTypeNetwork,
			Message:   "offline and nothing cached for this request",
			Cause:     ErrOffline,
			Method:    req.Method,
			Endpoint:  req.Path,
			RequestID: requestID,
			Timestamp: time.Now(),
		}
	}

	if err := c.enqueueMutation(ctx, req); err != nil {
		return nil, err
	}
	c.metrics.RecordOfflineFallback("queued_mutation")
	return &Result{StatusCode: http.StatusAccepted}, nil
}

// degrade maps a failed network path to the best local outcome: stale cache
// for reads, the queue for retryable write failures. Non-retryable errors
// (authentication, malformed request) always propagate.
func (c *Client) degrade(ctx context.Context, req *Request, cacheKey, requestID string, cause error) (*Result, error) {
	if !IsRetryable(cause) && !errors.Is(cause, ErrCircuitOpen) {
		return nil, cause
	}

	if isReadMethod(req.Method) {
		if res, ok := c.fromCache(ctx, req, cacheKey, true); ok {
			if c.debug != nil && c.debug.Enabled && c.debug.LogCache {
				c.logger.Debug("Serving stale cache after network failure", "requestID", requestID, "cacheKey", cacheKey)
			}
			c.metrics.RecordOfflineFallback("stale_cache")
			c.scheduleRevalidation(req, cacheKey)
			return res, nil
		}
		return nil, cause
	}

	if err := c.enqueueMutation(ctx, req); err != nil {
		return nil, cause
	}
	c.metrics.RecordOfflineFallback("queued_mutation")
	c.logger.Info("Mutation queued after network failure", "requestID", requestID, "endpoint", req.Path)
	return &Result{StatusCode: http.StatusAccepted}, nil
}

// execute performs one HTTP attempt. Responses with status >= 400 become
// classified errors; transport failures are classified as timeout or network.
func (c *Client) execute(ctx context.Context, req *Request, requestID string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.config.BaseURL+req.Path, body)
	if err != nil {
		return nil, &ClientError{
			Type:      ErrorTypeValidation,
			Message:   "malformed request",
			Cause:     err,
			RequestID: requestID,
			Timestamp: time.Now(),
		}
	}

	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if len(req.Body) > 0 && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("X-Idempotency-Key", req.IdempotencyKey)
	}
	c.credMu.RLock()
	if c.credential != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.credential)
	}
	c.credMu.RUnlock()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.classifyTransportError(err, req.Path, requestID)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classifyTransportError(err, req.Path, requestID)
	}

	if resp.StatusCode >= 400 {
		return nil, &ClientError{
			Type:       classifyStatus(resp.StatusCode),
			Message:    http.StatusText(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Method:     req.Method,
			URL:        httpReq.URL.String(),
			Endpoint:   req.Path,
			RequestID:  requestID,
			Timestamp:  time.Now(),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	return &Result{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Header:     resp.Header.Clone(),
	}, nil
}

// storeResult caches successful read responses, honoring Cache-Control.
func (c *Client) storeResult(ctx context.Context, req *Request, cacheKey string, res *Result, requestID string) {
	if c.cache == nil || cacheKey == "" || !isReadMethod(req.Method) || res.StatusCode >= 400 {
		return
	}
	ttl, ok := cacheTTLFor(res.Header.Get("Cache-Control"), c.config.CacheTTL)
	if !ok {
		return
	}
	if err := c.cache.Set(ctx, cacheKey, res.Body, ttl); err != nil {
		c.logger.Warn("Failed to cache response", "requestID", requestID, "cacheKey", cacheKey, "error", err.Error())
		return
	}
	if c.debug != nil && c.debug.Enabled && c.debug.LogCache {
		c.logger.Debug("Response cached", "requestID", requestID, "cacheKey", cacheKey, "ttl", ttl)
	}
}

func (c *Client) fromCache(ctx context.Context, req *Request, cacheKey string, stale bool) (*Result, bool) {
	if c.cache == nil || cacheKey == "" {
		return nil, false
	}
	body, ok, err := c.cache.Get(ctx, cacheKey)
	if err != nil || !ok {
		return nil, false
	}
	c.metrics.RecordCacheHit(req.Path, stale)
	return &Result{
		StatusCode: http.StatusOK,
		Body:       body,
		FromCache:  true,
		Stale:      stale,
	}, true
}

// scheduleRevalidation fires at most one background refresh per cache key.
// A single non-retried attempt: if the breaker is still rejecting calls the
// probe is dropped silently.
func (c *Client) scheduleRevalidation(req *Request, cacheKey string) {
	if c.cache == nil || cacheKey == "" {
		return
	}
	reqCopy := *req
	go c.revalidate.TryDo(cacheKey, func() (interface{}, error) {
		if !c.Online() {
			return nil, nil
		}
		cb, _ := c.breakers.GetBreaker(&reqCopy)
		if !cb.Allow() {
			return nil, nil
		}
		ctx := context.Background()
		res, err := c.execute(ctx, &reqCopy, "")
		if err != nil {
			cb.RecordFailure()
			return nil, nil
		}
		cb.RecordSuccess()
		c.storeResult(ctx, &reqCopy, cacheKey, res, "")
		return nil, nil
	})
}

// enqueueMutation records a write for later replay.
func (c *Client) enqueueMutation(ctx context.Context, req *Request) error {
	if c.queue == nil {
		return errors.New("duraclient: no sync queue configured")
	}
	return c.queue.Enqueue(ctx, &SyncQueueItem{
		Operation:      operationFor(req.Method),
		Path:           req.Path,
		Payload:        req.Body,
		IdempotencyKey: req.IdempotencyKey,
	})
}

// FlushQueue replays queued mutations strictly FIFO. A conflict response
// means the server already recorded the idempotency key and counts as
// success. Triggered automatically by NotifyOnline; callable directly.
func (c *Client) FlushQueue(ctx context.Context) (FlushResult, error) {
	if c.validationError != nil {
		return FlushResult{}, c.validationError
	}
	if !c.Online() {
		return FlushResult{}, ErrOffline
	}

	return c.queue.Flush(ctx, func(ctx context.Context, item *SyncQueueItem) error {
		req := &Request{
			Method:         methodFor(item.Operation),
			Path:           item.Path,
			Body:           item.Payload,
			IdempotencyKey: item.IdempotencyKey,
		}
		_, err := c.execute(ctx, req, "")
		var clientErr *ClientError
		if errors.As(err, &clientErr) && clientErr.StatusCode == http.StatusConflict {
			// Replay of an already-applied mutation.
			return nil
		}
		return err
	})
}

// ConnectionStats snapshots circuit state, queue depth and configuration.
func (c *Client) ConnectionStats(ctx context.Context) ConnectionStats {
	stats := ConnectionStats{
		CircuitState: StateClosed,
		Online:       c.Online(),
		Config:       c.config,
	}
	if c.breakers != nil {
		stats.CircuitFamilies = c.breakers.States()
		for _, state := range stats.CircuitFamilies {
			switch state {
			case StateOpen:
				stats.CircuitState = StateOpen
			case StateHalfOpen:
				if stats.CircuitState != StateOpen {
					stats.CircuitState = StateHalfOpen
				}
			}
		}
	}
	if c.queue != nil {
		if n, err := c.queue.Size(ctx); err == nil {
			stats.QueueSize = n
		}
	}
	return stats
}

// StorageStats reports durable usage against the configured quota.
func (c *Client) StorageStats(ctx context.Context) (StorageStats, error) {
	if c.cache == nil {
		return StorageStats{}, errors.New("duraclient: no cache configured")
	}
	return c.cache.StorageStats(ctx)
}

// Cache exposes the persistent cache for collaborators that need direct
// backup/restore or invalidation access.
func (c *Client) Cache() *PersistentCache[[]byte] {
	return c.cache
}

// Queue exposes the offline sync queue for observability.
func (c *Client) Queue() *OfflineSyncQueue {
	return c.queue
}

func (c *Client) cacheKeyFor(req *Request) string {
	if !isReadMethod(req.Method) {
		return ""
	}
	prefix := "/" + c.config.ResourcePath + "/"
	if strings.HasPrefix(req.Path, prefix) && !strings.Contains(strings.TrimPrefix(req.Path, prefix), "/") {
		return "resource:" + strings.TrimPrefix(req.Path, prefix)
	}
	return "response:" + c.dedupKeyFunc(req)
}

func (c *Client) classifyTransportError(err error, endpoint, requestID string) *ClientError {
	errType := ErrorTypeNetwork
	msg := "network request failed"
	if errors.Is(err, context.DeadlineExceeded) {
		errType = ErrorTypeTimeout
		msg = "request timed out"
	}
	return &ClientError{
		Type:      errType,
		Message:   msg,
		Cause:     err,
		Endpoint:  endpoint,
		RequestID: requestID,
		Timestamp: time.Now(),
	}
}

func (c *Client) newClientError(errorType, message string, cause error, requestID string, req *Request, duration time.Duration) *ClientError {
	return &ClientError{
		Type:       errorType,
		Message:    message,
		Cause:      cause,
		RequestID:  requestID,
		Method:     req.Method,
		URL:        c.config.BaseURL + req.Path,
		Endpoint:   req.Path,
		MaxRetries: c.config.RetryAttempts,
		Timestamp:  time.Now(),
		Duration:   duration,
	}
}

func isReadMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

func operationFor(method string) SyncOperation {
	switch method {
	case http.MethodPost:
		return OpCreate
	case http.MethodDelete:
		return OpDelete
	default:
		return OpUpdate
	}
}

func methodFor(op SyncOperation) string {
	switch op {
	case OpCreate:
		return http.MethodPost
	case OpDelete:
		return http.MethodDelete
	default:
		return http.MethodPut
	}
}
