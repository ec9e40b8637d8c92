package duraclient

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewMetricsCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewMetricsCollectorWithRegistry(registry)

	if collector == nil {
		t.Fatal("NewMetricsCollectorWithRegistry() returned nil")
	}
	if collector.requestsTotal == nil {
		t.Error("requestsTotal metric not initialized")
	}
	if collector.retriesTotal == nil {
		t.Error("retriesTotal metric not initialized")
	}
	if collector.circuitBreakerState == nil {
		t.Error("circuitBreakerState metric not initialized")
	}
	if collector.cacheHits == nil {
		t.Error("cacheHits metric not initialized")
	}
	if collector.queueDepth == nil {
		t.Error("queueDepth metric not initialized")
	}
	if collector.offlineFallbacks == nil {
		t.Error("offlineFallbacks metric not initialized")
	}
	if collector.errorsTotal == nil {
		t.Error("errorsTotal metric not initialized")
	}
}

func gatherNames(t *testing.T, registry *prometheus.Registry) map[string]bool {
	t.Helper()
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	return names
}

func TestMetricsCollectorRecordsSeries(t *testing.T) {
	registry := prometheus.NewRegistry()
	mc := NewMetricsCollectorWithRegistry(registry)

	mc.RecordRequest("GET", "/users/1", 200, 50*time.Millisecond)
	mc.RecordRetry("/users/1", 2)
	mc.RecordCircuitBreakerState("family:read", StateOpen)
	mc.RecordCacheHit("/users/1", true)
	mc.RecordCacheMiss("/users/1")
	mc.RecordDeduplicationHit("/users/1")
	mc.RecordOfflineFallback("stale_cache")
	mc.RecordError(ErrorTypeNetwork, "/users/1")
	mc.RecordFlush(3, 1)
	mc.RecordQueueDepth(4)

	names := gatherNames(t, registry)
	for _, want := range []string{
		"duraclient_requests_total",
		"duraclient_request_duration_seconds",
		"duraclient_retries_total",
		"duraclient_circuit_breaker_state",
		"duraclient_cache_hits_total",
		"duraclient_cache_misses_total",
		"duraclient_deduplication_hits_total",
		"duraclient_offline_fallbacks_total",
		"duraclient_errors_total",
		"duraclient_sync_flush_synced_total",
		"duraclient_sync_flush_failed_total",
		"duraclient_sync_queue_depth",
	} {
		if !names[want] {
			t.Errorf("Expected metric %q to be gathered", want)
		}
	}
}

func TestMetricsCollectorMetricNamesPrefixed(t *testing.T) {
	registry := prometheus.NewRegistry()
	mc := NewMetricsCollectorWithRegistry(registry)
	mc.RecordRequest("GET", "/x", 200, time.Millisecond)
	mc.RecordQueueDepth(0)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("Expected gathered metrics")
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "duraclient_") {
			t.Errorf("Metric %q missing duraclient_ prefix", mf.GetName())
		}
	}
}

func TestMetricsCollectorNilReceiverSafe(t *testing.T) {
	var mc *MetricsCollector

	// Every recording method must be a no-op on a nil collector.
	mc.RecordRequest("GET", "/x", 200, time.Millisecond)
	mc.RecordRequestStart("GET", "/x")
	mc.RecordRequestEnd("GET", "/x")
	mc.RecordRetry("/x", 2)
	mc.RecordCircuitBreakerState("f", StateClosed)
	mc.RecordRateLimiterTokens("default", 5)
	mc.RecordCacheHit("/x", false)
	mc.RecordCacheMiss("/x")
	mc.RecordCacheSize("ns", 100)
	mc.RecordDeduplicationHit("/x")
	mc.RecordQueueDepth(1)
	mc.RecordFlush(1, 0)
	mc.RecordOfflineFallback("stale_cache")
	mc.RecordError(ErrorTypeNetwork, "/x")
}
