package duraclient

import (
	"sync"
	"testing"
	"time"
)

func TestBreakerRegistryCreatesPerFamily(t *testing.T) {
	r := NewBreakerRegistry(DefaultFamilyKeyFunc, CircuitBreakerConfig{
		FailureThreshold: 2,
		RecoveryTimeout:  time.Hour,
	})

	read, readKey := r.GetBreaker(&Request{Method: "GET", Path: "/users/1"})
	write, writeKey := r.GetBreaker(&Request{Method: "PUT", Path: "/users/1"})

	if readKey != "family:read" || writeKey != "family:write" {
		t.Fatalf("Unexpected family keys: %q, %q", readKey, writeKey)
	}
	if read == write {
		t.Fatal("Expected distinct breakers per family")
	}

	again, _ := r.GetBreaker(&Request{Method: "HEAD", Path: "/health"})
	if again != read {
		t.Error("Expected the same breaker instance for the same family")
	}
}

func TestBreakerRegistryFamiliesFailIndependently(t *testing.T) {
	r := NewBreakerRegistry(DefaultFamilyKeyFunc, CircuitBreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  time.Hour,
	})

	write, _ := r.GetBreaker(&Request{Method: "POST", Path: "/users"})
	write.RecordFailure()

	read, _ := r.GetBreaker(&Request{Method: "GET", Path: "/users/1"})
	if !read.Allow() {
		t.Error("Read family must stay closed when the write family opens")
	}

	states := r.States()
	if states["family:write"] != StateOpen {
		t.Errorf("Expected write family open, got %v", states["family:write"])
	}
	if states["family:read"] != StateClosed {
		t.Errorf("Expected read family closed, got %v", states["family:read"])
	}
}

func TestBreakerRegistryRegisterBreaker(t *testing.T) {
	r := NewBreakerRegistry(RouteKeyFunc, CircuitBreakerConfig{})

	custom := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1})
	r.RegisterBreaker("route:GET:/special", custom)

	got, _ := r.GetBreaker(&Request{Method: "GET", Path: "/special"})
	if got != custom {
		t.Error("Expected the registered breaker to be returned")
	}
}

func TestBreakerRegistryNilKeyFunc(t *testing.T) {
	r := NewBreakerRegistry(nil, CircuitBreakerConfig{})

	_, key := r.GetBreaker(&Request{Method: "GET", Path: "/a"})
	if key != "default" {
		t.Errorf("Expected default family, got %q", key)
	}
}

func TestBreakerRegistryConcurrentAccess(t *testing.T) {
	r := NewBreakerRegistry(RouteKeyFunc, CircuitBreakerConfig{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cb, _ := r.GetBreaker(&Request{Method: "GET", Path: "/shared"})
			cb.Allow()
		}()
	}
	wg.Wait()

	if len(r.States()) != 1 {
		t.Errorf("Expected a single family, got %d", len(r.States()))
	}
}
