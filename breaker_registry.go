package duraclient

import (
	"sync"
)

// BreakerRegistry maintains one CircuitBreaker per guarded operation family so
// a degraded endpoint group does not trip calls to healthy ones. The key
// function decides the family; unknown families are created on demand from the
// registry's template config.
type BreakerRegistry struct {
	breakers map[string]*CircuitBreaker
	keyFunc  KeyFunc
	template CircuitBreakerConfig
	mutex    sync.RWMutex
}

// NewBreakerRegistry creates a registry with the given key function and the
// config every new family breaker is created from.
func NewBreakerRegistry(keyFunc KeyFunc, template CircuitBreakerConfig) *BreakerRegistry {
	return &BreakerRegistry{
		breakers: make(map[string]*CircuitBreaker),
		keyFunc:  keyFunc,
		template: template,
	}
}

// RegisterBreaker adds a pre-configured breaker for the given family key.
func (r *BreakerRegistry) RegisterBreaker(key string, cb *CircuitBreaker) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.breakers[key] = cb
}

// GetBreaker returns the breaker for the given request, creating one for an
// unseen family.
func (r *BreakerRegistry) GetBreaker(req *Request) (*CircuitBreaker, string) {
	key := "default"
	if r.keyFunc != nil {
		key = r.keyFunc(req)
	}

	r.mutex.RLock()
	cb, exists := r.breakers[key]
	r.mutex.RUnlock()
	if exists {
		return cb, key
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if cb, exists = r.breakers[key]; exists {
		return cb, key
	}
	cb = NewCircuitBreaker(r.template)
	r.breakers[key] = cb
	return cb, key
}

// States snapshots the state of every registered family breaker.
func (r *BreakerRegistry) States() map[string]CircuitState {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make(map[string]CircuitState, len(r.breakers))
	for key, cb := range r.breakers {
		out[key] = cb.State()
	}
	return out
}

// DefaultFamilyKeyFunc groups requests by method class: reads and writes fail
// independently.
func DefaultFamilyKeyFunc(req *Request) string {
	switch req.Method {
	case "GET", "HEAD", "OPTIONS":
		return "family:read"
	default:
		return "family:write"
	}
}

// RouteKeyFunc groups requests by method and path.
func RouteKeyFunc(req *Request) string {
	return "route:" + req.Method + ":" + req.Path
}
