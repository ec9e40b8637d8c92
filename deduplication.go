package duraclient

import (
	"context"
	"crypto/sha256"
	"fmt"
	"hash/fnv"
	"sync"
)

// DeduplicationEntry represents an in-flight request shared between callers.
// All waiters resolve or reject together when the one real call settles.
type DeduplicationEntry struct {
	result  *Result
	err     error
	done    chan struct{}
	mu      sync.Mutex
	waiters int
}

// DeduplicationTracker coalesces concurrent callers requesting the same
// logical resource into a single underlying call. At most one live entry
// exists per key at any instant.
type DeduplicationTracker struct {
	mu      sync.RWMutex
	entries map[string]*DeduplicationEntry
}

// NewDeduplicationTracker returns an in-memory de-duplication tracker.
func NewDeduplicationTracker() *DeduplicationTracker {
	return &DeduplicationTracker{
		entries: make(map[string]*DeduplicationEntry),
	}
}

// GetOrCreateEntry returns an existing entry (not owner) or creates a new one
// (owner=true). The owner performs the underlying call and must Complete it.
func (dt *DeduplicationTracker) GetOrCreateEntry(key string) (*DeduplicationEntry, bool) {
	dt.mu.Lock()
	defer dt.mu.Unlock()

	if entry, exists := dt.entries[key]; exists {
		entry.mu.Lock()
		entry.waiters++
		entry.mu.Unlock()
		return entry, false
	}

	entry := &DeduplicationEntry{
		done:    make(chan struct{}),
		waiters: 1,
	}
	dt.entries[key] = entry
	return entry, true
}

// Complete settles the entry, releases all waiters and removes the key so a
// subsequent call starts fresh.
func (dt *DeduplicationTracker) Complete(key string, result *Result, err error) {
	dt.mu.Lock()
	entry, exists := dt.entries[key]
	delete(dt.entries, key)
	dt.mu.Unlock()

	if !exists {
		return
	}

	entry.mu.Lock()
	entry.result = result
	entry.err = err
	close(entry.done)
	entry.mu.Unlock()
}

// InFlight returns the number of live entries, for observability.
func (dt *DeduplicationTracker) InFlight() int {
	dt.mu.RLock()
	defer dt.mu.RUnlock()
	return len(dt.entries)
}

// Wait blocks until the owning request completes or context cancels.
func (entry *DeduplicationEntry) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-entry.done:
		entry.mu.Lock()
		result := entry.result
		err := entry.err
		entry.mu.Unlock()
		return result, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Waiters returns the number of callers sharing this entry.
func (entry *DeduplicationEntry) Waiters() int {
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.waiters
}

// DeduplicationKeyFunc builds a key identifying identical in-flight requests.
type DeduplicationKeyFunc func(*Request) string

// DefaultDeduplicationKeyFunc builds a canonical request signature from
// method + path (+ body hash for mutating verbs).
func DefaultDeduplicationKeyFunc(req *Request) string {
	h := fnv.New64a()
	h.Write([]byte(req.Method))
	h.Write([]byte{0})
	h.Write([]byte(req.Path))

	if len(req.Body) > 0 && (req.Method == "POST" || req.Method == "PUT" || req.Method == "PATCH") {
		bodyHash := sha256.Sum256(req.Body)
		h.Write(bodyHash[:])
	}

	return fmt.Sprintf("%x", h.Sum64())
}

// DeduplicationCondition decides whether a request is eligible for deduplication.
type DeduplicationCondition func(req *Request) bool

// DefaultDeduplicationCondition enables deduplication for safe idempotent methods.
func DefaultDeduplicationCondition(req *Request) bool {
	return req.Method == "GET" || req.Method == "HEAD" || req.Method == "OPTIONS"
}
