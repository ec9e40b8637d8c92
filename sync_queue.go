package duraclient

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/arkareza/duraclient/store"
)

// SyncOperation is the kind of a queued mutation.
type SyncOperation string

const (
	OpCreate SyncOperation = "CREATE"
	OpUpdate SyncOperation = "UPDATE"
	OpDelete SyncOperation = "DELETE"
)

// SyncQueueItem is one pending mutation recorded while the network was
// unreachable. Items are durable and replayed in arrival order; the
// idempotency key lets the server recognize a replay whose acknowledgment was
// lost, so it is never double-applied.
type SyncQueueItem struct {
	ID             string        `msgpack:"id"`
	Operation      SyncOperation `msgpack:"operation"`
	Path           string        `msgpack:"path"`
	Payload        []byte        `msgpack:"payload"`
	CreatedAt      time.Time     `msgpack:"createdAt"`
	Attempts       int           `msgpack:"attempts"`
	IdempotencyKey string        `msgpack:"idempotencyKey"`
}

// FlushResult reports one flush pass. Failed counts items that failed an
// attempt during this pass; items behind the failure stay queued untouched.
type FlushResult struct {
	Synced int
	Failed int
}

// OfflineSyncQueue is an ordered, durable queue of pending mutations, flushed
// strictly FIFO on reconnect so an UPDATE is never replayed before its
// preceding CREATE.
type OfflineSyncQueue struct {
	ns      string
	store   store.Store
	logger  Logger
	metrics *MetricsCollector

	mu sync.Mutex // serializes flushes
}

// NewOfflineSyncQueue builds a queue persisting under ns+":queue:".
func NewOfflineSyncQueue(ns string, st store.Store, logger Logger, metrics *MetricsCollector) *OfflineSyncQueue {
	if logger == nil {
		logger = NopLogger{}
	}
	return &OfflineSyncQueue{
		ns:      ns + ":queue",
		store:   st,
		logger:  logger,
		metrics: metrics,
	}
}

// Enqueue appends item in arrival order. A zero ID, CreatedAt or
// IdempotencyKey is filled in.
func (q *OfflineSyncQueue) Enqueue(ctx context.Context, item *SyncQueueItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if item.IdempotencyKey == "" {
		item.IdempotencyKey = uuid.NewString()
	}

	blob, err := msgpack.Marshal(item)
	if err != nil {
		return fmt.Errorf("duraclient: encode queue item: %w", err)
	}

	// Zero-padded nanos keep List output sortable into FIFO order, across
	// restarts as well.
	key := fmt.Sprintf("%s:%020d-%s", q.ns, item.CreatedAt.UnixNano(), item.ID)
	if err := q.store.Set(ctx, key, blob, 0); err != nil {
		return err
	}

	q.logger.Debug("Queued offline mutation", "id", item.ID, "operation", string(item.Operation), "path", item.Path)
	if q.metrics != nil {
		if n, err := q.Size(ctx); err == nil {
			q.metrics.RecordQueueDepth(n)
		}
	}
	return nil
}

// Size returns the number of queued items.
func (q *OfflineSyncQueue) Size(ctx context.Context) (int, error) {
	keys, err := q.sortedKeys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Items returns a FIFO snapshot of the queue. Corrupt entries are dropped.
func (q *OfflineSyncQueue) Items(ctx context.Context) ([]SyncQueueItem, error) {
	keys, err := q.sortedKeys(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]SyncQueueItem, 0, len(keys))
	for _, key := range keys {
		item, ok := q.load(ctx, key)
		if !ok {
			continue
		}
		items = append(items, *item)
	}
	return items, nil
}

// Flush replays queued items strictly FIFO through apply. The pass stops at
// the first item that fails, leaving it and everything behind it queued (with
// its attempt count incremented), and reports counts for both outcomes.
// Typically triggered by a connectivity-restored signal.
func (q *OfflineSyncQueue) Flush(ctx context.Context, apply func(context.Context, *SyncQueueItem) error) (FlushResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var res FlushResult
	keys, err := q.sortedKeys(ctx)
	if err != nil {
		return res, err
	}

	for _, key := range keys {
		item, ok := q.load(ctx, key)
		if !ok {
			continue
		}

		if err := apply(ctx, item); err != nil {
			res.Failed++
			item.Attempts++
			if blob, merr := msgpack.Marshal(item); merr == nil {
				_ = q.store.Set(ctx, key, blob, 0)
			}
			q.logger.Warn("Sync flush stopped", "id", item.ID, "attempts", item.Attempts, "error", err.Error())
			if q.metrics != nil {
				q.metrics.RecordFlush(res.Synced, res.Failed)
				if n, serr := q.Size(ctx); serr == nil {
					q.metrics.RecordQueueDepth(n)
				}
			}
			return res, err
		}

		if err := q.store.Del(ctx, key); err != nil {
			// The mutation reached the server; the idempotency key protects
			// the retried delete path from double-apply.
			q.logger.Warn("Failed to remove synced item", "id", item.ID, "error", err.Error())
		}
		res.Synced++
	}

	if q.metrics != nil {
		q.metrics.RecordFlush(res.Synced, res.Failed)
		q.metrics.RecordQueueDepth(0)
	}
	if res.Synced > 0 {
		q.logger.Info("Sync flush complete", "synced", res.Synced)
	}
	return res, nil
}

func (q *OfflineSyncQueue) sortedKeys(ctx context.Context) ([]string, error) {
	infos, err := q.store.List(ctx, q.ns+":")
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		keys = append(keys, info.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

// load reads and decodes one item; corrupt entries are discarded.
func (q *OfflineSyncQueue) load(ctx context.Context, key string) (*SyncQueueItem, bool) {
	blob, ok, err := q.store.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var item SyncQueueItem
	if err := msgpack.Unmarshal(blob, &item); err != nil || item.ID == "" {
		q.logger.Warn("Discarding corrupt queue entry", "key", key)
		_ = q.store.Del(ctx, key)
		return nil, false
	}
	return &item, true
}
