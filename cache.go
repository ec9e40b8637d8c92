package duraclient

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/arkareza/duraclient/codec"
	"github.com/arkareza/duraclient/store"
)

// envelopeVersion is bumped when the durable entry layout changes; entries
// with an unknown version are treated as corrupt and discarded.
const envelopeVersion = 1

// envelope is the durable form of one cache entry. An envelope missing data,
// timestamp or version is corrupt.
type envelope struct {
	Data       []byte `msgpack:"data"`
	Timestamp  int64  `msgpack:"timestamp"` // unix milliseconds
	Version    int    `msgpack:"version"`
	TTLMs      int64  `msgpack:"ttlMs"`
	Compressed bool   `msgpack:"compressed"`
}

func (e *envelope) expired(now time.Time) bool {
	if e.TTLMs <= 0 {
		return false
	}
	return now.UnixMilli()-e.Timestamp > e.TTLMs
}

// StorageStats reports byte usage against the host-provided quota, so callers
// can react before write failures occur.
type StorageStats struct {
	UsedBytes      int64
	QuotaBytes     int64
	AvailableBytes int64
	Entries        int
	Namespaces     map[string]int64
}

// CacheOptions configures a PersistentCache.
type CacheOptions[V any] struct {
	// Namespace prefixes every durable key; required.
	Namespace string
	// Store is the durable byte store; required.
	Store store.Store
	// Codec serializes values; required.
	Codec codec.Codec[V]

	// DefaultTTL applies when Set is called with ttl <= 0. 0 => 5m.
	DefaultTTL time.Duration
	// CompressionThreshold is the serialized size in bytes above which values
	// are gzip-compressed. 0 => 1024; negative disables compression.
	CompressionThreshold int
	// QuotaBytes caps total durable usage; 0 => unlimited.
	QuotaBytes int64
	// HotBytes sizes the in-memory hot layer. 0 => 8 MiB.
	HotBytes int64

	Logger  Logger
	Metrics *MetricsCollector
}

// PersistentCache is a TTL key/value store with transparent compression, an
// in-memory hot copy for repeat reads, lazy expiry on read and a periodic
// sweep. Entries survive process restart via the injected store.
type PersistentCache[V any] struct {
	ns        string
	store     store.Store
	codec     codec.Codec[V]
	hot       *ristretto.Cache
	defTTL    time.Duration
	threshold int
	quota     int64
	logger    Logger
	metrics   *MetricsCollector

	usedBytes int64

	sweepOnce sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewPersistentCache validates options and builds the cache. The initial
// usage counter is primed from the store.
func NewPersistentCache[V any](opts CacheOptions[V]) (*PersistentCache[V], error) {
	if opts.Namespace == "" {
		return nil, errors.New("duraclient: cache namespace required")
	}
	if opts.Store == nil {
		return nil, errors.New("duraclient: cache store required")
	}
	if opts.Codec == nil {
		return nil, errors.New("duraclient: cache codec required")
	}
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = 5 * time.Minute
	}
	if opts.CompressionThreshold == 0 {
		opts.CompressionThreshold = 1024
	}
	if opts.HotBytes <= 0 {
		opts.HotBytes = 8 << 20
	}
	if opts.Logger == nil {
		opts.Logger = NopLogger{}
	}

	hot, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100_000,
		MaxCost:     opts.HotBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("duraclient: hot cache: %w", err)
	}

	c := &PersistentCache[V]{
		ns:        opts.Namespace,
		store:     opts.Store,
		codec:     opts.Codec,
		hot:       hot,
		defTTL:    opts.DefaultTTL,
		threshold: opts.CompressionThreshold,
		quota:     opts.QuotaBytes,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	c.refreshUsage(context.Background())
	return c, nil
}

// Set stores value under key with the given TTL (DefaultTTL when ttl <= 0).
// Serialized values above the compression threshold are gzip-compressed. The
// hot in-memory copy is updated on every write.
func (c *PersistentCache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defTTL
	}

	payload, err := c.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("duraclient: encode %q: %w", key, err)
	}

	env := envelope{
		Data:      payload,
		Timestamp: time.Now().UnixMilli(),
		Version:   envelopeVersion,
		TTLMs:     ttl.Milliseconds(),
	}
	if c.threshold > 0 && len(payload) > c.threshold {
		compressed, err := gzipBytes(payload)
		if err != nil {
			return fmt.Errorf("duraclient: compress %q: %w", key, err)
		}
		// Keep whichever is smaller; tiny highly random payloads can grow.
		if len(compressed) < len(payload) {
			env.Data = compressed
			env.Compressed = true
		}
	}

	blob, err := msgpack.Marshal(&env)
	if err != nil {
		return fmt.Errorf("duraclient: envelope %q: %w", key, err)
	}

	sk := c.storageKey(key)

	// An overwrite reclaims the previous blob's bytes.
	var oldSize int64
	if prev, ok, err := c.store.Get(ctx, sk); err == nil && ok {
		oldSize = int64(len(prev))
	}

	if c.quota > 0 && atomic.LoadInt64(&c.usedBytes)-oldSize+int64(len(blob)) > c.quota {
		return &ClientError{
			Type:      ErrorTypeQuotaExceeded,
			Message:   fmt.Sprintf("write of %d bytes would exceed quota of %d bytes", len(blob), c.quota),
			Timestamp: time.Now(),
		}
	}

	if err := c.store.Set(ctx, sk, blob, ttl); err != nil {
		return err
	}
	atomic.AddInt64(&c.usedBytes, int64(len(blob))-oldSize)

	c.hot.SetWithTTL(sk, value, int64(len(payload)), ttl)
	if c.metrics != nil {
		c.metrics.RecordCacheSize(c.ns, int(atomic.LoadInt64(&c.usedBytes)))
	}
	return nil
}

// Get returns the cached value for key, or ok=false when absent, expired or
// corrupt. Expired entries are removed lazily; corrupt entries are discarded
// after logging, never surfaced as errors.
func (c *PersistentCache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	sk := c.storageKey(key)

	if raw, ok := c.hot.Get(sk); ok {
		if v, ok := raw.(V); ok {
			return v, true, nil
		}
		c.hot.Del(sk) // unexpected entry shape
	}

	blob, ok, err := c.store.Get(ctx, sk)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		return zero, false, nil
	}

	env, err := decodeEnvelope(blob)
	if err != nil {
		c.discardCorrupt(ctx, sk, err)
		return zero, false, nil
	}

	now := time.Now()
	if env.expired(now) {
		c.removeBlob(ctx, sk, int64(len(blob)))
		return zero, false, nil
	}

	payload := env.Data
	if env.Compressed {
		payload, err = gunzipBytes(payload)
		if err != nil {
			c.discardCorrupt(ctx, sk, err)
			return zero, false, nil
		}
	}

	v, err := c.codec.Decode(payload)
	if err != nil {
		c.discardCorrupt(ctx, sk, err)
		return zero, false, nil
	}

	remaining := time.Duration(env.TTLMs)*time.Millisecond - now.Sub(time.UnixMilli(env.Timestamp))
	if remaining > 0 {
		c.hot.SetWithTTL(sk, v, int64(len(payload)), remaining)
	}
	return v, true, nil
}

// Invalidate removes key from both the hot copy and the durable store.
func (c *PersistentCache[V]) Invalidate(ctx context.Context, key string) error {
	sk := c.storageKey(key)
	c.hot.Del(sk)
	return c.store.Del(ctx, sk)
}

// SweepExpired scans the cache's key range and reclaims expired and corrupt
// entries. Returns the number of entries removed.
func (c *PersistentCache[V]) SweepExpired(ctx context.Context) (int, error) {
	infos, err := c.store.List(ctx, c.keyPrefix())
	if err != nil {
		return 0, err
	}

	removed := 0
	now := time.Now()
	var used int64
	for _, info := range infos {
		blob, ok, err := c.store.Get(ctx, info.Key)
		if err != nil || !ok {
			continue
		}
		env, err := decodeEnvelope(blob)
		if err != nil || env.expired(now) {
			c.hot.Del(info.Key)
			if err := c.store.Del(ctx, info.Key); err == nil {
				removed++
			}
			continue
		}
		used += info.Size
	}
	atomic.StoreInt64(&c.usedBytes, used)
	if c.metrics != nil {
		c.metrics.RecordCacheSize(c.ns, int(used))
	}
	return removed, nil
}

// StartSweeper launches the periodic sweep goroutine. Call Close to stop it.
// Subsequent calls are no-ops.
func (c *PersistentCache[V]) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		return
	}
	c.sweepOnce.Do(func() {
		go func() {
			defer close(c.done)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if n, err := c.SweepExpired(context.Background()); err != nil {
						c.logger.Warn("Cache sweep failed", "namespace", c.ns, "error", err.Error())
					} else if n > 0 {
						c.logger.Debug("Cache sweep reclaimed entries", "namespace", c.ns, "removed", n)
					}
				case <-c.stop:
					return
				}
			}
		}()
	})
}

// Close stops the sweeper and releases the hot cache. The durable store is
// not closed; it may be shared.
func (c *PersistentCache[V]) Close() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
	c.hot.Close()
}

// StorageStats reports total and per-namespace byte usage against the quota.
// The namespace of an entry is the first segment of its logical key.
func (c *PersistentCache[V]) StorageStats(ctx context.Context) (StorageStats, error) {
	infos, err := c.store.List(ctx, c.keyPrefix())
	if err != nil {
		return StorageStats{}, err
	}

	stats := StorageStats{
		QuotaBytes: c.quota,
		Namespaces: make(map[string]int64),
	}
	for _, info := range infos {
		stats.UsedBytes += info.Size
		stats.Entries++
		logical := strings.TrimPrefix(info.Key, c.keyPrefix())
		seg := logical
		if i := strings.IndexByte(logical, ':'); i >= 0 {
			seg = logical[:i]
		}
		stats.Namespaces[seg] += info.Size
	}
	if c.quota > 0 {
		stats.AvailableBytes = c.quota - stats.UsedBytes
		if stats.AvailableBytes < 0 {
			stats.AvailableBytes = 0
		}
	}
	atomic.StoreInt64(&c.usedBytes, stats.UsedBytes)
	return stats, nil
}

// backupSnapshot is the opaque portability format produced by Backup.
type backupSnapshot struct {
	Owner     string       `msgpack:"owner"`
	CreatedAt int64        `msgpack:"createdAt"`
	Entries   []backupItem `msgpack:"entries"`
}

type backupItem struct {
	Key  string `msgpack:"key"`
	Blob []byte `msgpack:"blob"`
}

// Backup snapshots every entry whose logical key starts with ownerID. The
// result is opaque: envelopes are carried verbatim, expiry included, so a
// restore cannot resurrect entries past their TTL.
func (c *PersistentCache[V]) Backup(ctx context.Context, ownerID string) ([]byte, error) {
	prefix := c.storageKey(ownerID)
	infos, err := c.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	snap := backupSnapshot{
		Owner:     ownerID,
		CreatedAt: time.Now().UnixMilli(),
	}
	for _, info := range infos {
		blob, ok, err := c.store.Get(ctx, info.Key)
		if err != nil || !ok {
			continue
		}
		if _, err := decodeEnvelope(blob); err != nil {
			continue // skip corrupt entries rather than propagating them
		}
		snap.Entries = append(snap.Entries, backupItem{Key: info.Key, Blob: blob})
	}
	return msgpack.Marshal(&snap)
}

// Restore replays a Backup snapshot into the store. Expired and corrupt
// entries in the snapshot are skipped. Returns the number restored.
func (c *PersistentCache[V]) Restore(ctx context.Context, backup []byte) (int, error) {
	var snap backupSnapshot
	if err := msgpack.Unmarshal(backup, &snap); err != nil {
		return 0, &ClientError{
			Type:      ErrorTypeCorruptEntry,
			Message:   "backup snapshot is not decodable",
			Cause:     err,
			Timestamp: time.Now(),
		}
	}

	restored := 0
	now := time.Now()
	for _, item := range snap.Entries {
		env, err := decodeEnvelope(item.Blob)
		if err != nil || env.expired(now) {
			continue
		}
		remaining := time.Duration(env.TTLMs)*time.Millisecond - now.Sub(time.UnixMilli(env.Timestamp))
		if err := c.store.Set(ctx, item.Key, item.Blob, remaining); err != nil {
			return restored, err
		}
		atomic.AddInt64(&c.usedBytes, int64(len(item.Blob)))
		restored++
	}
	return restored, nil
}

// storageKey places entries under ns+":cache:". The sync queue shares the
// store under ns+":queue:"; sweep and stats must never cross into it.
func (c *PersistentCache[V]) storageKey(key string) string {
	return c.ns + ":cache:" + key
}

func (c *PersistentCache[V]) keyPrefix() string {
	return c.ns + ":cache:"
}

func (c *PersistentCache[V]) refreshUsage(ctx context.Context) {
	infos, err := c.store.List(ctx, c.keyPrefix())
	if err != nil {
		return
	}
	var used int64
	for _, info := range infos {
		used += info.Size
	}
	atomic.StoreInt64(&c.usedBytes, used)
}

func (c *PersistentCache[V]) discardCorrupt(ctx context.Context, storageKey string, cause error) {
	c.logger.Warn("Discarding corrupt cache entry", "key", storageKey, "error", cause.Error())
	if c.metrics != nil {
		c.metrics.RecordError(ErrorTypeCorruptEntry, c.ns)
	}
	c.hot.Del(storageKey)
	_ = c.store.Del(ctx, storageKey)
}

func (c *PersistentCache[V]) removeBlob(ctx context.Context, storageKey string, size int64) {
	c.hot.Del(storageKey)
	if err := c.store.Del(ctx, storageKey); err == nil {
		atomic.AddInt64(&c.usedBytes, -size)
	}
}

// decodeEnvelope validates the durable layout: data, timestamp and version
// must all be present and the version known.
func decodeEnvelope(blob []byte) (*envelope, error) {
	var env envelope
	if err := msgpack.Unmarshal(blob, &env); err != nil {
		return nil, err
	}
	if env.Data == nil || env.Timestamp == 0 || env.Version == 0 {
		return nil, errors.New("envelope missing data, timestamp or version")
	}
	if env.Version != envelopeVersion {
		return nil, fmt.Errorf("unknown envelope version %d", env.Version)
	}
	return &env, nil
}

func gzipBytes(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzipBytes(b []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
