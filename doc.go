// Package duraclient provides a resilient, offline-first HTTP API client that
// keeps an application usable across intermittent connectivity:
//
//   - Circuit breaker (closed / open / half‑open, single-probe recovery)
//   - Bounded retries with exponential backoff + jitter and Retry-After support
//   - Request de‑duplication (merges concurrent identical in‑flight calls)
//   - Persistent TTL cache with transparent compression and quota accounting
//   - Durable offline mutation queue, replayed FIFO on reconnect
//   - Prometheus metrics and lightweight structured debug logging
//
// Design goals:
//   - Always return something usable: fresh, stale-cached, or locally created
//   - One validated configuration struct, populated via functional options
//   - No hidden globals: connectivity and storage are injected capabilities
//   - Safe concurrent use of a single *Client instance
//
// Typical usage:
//
//	st, _ := file.New(file.Config{Dir: dir})
//	client := duraclient.New(
//	    duraclient.WithBaseURL("https://api.example.com"),
//	    duraclient.WithStore(st),
//	    duraclient.WithRetryAttempts(3),
//	)
//	res, err := client.GetResource(ctx, "42")
//
// A read that fails after exhausting retries still resolves from cache when a
// prior value exists; res.Stale reports that case. Mutations issued while
// offline are queued durably and flushed in order when NotifyOnline is called.
package duraclient
