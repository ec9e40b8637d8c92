package duraclient

import (
	"strconv"
	"strings"
	"time"
)

// CacheDirectives are the Cache-Control directives the client honors when
// deciding whether and for how long to cache a response.
type CacheDirectives struct {
	NoStore bool
	NoCache bool
	MaxAge  *time.Duration
	Private bool
}

// parseCacheControl parses a Cache-Control header into structured directives.
func parseCacheControl(header string) *CacheDirectives {
	directives := &CacheDirectives{}
	if header == "" {
		return directives
	}

	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "=") {
			kv := strings.SplitN(part, "=", 2)
			if len(kv) != 2 {
				continue
			}
			key := strings.TrimSpace(kv[0])
			value := strings.Trim(strings.TrimSpace(kv[1]), "\"")

			if key == "max-age" {
				if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
					maxAge := time.Duration(seconds) * time.Second
					directives.MaxAge = &maxAge
				}
			}
			continue
		}

		switch strings.ToLower(part) {
		case "no-store":
			directives.NoStore = true
		case "no-cache":
			directives.NoCache = true
		case "private":
			directives.Private = true
		}
	}

	return directives
}

// cacheTTLFor picks the TTL for a response: a server max-age wins over the
// configured default; no-store disables caching entirely (ttl 0, ok false).
func cacheTTLFor(cacheControl string, configured time.Duration) (time.Duration, bool) {
	d := parseCacheControl(cacheControl)
	if d.NoStore {
		return 0, false
	}
	if d.MaxAge != nil {
		if *d.MaxAge == 0 {
			return 0, false
		}
		return *d.MaxAge, true
	}
	return configured, true
}
