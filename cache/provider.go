package cache

import (
	"errors"

	"github.com/picstash/picstash/cache/types"
)

// Provider is the cache abstraction. The cache is strictly an optimization
// layer: callers must treat every error, including ErrCacheMiss, as "go to
// the source of truth" and never fail a request on it.
type Provider = types.Cache

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = types.ErrCacheMiss

// IsCacheMiss reports whether err is a cache miss.
func IsCacheMiss(err error) bool {
	return errors.Is(err, types.ErrCacheMiss)
}
