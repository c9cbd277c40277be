// Package memory implements an in-process cache provider on ristretto.
package memory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/picstash/picstash/cache/types"
)

// Config tunes the underlying ristretto cache.
type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

// DefaultConfig sizes the cache for a single-node deployment.
func DefaultConfig() Config {
	return Config{
		NumCounters: 1_000_000,
		MaxCost:     256 << 20, // 256MB
		BufferItems: 64,
	}
}

// Memory is a ristretto-backed cache provider.
type Memory struct {
	cache *ristretto.Cache
}

// NewMemory creates an in-memory cache provider.
func NewMemory(cfg Config) (*Memory, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &Memory{cache: cache}, nil
}

// Set stores a JSON-encoded value. Wait makes the write visible to an
// immediately following Get; ristretto applies writes through a buffer.
func (m *Memory) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.cache.SetWithTTL(key, data, int64(len(data)), expiration)
	m.cache.Wait()
	return nil
}

// Get loads a value into dest.
func (m *Memory) Get(ctx context.Context, key string, dest interface{}) error {
	value, found := m.cache.Get(key)
	if !found {
		return types.ErrCacheMiss
	}
	data, ok := value.([]byte)
	if !ok {
		return types.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

// Delete removes a key.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.cache.Del(key)
	return nil
}

// Exists reports whether a key is present.
func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	_, found := m.cache.Get(key)
	return found, nil
}

// Close releases the cache.
func (m *Memory) Close() error {
	m.cache.Close()
	return nil
}

func (m *Memory) Name() string {
	return "memory"
}
