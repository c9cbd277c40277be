package cache

import (
	"log"

	"github.com/picstash/picstash/cache/memory"
	"github.com/picstash/picstash/cache/redis"
	"github.com/picstash/picstash/config"
)

// NewProvider builds the configured cache provider. A cache that cannot be
// reached degrades to nil rather than failing startup; the caller treats a
// nil provider as "caching disabled".
func NewProvider(cfg *config.Config) Provider {
	switch cfg.CacheType {
	case "redis":
		provider, err := redis.NewRedis(redis.Config{
			Address:  cfg.CacheRedisAddr,
			Password: cfg.CacheRedisPassword,
			DB:       cfg.CacheRedisDB,
		})
		if err != nil {
			log.Printf("[Cache] Redis unreachable (%v), caching disabled", err)
			return nil
		}
		log.Printf("[Cache] Using redis cache at %s", cfg.CacheRedisAddr)
		return provider

	case "none", "disabled":
		log.Println("[Cache] Caching disabled by configuration")
		return nil

	default:
		provider, err := memory.NewMemory(memory.DefaultConfig())
		if err != nil {
			log.Printf("[Cache] Failed to create memory cache (%v), caching disabled", err)
			return nil
		}
		log.Println("[Cache] Using in-memory cache")
		return provider
	}
}
