package middleware

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/picstash/picstash/cache"
	"golang.org/x/sync/singleflight"
)

// cachedResponse is the serialized form of a cacheable GET response.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// ResponseCache caches successful GET responses keyed by request URI.
// Invalidation bumps a generation counter embedded in every key, so one write
// anywhere drops the whole read set at once; superseded entries age out via
// TTL. Concurrent misses for the same key are collapsed with singleflight so
// only one request hits the handlers.
type ResponseCache struct {
	provider   cache.Provider
	ttl        time.Duration
	generation atomic.Uint64
	group      singleflight.Group
}

// NewResponseCache builds a response cache. A nil provider yields a disabled
// cache whose middleware is a pass-through.
func NewResponseCache(provider cache.Provider, ttl time.Duration) *ResponseCache {
	return &ResponseCache{provider: provider, ttl: ttl}
}

// Enabled reports whether responses are actually being cached.
func (rc *ResponseCache) Enabled() bool {
	return rc != nil && rc.provider != nil
}

// Invalidate makes all currently cached responses unreachable.
func (rc *ResponseCache) Invalidate() {
	if rc.Enabled() {
		rc.generation.Add(1)
	}
}

func (rc *ResponseCache) key(uri string) string {
	return fmt.Sprintf("resp:%d:%s", rc.generation.Load(), uri)
}

// Middleware serves GET requests from the cache when possible and stores
// fresh 200 responses. Cache backend failures fall through to the handlers.
func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rc.Enabled() || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := rc.key(c.Request.RequestURI)

		var cached cachedResponse
		if err := rc.provider.Get(c.Request.Context(), key, &cached); err == nil {
			c.Header("X-Cache", "HIT")
			c.Data(cached.Status, cached.ContentType, cached.Body)
			c.Abort()
			return
		} else if !cache.IsCacheMiss(err) {
			log.Printf("[Cache] Lookup for %s failed: %v", key, err)
		}

		// Only the singleflight leader executes the handlers; followers
		// replay the leader's response into their own writer.
		executed := false
		v, err, _ := rc.group.Do(key, func() (interface{}, error) {
			executed = true

			capture := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
			c.Writer = capture
			c.Header("X-Cache", "MISS")
			c.Next()

			resp := cachedResponse{
				Status:      capture.Status(),
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
			}
			if resp.Status == http.StatusOK {
				if err := rc.provider.Set(c.Request.Context(), key, resp, rc.ttl); err != nil {
					log.Printf("[Cache] Store for %s failed: %v", key, err)
				}
			}
			return resp, nil
		})
		if executed || err != nil {
			return
		}

		resp := v.(cachedResponse)
		c.Header("X-Cache", "HIT")
		c.Data(resp.Status, resp.ContentType, resp.Body)
		c.Abort()
	}
}

// bodyCaptureWriter tees the response body so it can be cached after the
// handlers have written it.
type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
