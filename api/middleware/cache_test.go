package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/picstash/picstash/cache/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCachedRouter(t *testing.T, rc *ResponseCache, hits *atomic.Int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/items", rc.Middleware(), func(c *gin.Context) {
		hits.Add(1)
		c.JSON(http.StatusOK, gin.H{"count": hits.Load()})
	})
	r.GET("/missing", rc.Middleware(), func(c *gin.Context) {
		hits.Add(1)
		c.JSON(http.StatusNotFound, gin.H{"error": "nope"})
	})
	return r
}

func newTestResponseCache(t *testing.T) *ResponseCache {
	provider, err := memory.NewMemory(memory.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { provider.Close() })
	return NewResponseCache(provider, time.Minute)
}

func doGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestResponseCache_HitServesStoredBody(t *testing.T) {
	var hits atomic.Int64
	rc := newTestResponseCache(t)
	r := setupCachedRouter(t, rc, &hits)

	first := doGet(r, "/items")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := doGet(r, "/items")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int64(1), hits.Load())
}

func TestResponseCache_ErrorsNotCached(t *testing.T) {
	var hits atomic.Int64
	rc := newTestResponseCache(t)
	r := setupCachedRouter(t, rc, &hits)

	doGet(r, "/missing")
	doGet(r, "/missing")
	assert.Equal(t, int64(2), hits.Load())
}

func TestResponseCache_InvalidateDropsEntries(t *testing.T) {
	var hits atomic.Int64
	rc := newTestResponseCache(t)
	r := setupCachedRouter(t, rc, &hits)

	doGet(r, "/items")
	rc.Invalidate()

	fresh := doGet(r, "/items")
	assert.Equal(t, "MISS", fresh.Header().Get("X-Cache"))
	assert.Equal(t, int64(2), hits.Load())
}

func TestResponseCache_DistinctURIsDistinctEntries(t *testing.T) {
	var hits atomic.Int64
	rc := newTestResponseCache(t)
	r := setupCachedRouter(t, rc, &hits)

	doGet(r, "/items")
	doGet(r, "/items?gallery=1")
	assert.Equal(t, int64(2), hits.Load())
}

func TestResponseCache_DisabledPassThrough(t *testing.T) {
	var hits atomic.Int64
	rc := NewResponseCache(nil, time.Minute)
	r := setupCachedRouter(t, rc, &hits)

	doGet(r, "/items")
	doGet(r, "/items")
	assert.Equal(t, int64(2), hits.Load())
	assert.False(t, rc.Enabled())
}
