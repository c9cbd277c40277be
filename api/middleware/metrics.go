package middleware

import (
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Metrics counts requests by outcome class.
type Metrics struct {
	started      time.Time
	total        atomic.Int64
	succeeded    atomic.Int64
	clientErrors atomic.Int64
	serverErrors atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{started: time.Now()}
}

// Middleware records the outcome of each request after the handlers ran.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		m.total.Add(1)
		switch status := c.Writer.Status(); {
		case status >= 500:
			m.serverErrors.Add(1)
		case status >= 400:
			m.clientErrors.Add(1)
		default:
			m.succeeded.Add(1)
		}
	}
}

// Snapshot returns the current counters for the metrics endpoint.
func (m *Metrics) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"uptimeSeconds":  int64(time.Since(m.started).Seconds()),
		"requestsTotal":  m.total.Load(),
		"requests2xx3xx": m.succeeded.Load(),
		"requests4xx":    m.clientErrors.Load(),
		"requests5xx":    m.serverErrors.Load(),
	}
}
