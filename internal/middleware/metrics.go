package middleware

import (
	"strconv"
	"time"

	"github.com/GoPolymarket/kylingate/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
)

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.HTTPLatency.WithLabelValues(endpoint, strconv.Itoa(c.Writer.Status())).Observe(duration)
	}
}
