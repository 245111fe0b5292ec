package middleware

import (
	"strconv"
	"time"

	"github.com/ahmetkoprulu/rtrp/arcade/common/utils"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger logs every request and feeds the HTTP metrics. Metrics are
// labelled with the route template so path parameters don't explode the series.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTP(method, route, strconv.Itoa(status), latency.Seconds())

		if query != "" {
			path = path + "?" + query
		}

		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
			zap.String("user-agent", c.Request.UserAgent()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Error(c.Errors.Last().Err))
		}

		utils.Logger.Info("Request", fields...)
	}
}
