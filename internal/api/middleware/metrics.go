package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/pkg/metrics"
)

const unmatchedRoute = "unmatched"

// Metrics HTTP 请求指标中间件，路径取路由模板以控制标签基数
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}
		m.ObserveRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
