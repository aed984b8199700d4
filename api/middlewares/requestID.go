package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/upconfig/tool"
)

const RequestIDHeader = "X-Request-Id"

// RequestID echoes the caller's request id, creating one when missing, and
// logs each command with its latency.
func RequestID(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if id == "" {
		id = tool.GenerateRandomUUID()
	}
	c.Set("requestId", id)
	c.Header(RequestIDHeader, id)

	start := time.Now()
	c.Next()
	tool.DefaultLogger.Debugf("[%s] %s %s -> %d (%s)", id, c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
}
