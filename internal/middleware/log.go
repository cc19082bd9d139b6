package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLog writes one line per request: method, path, status, latency.
// Request bodies are never logged since they carry amounts and notes.
func RequestLog(logger *log.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = log.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}
		status := c.Writer.Status()
		line := "%s %s %d %s"
		if len(c.Errors) > 0 {
			logger.Printf(line+" errors=%s", c.Request.Method, path, status, time.Since(start), c.Errors.String())
			return
		}
		logger.Printf(line, c.Request.Method, path, status, time.Since(start))
	}
}

// LocalOnly rejects requests that do not come from the loopback interface.
// The hook layer serves a single local user and has no authentication.
func LocalOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.RemoteIP()
		if ip == "127.0.0.1" || ip == "::1" {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": 40301, "message": "local access only"})
	}
}
