// Package middleware provides gin middleware for request logging and
// JWT-based authentication.
package middleware

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestLogger returns a middleware function that logs request details
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := uuid.New().String()
		c.Set("request_id", requestID)

		log.Info("Request started",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"remote_addr", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		)

		c.Next()

		latency := time.Since(startTime)
		status := c.Writer.Status()

		logLevel := log.Info
		if status >= 400 {
			logLevel = log.Error
		} else if status >= 300 {
			logLevel = log.Warn
		}

		logLevel("Request completed",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", latency,
			"size", c.Writer.Size(),
		)
	}
}
