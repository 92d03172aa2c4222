package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const TraceIDHeader = "X-Trace-ID"
const TraceParentHeader = "traceparent"

// GetTraceID extracts the trace-id from the W3C traceparent header, the
// X-Trace-ID header, or generates a fresh one.
func GetTraceID(c *gin.Context) string {
	// traceparent format: version-trace_id-parent_id-flags
	if tp := c.GetHeader(TraceParentHeader); tp != "" {
		parts := strings.Split(tp, "-")
		if len(parts) >= 2 && parts[1] != "" {
			return parts[1]
		}
	}
	if traceID := c.GetHeader(TraceIDHeader); traceID != "" {
		return traceID
	}
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// LoggingMiddleware attaches a trace-id-scoped zerolog logger to the
// request context and logs every request on the way out. The route guard
// sets "user_id" on the gin context when a session resolves; it shows up
// here so page requests can be correlated to accounts.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		traceID := GetTraceID(c)
		c.Set("trace_id", traceID)

		logger := log.With().Str("trace_id", traceID).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
		c.Header(TraceIDHeader, traceID)

		c.Next()

		statusCode := c.Writer.Status()
		var event *zerolog.Event
		if statusCode >= 400 && statusCode != 403 {
			// 403 is a deliberate guard outcome for role denials, not a
			// server fault.
			event = logger.Error()
		} else {
			event = logger.Info()
		}

		if userID := c.GetString("user_id"); userID != "" {
			event = event.Str("user_id", userID)
		}
		if loc := c.Writer.Header().Get("Location"); loc != "" {
			event = event.Str("redirect", loc)
		}

		event.
			Str("method", method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Msg("HTTP request")
	}
}
