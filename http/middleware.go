package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	slowRequestThreshold = 500 * time.Millisecond

	// HeaderRequestID carries the request id in both directions.
	HeaderRequestID = "X-Request-ID"

	requestIDKey = "request_id"
)

func Zerolog(log zerolog.Logger, level zerolog.Level) gin.HandlerFunc {
	logFunc := log.Info
	if level == zerolog.DebugLevel {
		logFunc = log.Debug
	}

	return func(c *gin.Context) {
		start := time.Now()

		// process request
		c.Next()

		latency := time.Since(start)

		// approvals wait on a human, so only reads are expected to be fast
		if latency > slowRequestThreshold && c.Request.Method == http.MethodGet && !isStream(c) {
			logRequest(log.Warn(), c, latency).Msg("SLOW HTTP request")
			return
		}

		logRequest(logFunc(), c, latency).Msg("HTTP request")
	}
}

func logRequest(e *zerolog.Event, c *gin.Context, latency time.Duration) *zerolog.Event {
	return e.
		Str("http.client_ip", c.ClientIP()).
		Str("http.method", c.Request.Method).
		Str("http.path", c.Request.URL.Path).
		Int("http.status", c.Writer.Status()).
		Dur("http.latency", latency).
		Str("http.ua", c.Request.UserAgent()).
		Str("http.request_id", c.GetString(requestIDKey))
}

// RequestID tags every request with an id, reusing the caller's X-Request-ID when set.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// CORS. Allowed origins should be comma separated. Empty string is treated as `*` wildcard.
func CORS(allowedOrigins string) gin.HandlerFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = strings.Split(allowedOrigins, ",")
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", HeaderRequestID}
	config.ExposeHeaders = []string{HeaderRequestID}

	return cors.New(config)
}

// Timeout puts a deadline on the request context. Wallet calls honor it and fail with
// a timeout kind. Event streams are exempt.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isStream(c) {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func isStream(c *gin.Context) bool {
	return strings.HasSuffix(c.Request.URL.Path, "/events") ||
		strings.Contains(c.GetHeader("Accept"), "text/event-stream")
}
