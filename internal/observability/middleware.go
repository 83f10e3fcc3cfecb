package observability

import (
	"bytes"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation ID for a request.
const RequestIDHeader = "X-Request-ID"

// SessionIDHeader carries the chat session ID between client and server.
const SessionIDHeader = "X-Session-ID"

// responseWriter wraps gin.ResponseWriter to count bytes written, and can
// optionally mirror the body into a buffer.
type responseWriter struct {
	gin.ResponseWriter
	size int
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	size, err := w.ResponseWriter.Write(b)
	w.size += size
	if w.body != nil {
		w.body.Write(b)
	}
	return size, err
}

func (w *responseWriter) WriteString(s string) (int, error) {
	size, err := w.ResponseWriter.WriteString(s)
	w.size += size
	if w.body != nil {
		w.body.WriteString(s)
	}
	return size, err
}

// RequestLoggingMiddleware logs every request start and finish, assigns a
// correlation ID when the client did not send one, and propagates user and
// chat session identity onto the request context for downstream logging.
func RequestLoggingMiddleware(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		correlationID := c.GetHeader(RequestIDHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		c.Set("correlation_id", correlationID)
		c.Header(RequestIDHeader, correlationID)

		ctx := WithCorrelationID(c.Request.Context(), correlationID)

		if userID, exists := c.Get("user_id"); exists {
			if uid, ok := userID.(string); ok {
				ctx = WithUserID(ctx, uid)
			}
		}

		if sessionID := c.GetHeader(SessionIDHeader); sessionID != "" {
			c.Set("session_id", sessionID)
			ctx = WithSessionID(ctx, sessionID)
		}

		c.Request = c.Request.WithContext(ctx)

		rw := &responseWriter{ResponseWriter: c.Writer}
		c.Writer = rw

		logger.Info(ctx, "HTTP request started", map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"query":      c.Request.URL.RawQuery,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		})

		c.Next()

		duration := time.Since(start)
		fields := map[string]interface{}{
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"status":        c.Writer.Status(),
			"duration_ms":   duration.Milliseconds(),
			"response_size": rw.size,
			"ip":            c.ClientIP(),
		}

		switch {
		case len(c.Errors) > 0:
			fields["errors"] = c.Errors.String()
			logger.Error(ctx, "HTTP request failed", c.Errors.Last().Err, fields)
		case c.Writer.Status() >= 400:
			logger.Warn(ctx, "HTTP request completed with error status", fields)
		default:
			logger.Info(ctx, "HTTP request completed", fields)
		}

		RecordHTTPMetrics(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), duration, rw.size)
	}
}

// MetricsMiddleware records request metrics without logging. Use it on
// routers that already log elsewhere.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: c.Writer}
		c.Writer = rw

		c.Next()

		RecordHTTPMetrics(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), rw.size)
	}
}

// RecoveryMiddleware turns panics into logged 500 responses.
func RecoveryMiddleware(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), "Panic recovered", nil, map[string]interface{}{
					"panic":  err,
					"method": c.Request.Method,
					"path":   c.Request.URL.Path,
				})

				c.JSON(500, gin.H{
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "An unexpected error occurred",
					},
				})
				c.Abort()
			}
		}()

		c.Next()
	}
}

// CORSWithLogging adds permissive CORS headers and answers preflights.
func CORSWithLogging(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID, X-Session-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, X-Session-ID")

		if c.Request.Method == "OPTIONS" {
			if origin != "" {
				logger.Debug(c.Request.Context(), "CORS preflight request", map[string]interface{}{
					"origin": origin,
					"method": c.Request.Header.Get("Access-Control-Request-Method"),
				})
			}
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
