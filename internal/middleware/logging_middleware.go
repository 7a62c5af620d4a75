package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/arena-maps/internal/logging"
)

// TraceIDKey ключ trace-ID в gin.Context
const TraceIDKey = "trace_id"

// RequestLogger снабжает каждый HTTP-запрос trace-ID и пишет краткие логи
// в логгер компонента (по умолчанию глобальный).
type RequestLogger struct {
	logger *logging.Logger
}

func NewRequestLogger(logger *logging.Logger) *RequestLogger { return &RequestLogger{logger: logger} }

func (rl *RequestLogger) logf(format string, args ...interface{}) {
	if rl.logger != nil {
		rl.logger.Info(format, args...)
		return
	}
	logging.Info(format, args...)
}

func (rl *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Пытаемся извлечь trace-id из OpenTelemetry, если уже создан.
		span := trace.SpanFromContext(c.Request.Context())
		var traceID string
		if span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		} else {
			traceID = uuid.NewString()
		}
		c.Set(TraceIDKey, traceID)
		c.Header("X-Trace-Id", traceID)

		start := time.Now()
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		clientIP := c.ClientIP()

		rl.logf("[HTTP] ▶ %s %s ip=%s trace=%s", method, path, clientIP, traceID)

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		rl.logf("[HTTP] ◀ %s %s %d %s trace=%s", method, path, status, latency, traceID)
	}
}
