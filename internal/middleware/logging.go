package middleware

import (
	"net/http"
	"time"

	"github.com/lucsky/cuid"
	"report-router/internal/common/logging"
)

// RequestIDHeader carries the request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs every request through the global logger.
func LoggingMiddleware(next http.Handler) http.Handler {
	return RequestLogger(nil)(next)
}

// RequestLogger tags each request with an identifier, taken from the
// X-Request-ID header when the caller sent one, and logs method, path,
// status and duration once the handler returns. A nil logger means the
// global logger.
func RequestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = cuid.New()
			}
			w.Header().Set(RequestIDHeader, requestID)
			r = r.WithContext(logging.ContextWith(r.Context(), logging.RequestIDKey, requestID))

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			fields := []logging.Field{
				{Key: "method", Value: r.Method},
				{Key: "path", Value: r.URL.Path},
				{Key: "status", Value: wrapped.statusCode},
				{Key: "duration_ms", Value: time.Since(start).Milliseconds()},
				{Key: "remote_addr", Value: r.RemoteAddr},
			}
			if r.URL.RawQuery != "" {
				fields = append(fields, logging.Field{Key: "query", Value: r.URL.RawQuery})
			}
			if ua := r.Header.Get("User-Agent"); ua != "" {
				fields = append(fields, logging.Field{Key: "user_agent", Value: ua})
			}

			l := logger
			if l == nil {
				l = logging.GetGlobalLogger()
			}
			l = l.WithContext(r.Context())

			switch {
			case wrapped.statusCode >= 500:
				l.Error("HTTP request completed", nil, fields...)
			case wrapped.statusCode >= 400:
				l.Warn("HTTP request completed", fields...)
			default:
				l.Info("HTTP request completed", fields...)
			}
		})
	}
}
