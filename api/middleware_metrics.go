package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request ID back to the caller
const RequestIDHeader = "X-Request-ID"

// SlowRequest is the duration above which a request is logged as slow
const SlowRequest = 1 * time.Second

// MetricsMiddleware tracks request timing and counts by route template
func MetricsMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if path == "/metrics" || path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			startTime := time.Now()
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set(RequestIDHeader, requestID)

			// Wrap response writer to capture status code
			wrappedWriter := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrappedWriter, r)

			route := routeTemplate(r)
			totalDuration := time.Since(startTime)
			m.Requests.WithLabelValues(r.Method, route, strconv.Itoa(wrappedWriter.statusCode)).Inc()
			m.RequestDuration.WithLabelValues(r.Method, route).Observe(totalDuration.Seconds())

			if totalDuration > SlowRequest {
				zap.S().Warnw("Slow request detected",
					"requestId", requestID,
					"method", r.Method,
					"path", path,
					"duration", totalDuration,
					"status", wrappedWriter.statusCode,
				)
			}
		})
	}
}

// routeTemplate keeps label cardinality bounded by using the mux template
// instead of the raw path
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
