package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// RouteMiddleware wraps a single route's handler func.
type RouteMiddleware func(next http.HandlerFunc) http.HandlerFunc

// SetRouteChain applies route middlewares right-to-left, so the first one
// listed is the outermost.
func SetRouteChain(handler http.HandlerFunc, middlewares ...RouteMiddleware) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	return handler
}

// SetChain applies router-level middlewares right-to-left.
func SetChain(handler http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	return handler
}

// HTTPResponseTraceInjection copies the active trace id into a response
// header so clients can report it back.
func HTTPResponseTraceInjection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span := trace.SpanFromContext(r.Context())
		if span.SpanContext().HasTraceID() {
			w.Header().Set("X-Trace-Id", span.SpanContext().TraceID().String())
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.statusCode = code
	rec.ResponseWriter.WriteHeader(code)
}

// HTTPRequestLogger logs every request's method, path, status and latency.
// When debug is false, only requests at or above minLogStatus are logged.
type HTTPRequestLogger struct {
	logger       *logrus.Logger
	debug        bool
	minLogStatus int
}

func NewHTTPRequestLogger(logger *logrus.Logger, debug bool, minLogStatus int) *HTTPRequestLogger {
	return &HTTPRequestLogger{
		logger:       logger,
		debug:        debug,
		minLogStatus: minLogStatus,
	}
}

func (l *HTTPRequestLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		if !l.debug && rec.statusCode < l.minLogStatus {
			return
		}

		l.logger.WithContext(r.Context()).WithFields(logrus.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"status":  rec.statusCode,
			"latency": time.Since(start).String(),
		}).Info("http request")
	})
}
