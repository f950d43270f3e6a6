package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mrops-br/rocketshoes-cart/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// routePattern returns the chi route pattern, or the raw path before routing
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// ActiveRequestsMiddleware tracks in-flight HTTP requests
func ActiveRequestsMiddleware(meter metric.Meter) func(next http.Handler) http.Handler {
	activeRequests, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of active HTTP server requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// increment and decrement must carry identical attributes
			start := []attribute.KeyValue{
				attribute.String("http.request.method", r.Method),
				attribute.String("server.address", r.Host),
			}
			activeRequests.Add(r.Context(), 1, metric.WithAttributes(start...))
			defer activeRequests.Add(r.Context(), -1, metric.WithAttributes(start...))

			next.ServeHTTP(w, r)
		})
	}
}

// DurationMillisecondsMiddleware records HTTP request duration in milliseconds,
// alongside the seconds-based histogram from otelhttp
func DurationMillisecondsMiddleware(meter metric.Meter) func(next http.Handler) http.Handler {
	durationHistogram, err := meter.Float64Histogram(
		"http.server.request.duration.ms",
		metric.WithDescription("HTTP server request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			durationHistogram.Record(r.Context(), float64(time.Since(start).Milliseconds()),
				metric.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("http.route", routePattern(r)),
					attribute.Int("http.response.status_code", ww.Status()),
					attribute.String("server.address", r.Host),
				),
			)
		})
	}
}

// HTTPRouteContext adds the HTTP route pattern to the request context
// so every log line written while serving the request carries it.
// Register it with Group or With so it runs after chi has matched the route;
// on the top-level router it only sees the raw path.
func HTTPRouteContext() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := telemetry.WithHTTPRoute(r.Context(), routePattern(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StructuredLogger logs one JSON line per request, replacing chi's text logger
func StructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			spanCtx := trace.SpanFromContext(r.Context()).SpanContext()

			attrs := []any{
				slog.String("http.request.method", r.Method),
				slog.String("http.route", routePattern(r)),
				slog.String("url.path", r.URL.Path),
				slog.String("url.query", r.URL.RawQuery),
				slog.Int("http.response.status_code", ww.Status()),
				slog.Int("http.response.body.size", ww.BytesWritten()),
				slog.String("duration", duration.String()),
				slog.Float64("duration_ms", float64(duration.Milliseconds())),
				slog.String("client.address", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			}

			if spanCtx.IsValid() {
				attrs = append(attrs,
					slog.String("trace_id", spanCtx.TraceID().String()),
					slog.String("span_id", spanCtx.SpanID().String()),
				)
			}

			logLevel := slog.LevelInfo
			if ww.Status() >= 500 {
				logLevel = slog.LevelError
			} else if ww.Status() >= 400 {
				logLevel = slog.LevelWarn
			}

			logger.Log(r.Context(), logLevel, "HTTP request completed", attrs...)
		})
	}
}
