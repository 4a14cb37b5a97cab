package httptransport

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/marketplace/metronome/internal/pkg/logging"
)

// Observability wraps a handler with:
// - W3C trace context extraction
// - X-Request-ID generation + echo
// - a request-scoped logger injected into the context
// - request count and duration metrics keyed by method, route and status
func Observability(
	base *zap.Logger,
	requests *prometheus.CounterVec,
	durations *prometheus.HistogramVec,
) func(http.Handler) http.Handler {
	if base == nil {
		base = zap.L()
	}
	prop := otel.GetTextMapPropagator()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			sc := trace.SpanContextFromContext(ctx)

			rid := r.Header.Get("X-Request-ID")
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", rid)

			fields := []zap.Field{zap.String("request_id", rid)}
			if sc.IsValid() {
				fields = append(fields,
					zap.String("trace_id", sc.TraceID().String()),
					zap.String("span_id", sc.SpanID().String()),
				)
			}
			reqLogger := base.With(fields...)
			ctx = logging.ContextWithLogger(ctx, reqLogger)

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			// r.Pattern is populated by the mux after routing; it keeps the
			// route label low-cardinality (no product ids).
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			latency := time.Since(start)
			statusLabel := http.StatusText(rec.status)

			if requests != nil {
				requests.WithLabelValues(r.Method, route, statusLabel).Inc()
			}
			if durations != nil {
				durations.WithLabelValues(r.Method, route, statusLabel).Observe(latency.Seconds())
			}

			reqLogger.Info("http_request_done",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", rec.status),
				zap.Duration("latency", latency),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
