package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Luiza-Bandeira/VarandaJK/pkg/logger"
)

// Span attributes carrying the visitor session and the request correlation id.
const (
	AttrSessionID     = attribute.Key("varandajk.session_id")
	AttrCorrelationID = attribute.Key("varandajk.correlation_id")
)

// unmatchedRoute names spans of requests no route matched, so raw paths such
// as cart line ids never become span names.
const unmatchedRoute = "unmatched"

// Tracing starts a server span per request, continuing any W3C trace context
// sent by the frontend. Spans are named "METHOD /route/{pattern}" once chi has
// routed the request, and carry the visitor session and correlation id when
// present. 5xx responses mark the span as failed.
func Tracing(serviceName string) func(http.Handler) http.Handler {
	tracer := otel.Tracer("github.com/Luiza-Bandeira/VarandaJK/" + serviceName)
	propagator := otel.GetTextMapPropagator()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			attrs := []attribute.KeyValue{
				semconv.HTTPMethod(r.Method),
				semconv.HTTPTarget(r.URL.RequestURI()),
				semconv.HTTPScheme(scheme(r)),
				semconv.UserAgentOriginal(r.UserAgent()),
			}
			if id := strings.TrimSpace(r.Header.Get(SessionIDHeader)); id != "" {
				attrs = append(attrs, AttrSessionID.String(id))
			}
			if id := logger.CorrelationIDFromContext(r.Context()); id != "" {
				attrs = append(attrs, AttrCorrelationID.String(id))
			}

			ctx, span := tracer.Start(ctx, r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r.WithContext(ctx))

			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
					span.SetAttributes(attribute.String("http.route", pattern))
				}
			}
			span.SetName(r.Method + " " + route)
			span.SetAttributes(semconv.HTTPStatusCode(rw.statusCode))

			if rw.statusCode >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rw.statusCode))
			}
		})
	}
}

// scheme reports the request scheme, honoring X-Forwarded-Proto behind a proxy.
func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	return "http"
}
