package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func spanAttr(attrs []attribute.KeyValue, key attribute.Key) (string, bool) {
	for _, kv := range attrs {
		if kv.Key == key {
			return kv.Value.Emit(), true
		}
	}
	return "", false
}

func TestTracing_NamesSpanByRoutePattern(t *testing.T) {
	exporter := setupTestTracer(t)

	r := chi.NewRouter()
	r.Use(RequestLogging(newTestLogger(new(bytes.Buffer))))
	r.Use(Tracing("tracing-test"))
	r.Put("/api/v1/cart/lines/{lineId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/lines/3f2a", nil)
	req.Header.Set(SessionIDHeader, "visitor-7")
	req.Header.Set(CorrelationIDHeader, "corr-9")
	r.ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "PUT /api/v1/cart/lines/{lineId}", spans[0].Name)

	session, ok := spanAttr(spans[0].Attributes, AttrSessionID)
	require.True(t, ok)
	assert.Equal(t, "visitor-7", session)

	corr, ok := spanAttr(spans[0].Attributes, AttrCorrelationID)
	require.True(t, ok)
	assert.Equal(t, "corr-9", corr)
}

func TestTracing_UnmatchedRouteAndServerError(t *testing.T) {
	exporter := setupTestTracer(t)

	r := chi.NewRouter()
	r.Use(Tracing("tracing-test"))
	r.Get("/api/v1/menu", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, "GET /api/v1/menu", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	_, ok := spanAttr(spans[0].Attributes, AttrSessionID)
	assert.False(t, ok)

	assert.Equal(t, "GET unmatched", spans[1].Name)
	assert.Equal(t, codes.Unset, spans[1].Status.Code)
}
