package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestProducer(w *fakeWriter) *Producer {
	return &Producer{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "varandajk.order.submitted", Topic("order", "submitted"))
}

func TestNewEvent(t *testing.T) {
	evt, err := NewEvent("cart.updated", "sess-1", "cart", "varandajk", map[string]int{"item_count": 3})
	require.NoError(t, err)

	assert.Len(t, evt.EventID, 36)
	assert.Equal(t, 1, evt.Version)
	assert.JSONEq(t, `{"item_count":3}`, string(evt.Data))

	evt.WithCorrelationID("corr-1").WithMetadata("k", "v")
	raw, err := evt.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "corr-1", decoded.CorrelationID)
	assert.Equal(t, "v", decoded.Metadata["k"])

	var payload map[string]int
	require.NoError(t, decoded.UnmarshalData(&payload))
	assert.Equal(t, 3, payload["item_count"])
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	evt, err := NewEvent("order.submitted", "sess-9", "order", "varandajk", map[string]string{"payment": "pix"})
	require.NoError(t, err)
	evt.WithCorrelationID("corr-9")

	require.NoError(t, p.Publish(context.Background(), Topic("order", "submitted"), evt))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "varandajk.order.submitted", msg.Topic)
	assert.Equal(t, "sess-9", string(msg.Key))

	carrier := NewHeaderCarrier(&msg.Headers)
	assert.Equal(t, "order.submitted", carrier.Get("event_type"))
	assert.Equal(t, "corr-9", carrier.Get("correlation_id"))
}

func TestProducer_PublishError(t *testing.T) {
	p := newTestProducer(&fakeWriter{err: errors.New("leader not available")})

	evt, err := NewEvent("cart.cleared", "sess-1", "cart", "varandajk", struct{}{})
	require.NoError(t, err)

	err = p.Publish(context.Background(), "t", evt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newTestProducer(w).Close())
	assert.True(t, w.closed)
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	assert.Error(t, PingBrokers(context.Background(), nil))
}

func TestHeaderCarrier_SetReplaces(t *testing.T) {
	headers := []kafka.Header{{Key: "traceparent", Value: []byte("old")}}
	c := NewHeaderCarrier(&headers)

	c.Set("traceparent", "new")
	c.Set("tracestate", "x")

	assert.Equal(t, "new", c.Get("traceparent"))
	assert.ElementsMatch(t, []string{"traceparent", "tracestate"}, c.Keys())
}
