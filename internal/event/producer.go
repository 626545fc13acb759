package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Luiza-Bandeira/VarandaJK/internal/domain"
	pkgkafka "github.com/Luiza-Bandeira/VarandaJK/pkg/kafka"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/logger"
)

// Topics for menu service events.
var (
	TopicCartUpdated    = pkgkafka.Topic("cart", "updated")
	TopicCartCleared    = pkgkafka.Topic("cart", "cleared")
	TopicOrderSubmitted = pkgkafka.Topic("order", "submitted")
)

// Aggregate types.
const (
	AggregateTypeCart  = "cart"
	AggregateTypeOrder = "order"
)

// Source identifies events published by this service.
const Source = "varandajk-menu"

// Reasons a cart is cleared.
const (
	ClearReasonUser  = "user"
	ClearReasonOrder = "order_submitted"
)

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID string            `json:"session_id"`
	Lines     []domain.CartLine `json:"lines"`
	ItemCount int               `json:"item_count"`
	Subtotal  domain.Money      `json:"subtotal"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

// OrderSubmittedData is the payload for an order.submitted event.
type OrderSubmittedData struct {
	SessionID     string               `json:"session_id"`
	CustomerName  string               `json:"customer_name"`
	Address       string               `json:"address"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Lines         []domain.CartLine    `json:"lines"`
	ItemCount     int                  `json:"item_count"`
	Subtotal      domain.Money         `json:"subtotal"`
	DeliveryFee   domain.Money         `json:"delivery_fee"`
	Total         domain.Money         `json:"total"`
}

// Producer publishes menu service events to Kafka. A Producer without a Kafka
// producer drops events, which is how the service runs with Kafka disabled.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer. kafka may be nil.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// Enabled reports whether events reach a broker.
func (p *Producer) Enabled() bool {
	return p != nil && p.kafka != nil
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	data := CartUpdatedData{
		SessionID: sessionID,
		Lines:     lines,
		ItemCount: count,
		Subtotal:  domain.Subtotal(lines),
	}
	return p.publish(ctx, TopicCartUpdated, "cart.updated", sessionID, AggregateTypeCart, data)
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID, reason string) error {
	data := CartClearedData{SessionID: sessionID, Reason: reason}
	return p.publish(ctx, TopicCartCleared, "cart.cleared", sessionID, AggregateTypeCart, data)
}

// PublishOrderSubmitted publishes an order.submitted event.
func (p *Producer) PublishOrderSubmitted(ctx context.Context, data OrderSubmittedData) error {
	return p.publish(ctx, TopicOrderSubmitted, "order.submitted", data.SessionID, AggregateTypeOrder, data)
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, data any) error {
	if !p.Enabled() {
		return nil
	}

	evt, err := pkgkafka.NewEvent(eventType, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("event_type", eventType),
		slog.String("session_id", aggregateID),
	)
	return nil
}
