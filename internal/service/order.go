package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Luiza-Bandeira/VarandaJK/internal/domain"
	"github.com/Luiza-Bandeira/VarandaJK/internal/event"
	apperrors "github.com/Luiza-Bandeira/VarandaJK/pkg/errors"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/idempotency"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/validator"
)

// AddressInput is the delivery address typed at checkout.
type AddressInput struct {
	Street    string `json:"street" validate:"notblank"`
	Number    string `json:"number"`
	District  string `json:"district"`
	Reference string `json:"reference"`
}

// SubmitOrderInput holds the checkout form.
type SubmitOrderInput struct {
	CustomerName  string               `json:"customer_name" validate:"notblank"`
	Address       AddressInput         `json:"address"`
	PaymentMethod domain.PaymentMethod `json:"payment_method" validate:"required,oneof=cash card pix"`
}

// OrderResult is the formatted order and the link that hands it to WhatsApp.
type OrderResult struct {
	WhatsAppURL string       `json:"whatsapp_url"`
	Message     string       `json:"message"`
	ItemCount   int          `json:"item_count"`
	Subtotal    domain.Money `json:"subtotal"`
	DeliveryFee domain.Money `json:"delivery_fee"`
	Total       domain.Money `json:"total"`
}

// OrderService turns a session's cart into a WhatsApp order message.
type OrderService struct {
	carts      *CartService
	events     EventPublisher
	idem       idempotency.Store
	restaurant string
	recipient  string
	logger     *slog.Logger
}

// NewOrderService creates a new order service. idem may be nil, in which case
// Idempotency-Key values are ignored.
func NewOrderService(
	carts *CartService,
	events EventPublisher,
	idem idempotency.Store,
	restaurant, recipient string,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		carts:      carts,
		events:     events,
		idem:       idem,
		restaurant: restaurant,
		recipient:  recipient,
		logger:     logger,
	}
}

// Submit validates the checkout form, formats the order for the session's cart
// and clears the cart. Nothing is mutated when validation fails or the cart is
// empty. A non-empty idempotencyKey already used by the session is rejected
// with CONFLICT.
func (s *OrderService) Submit(ctx context.Context, sessionID, idempotencyKey string, input SubmitOrderInput) (*OrderResult, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	claimedKey := ""
	if s.idem != nil && idempotencyKey != "" {
		key := sessionID + ":" + idempotencyKey
		claimed, err := s.idem.Claim(ctx, key)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "idempotency store unavailable, submitting without it",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		case !claimed:
			return nil, apperrors.Conflict("order already submitted")
		default:
			claimedKey = key
		}
	}

	details := domain.OrderDetails{
		CustomerName: strings.TrimSpace(input.CustomerName),
		Address: domain.Address{
			Street:    input.Address.Street,
			Number:    input.Address.Number,
			District:  input.Address.District,
			Reference: input.Address.Reference,
		},
		Payment: input.PaymentMethod,
	}

	var (
		result *OrderResult
		lines  []domain.CartLine
	)
	err := s.carts.checkout(ctx, sessionID, func(cartLines []domain.CartLine) error {
		if len(cartLines) == 0 {
			return apperrors.InvalidInput("cart is empty")
		}
		summary := domain.OrderSummary{
			Restaurant:  s.restaurant,
			Lines:       cartLines,
			DeliveryFee: s.carts.DeliveryFee(),
		}
		message := domain.FormatOrderMessage(summary, details)
		result = &OrderResult{
			WhatsAppURL: domain.WhatsAppLink(s.recipient, message),
			Message:     message,
			ItemCount:   itemCount(cartLines),
			Subtotal:    summary.Subtotal(),
			DeliveryFee: summary.DeliveryFee,
			Total:       summary.Total(),
		}
		lines = cartLines
		return nil
	})
	if err != nil {
		s.release(ctx, claimedKey)
		return nil, err
	}

	ordersSubmittedTotal.WithLabelValues(string(input.PaymentMethod)).Inc()

	if err := s.events.PublishOrderSubmitted(ctx, event.OrderSubmittedData{
		SessionID:     sessionID,
		CustomerName:  details.CustomerName,
		Address:       details.Address.String(),
		PaymentMethod: details.Payment,
		Lines:         lines,
		ItemCount:     result.ItemCount,
		Subtotal:      result.Subtotal,
		DeliveryFee:   result.DeliveryFee,
		Total:         result.Total,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.submitted event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
	s.carts.publishCleared(ctx, sessionID, event.ClearReasonOrder)

	s.logger.InfoContext(ctx, "order submitted",
		slog.String("session_id", sessionID),
		slog.String("payment_method", string(input.PaymentMethod)),
		slog.Int("item_count", result.ItemCount),
		slog.String("total", result.Total.String()),
	)

	return result, nil
}

func (s *OrderService) release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.idem.Release(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to release idempotency key",
			slog.String("error", err.Error()),
		)
	}
}

func itemCount(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
