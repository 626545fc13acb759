package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Luiza-Bandeira/VarandaJK/internal/service"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/httputil"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/middleware"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/validator"
)

// IdempotencyKeyHeader lets clients mark retries of the same order submission.
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 128

// OrderHandler handles order submission.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// SubmitOrder handles POST /api/v1/orders
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitOrderInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLength {
		key = key[:maxIdempotencyKeyLength]
	}

	result, err := h.service.Submit(r.Context(), middleware.SessionIDFromRequest(r), key, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, result)
}
