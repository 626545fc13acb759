package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Luiza-Bandeira/VarandaJK/internal/domain"
	"github.com/Luiza-Bandeira/VarandaJK/internal/event"
	apperrors "github.com/Luiza-Bandeira/VarandaJK/pkg/errors"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/idempotency"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/validator"
)

const testRecipient = "5538999273737"

type failingStore struct{}

func (failingStore) Claim(context.Context, string) (bool, error) { return false, errors.New("redis down") }
func (failingStore) Release(context.Context, string) error { return errors.New("redis down") }

func newTestOrderService(pub *mockPublisher, idem idempotency.Store) (*OrderService, *CartService, *mockCartRepository) {
	repo := emptyRepo("s1")
	carts := newTestCartService(repo, pub)
	orders := NewOrderService(carts, pub, idem, "VARANDA JK", testRecipient, newTestLogger())
	return orders, carts, repo
}

func validOrderInput() SubmitOrderInput {
	return SubmitOrderInput{
		CustomerName:  "Maria",
		Address:       AddressInput{Street: "Rua A", Number: "10", District: "Centro"},
		PaymentMethod: domain.PaymentPix,
	}
}

func fillCart(t *testing.T, carts *CartService) {
	t.Helper()
	ctx := context.Background()
	_, err := carts.AddItem(ctx, "s1", AddItemInput{ItemID: "a", Quantity: 2})
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, "s1", AddItemInput{ItemID: "b", Quantity: 1})
	require.NoError(t, err)
}

func TestSubmit_Success(t *testing.T) {
	pub := newQuietPublisher()
	orders, carts, _ := newTestOrderService(pub, nil)
	ctx := context.Background()
	fillCart(t, carts)

	result, err := orders.Submit(ctx, "s1", "", validOrderInput())
	require.NoError(t, err)

	assert.Equal(t, "32.00", result.Subtotal.String())
	assert.Equal(t, "5.00", result.DeliveryFee.String())
	assert.Equal(t, "37.00", result.Total.String())
	assert.Equal(t, 3, result.ItemCount)

	assert.True(t, strings.HasPrefix(result.Message, "Olá, VARANDA JK! Gostaria de fazer o seguinte pedido:\n\n"))
	assert.Contains(t, result.Message, "2x X-Burguer - R$ 20.00\n")
	assert.Contains(t, result.Message, "1x Refrigerante - R$ 12.00\n")
	assert.Contains(t, result.Message, "*Total do Pedido: R$ 37.00*")
	assert.Contains(t, result.Message, "Nome do Cliente: Maria\n")
	assert.Contains(t, result.Message, "Endereço de Entrega: Rua A, 10, Centro\n")
	assert.Contains(t, result.Message, "Forma de Pagamento: Pix\n")

	assert.Equal(t, "https://wa.me/"+testRecipient+"?text="+domain.EncodeURIComponent(result.Message), result.WhatsAppURL)
	assert.NotContains(t, result.WhatsAppURL, "+")

	view, err := carts.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, view.Lines)

	pub.AssertCalled(t, "PublishOrderSubmitted", mock.Anything, mock.MatchedBy(func(d event.OrderSubmittedData) bool {
		return d.SessionID == "s1" && d.Total == 3700 && len(d.Lines) == 2
	}))
	pub.AssertCalled(t, "PublishCartCleared", mock.Anything, "s1", event.ClearReasonOrder)
}

func TestSubmit_SubmittedCartSurvivesFailedDeleteAndEviction(t *testing.T) {
	submitted := []domain.CartLine{
		{LineID: "p1", ItemID: "a", Name: "X-Burguer", UnitPrice: 1000, Quantity: 2},
	}
	repo := new(mockCartRepository)
	repo.On("Get", mock.Anything, "s1").Return(submitted, nil)
	repo.On("Delete", mock.Anything, "s1").Return(errors.New("redis down"))
	carts := newTestCartService(repo, newQuietPublisher())
	orders := NewOrderService(carts, newQuietPublisher(), nil, "VARANDA JK", testRecipient, newTestLogger())
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	carts.nowFunc = func() time.Time { return now }

	_, err := orders.Submit(ctx, "s1", "", validOrderInput())
	require.NoError(t, err)

	now = now.Add(time.Hour)
	assert.Equal(t, 0, carts.evictIdle(ctx))

	view, err := carts.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	repo.AssertNumberOfCalls(t, "Get", 1)
}

func TestSubmit_EmptyNameLeavesCartUnchanged(t *testing.T) {
	orders, carts, repo := newTestOrderService(newQuietPublisher(), nil)
	ctx := context.Background()
	fillCart(t, carts)

	input := validOrderInput()
	input.CustomerName = "   "

	_, err := orders.Submit(ctx, "s1", "", input)
	require.Error(t, err)

	var valErr *validator.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, valErr.Fields(), "customer_name")

	view, err := carts.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, view.Lines, 2)
	repo.AssertNumberOfCalls(t, "Save", 2)
}

func TestSubmit_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitOrderInput)
		field  string
	}{
		{"missing street", func(in *SubmitOrderInput) { in.Address.Street = "" }, "street"},
		{"missing payment", func(in *SubmitOrderInput) { in.PaymentMethod = "" }, "payment_method"},
		{"unknown payment", func(in *SubmitOrderInput) { in.PaymentMethod = "boleto" }, "payment_method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, carts, _ := newTestOrderService(newQuietPublisher(), nil)
			fillCart(t, carts)

			input := validOrderInput()
			tt.mutate(&input)

			_, err := orders.Submit(context.Background(), "s1", "", input)
			var valErr *validator.ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Contains(t, valErr.Fields(), tt.field)
		})
	}
}

func TestSubmit_EmptyCart(t *testing.T) {
	pub := newQuietPublisher()
	orders, _, _ := newTestOrderService(pub, nil)

	_, err := orders.Submit(context.Background(), "s1", "", validOrderInput())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	pub.AssertNotCalled(t, "PublishOrderSubmitted", mock.Anything, mock.Anything)
}

func TestSubmit_RepeatedIdempotencyKeyConflicts(t *testing.T) {
	orders, carts, _ := newTestOrderService(newQuietPublisher(), idempotency.NewMemoryStore(time.Minute))
	ctx := context.Background()

	fillCart(t, carts)
	_, err := orders.Submit(ctx, "s1", "key-1", validOrderInput())
	require.NoError(t, err)

	fillCart(t, carts)
	_, err = orders.Submit(ctx, "s1", "key-1", validOrderInput())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	view, err := carts.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, view.Lines, 2)
}

func TestSubmit_FailedSubmitReleasesKey(t *testing.T) {
	orders, carts, _ := newTestOrderService(newQuietPublisher(), idempotency.NewMemoryStore(time.Minute))
	ctx := context.Background()

	_, err := orders.Submit(ctx, "s1", "key-1", validOrderInput())
	require.Error(t, err)

	fillCart(t, carts)
	_, err = orders.Submit(ctx, "s1", "key-1", validOrderInput())
	require.NoError(t, err)
}

func TestSubmit_IdempotencyStoreErrorIsNotFatal(t *testing.T) {
	orders, carts, _ := newTestOrderService(newQuietPublisher(), failingStore{})
	fillCart(t, carts)

	_, err := orders.Submit(context.Background(), "s1", "key-1", validOrderInput())
	require.NoError(t, err)
}
