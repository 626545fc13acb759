package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/Luiza-Bandeira/VarandaJK/internal/domain"
	"github.com/Luiza-Bandeira/VarandaJK/internal/event"
)

// --- Mock Repositories ---

type mockCatalogRepository struct {
	mock.Mock
}

func (m *mockCatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCatalogRepository) ListAvailableItems(ctx context.Context) ([]domain.MenuItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MenuItem), args.Error(1)
}

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartLine), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	args := m.Called(ctx, sessionID, lines)
	return args.Error(0)
}

func (m *mockCartRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// --- Mock Collaborators ---

type mockItemFinder struct {
	mock.Mock
}

func (m *mockItemFinder) FindItem(ctx context.Context, itemID string) (domain.MenuItem, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(domain.MenuItem), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishCartUpdated(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	args := m.Called(ctx, sessionID, lines)
	return args.Error(0)
}

func (m *mockPublisher) PublishCartCleared(ctx context.Context, sessionID, reason string) error {
	args := m.Called(ctx, sessionID, reason)
	return args.Error(0)
}

func (m *mockPublisher) PublishOrderSubmitted(ctx context.Context, data event.OrderSubmittedData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func newQuietPublisher() *mockPublisher {
	p := new(mockPublisher)
	p.On("PublishCartUpdated", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	p.On("PublishCartCleared", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	p.On("PublishOrderSubmitted", mock.Anything, mock.Anything).Return(nil).Maybe()
	return p
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func seqLineIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("line-%d", n)
	}
}

func strPtr(s string) *string { return &s }

var (
	itemBurger = domain.MenuItem{ID: "a", CategoryID: "lanches", Name: "X-Burguer", Price: 1000, Available: true}
	itemSoda   = domain.MenuItem{ID: "b", CategoryID: "bebidas", Name: "Refrigerante", Price: 1200, Available: true}
	itemPastel = domain.MenuItem{
		ID: "c", CategoryID: "pasteis", Name: "Pastel", Price: 800, Available: true,
		OptionsTitle: "Sabor",
		Variants: []domain.Variant{
			{Value: "carne", Label: "Carne"},
			{Value: "queijo", Label: "Queijo"},
		},
		AddOn: &domain.AddOn{Label: "Catupiry (+R$ 3,00)", Surcharge: 300},
	}
)

func newTestFinder() *mockItemFinder {
	f := new(mockItemFinder)
	for _, item := range []domain.MenuItem{itemBurger, itemSoda, itemPastel} {
		f.On("FindItem", mock.Anything, item.ID).Return(item, nil).Maybe()
	}
	return f
}
