package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Luiza-Bandeira/VarandaJK/internal/domain"
	"github.com/Luiza-Bandeira/VarandaJK/internal/event"
	"github.com/Luiza-Bandeira/VarandaJK/internal/repository"
	apperrors "github.com/Luiza-Bandeira/VarandaJK/pkg/errors"
)

// EventPublisher publishes cart and order events.
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, sessionID string, lines []domain.CartLine) error
	PublishCartCleared(ctx context.Context, sessionID, reason string) error
	PublishOrderSubmitted(ctx context.Context, data event.OrderSubmittedData) error
}

// ItemFinder resolves a menu item by id.
type ItemFinder interface {
	FindItem(ctx context.Context, itemID string) (domain.MenuItem, error)
}

// AddItemInput holds the parameters for adding an item to the cart.
type AddItemInput struct {
	ItemID   string  `json:"item_id" validate:"notblank"`
	Quantity int     `json:"quantity" validate:"max=99"`
	Variant  *string `json:"variant"`
	AddOn    bool    `json:"add_on"`
}

// SetQuantityInput holds the parameters for replacing a line quantity.
type SetQuantityInput struct {
	Quantity *int `json:"quantity" validate:"required,max=99"`
}

// CartView is the cart as returned to clients, with totals computed on read.
type CartView struct {
	Lines       []domain.CartLine `json:"lines"`
	ItemCount   int               `json:"item_count"`
	Subtotal    domain.Money      `json:"subtotal"`
	DeliveryFee domain.Money      `json:"delivery_fee"`
	Total       domain.Money      `json:"total"`
}

// cartSession is the in-memory cart of one visitor. dirty is set while the
// repository copy lags behind cart.
type cartSession struct {
	mu       sync.Mutex
	cart     *domain.Cart
	dirty    bool
	lastSeen time.Time
}

// CartService implements the business logic for cart operations. Each visitor
// session gets its own cart guarded by its own mutex; every mutation is written
// through to the repository.
type CartService struct {
	repo        repository.CartRepository
	items       ItemFinder
	events      EventPublisher
	logger      *slog.Logger
	deliveryFee domain.Money
	idle        time.Duration

	mu       sync.Mutex
	sessions map[string]*cartSession

	nowFunc   func() time.Time // injectable clock for testing
	newLineID func() string
}

// NewCartService creates a new cart service.
func NewCartService(
	repo repository.CartRepository,
	items ItemFinder,
	events EventPublisher,
	logger *slog.Logger,
	deliveryFee domain.Money,
	idle time.Duration,
) *CartService {
	return &CartService{
		repo:        repo,
		items:       items,
		events:      events,
		logger:      logger,
		deliveryFee: deliveryFee,
		idle:        idle,
		sessions:    make(map[string]*cartSession),
		nowFunc:     time.Now,
	}
}

// DeliveryFee is the flat fee added to every order.
func (s *CartService) DeliveryFee() domain.Money {
	return s.deliveryFee
}

// GetCart returns the cart of a session. A session without a cart gets an empty one.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*CartView, error) {
	cs, err := s.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer cs.mu.Unlock()

	return s.view(cs.cart), nil
}

// AddItem adds an item snapshot from the menu to the cart, merging with an
// existing line of the same item, variant and add-on state.
func (s *CartService) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*CartView, error) {
	if strings.TrimSpace(input.ItemID) == "" {
		return nil, apperrors.InvalidInput("item id is required")
	}

	item, err := s.items.FindItem(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}

	cs, err := s.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	line, err := cs.cart.Add(item, input.Quantity, input.Variant, input.AddOn)
	if err != nil {
		cs.mu.Unlock()
		if errors.Is(err, domain.ErrUnknownVariant) || errors.Is(err, domain.ErrQuantityLimit) {
			return nil, apperrors.InvalidInput(err.Error())
		}
		return nil, err
	}

	s.persist(ctx, sessionID, cs)
	view := s.view(cs.cart)
	cs.mu.Unlock()

	s.publishUpdated(ctx, sessionID, view.Lines)

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.String("item_id", item.ID),
		slog.String("line_id", line.LineID),
		slog.Int("quantity", line.Quantity),
	)

	return view, nil
}

// SetQuantity replaces the quantity of a line. A quantity of zero or less
// removes the line.
func (s *CartService) SetQuantity(ctx context.Context, sessionID, lineID string, quantity int) (*CartView, error) {
	if lineID == "" {
		return nil, apperrors.InvalidInput("line id is required")
	}

	cs, err := s.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found, err := cs.cart.SetQuantity(lineID, quantity)
	switch {
	case !found:
		cs.mu.Unlock()
		return nil, apperrors.NotFound("cart line", lineID)
	case err != nil:
		cs.mu.Unlock()
		return nil, apperrors.InvalidInput(err.Error())
	}

	s.persist(ctx, sessionID, cs)
	view := s.view(cs.cart)
	cs.mu.Unlock()

	s.publishUpdated(ctx, sessionID, view.Lines)

	s.logger.InfoContext(ctx, "cart line quantity updated",
		slog.String("session_id", sessionID),
		slog.String("line_id", lineID),
		slog.Int("quantity", quantity),
	)

	return view, nil
}

// RemoveLine removes a line from the cart.
func (s *CartService) RemoveLine(ctx context.Context, sessionID, lineID string) (*CartView, error) {
	if lineID == "" {
		return nil, apperrors.InvalidInput("line id is required")
	}

	cs, err := s.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !cs.cart.Remove(lineID) {
		cs.mu.Unlock()
		return nil, apperrors.NotFound("cart line", lineID)
	}

	s.persist(ctx, sessionID, cs)
	view := s.view(cs.cart)
	cs.mu.Unlock()

	s.publishUpdated(ctx, sessionID, view.Lines)

	s.logger.InfoContext(ctx, "cart line removed",
		slog.String("session_id", sessionID),
		slog.String("line_id", lineID),
	)

	return view, nil
}

// Clear empties the cart. Clearing an empty cart is a no-op.
func (s *CartService) Clear(ctx context.Context, sessionID string) (*CartView, error) {
	cs, err := s.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	wasEmpty := cs.cart.IsEmpty()
	if !wasEmpty {
		cs.cart.Clear()
		s.persist(ctx, sessionID, cs)
	}
	view := s.view(cs.cart)
	cs.mu.Unlock()

	if !wasEmpty {
		s.publishCleared(ctx, sessionID, event.ClearReasonUser)
		s.logger.InfoContext(ctx, "cart cleared",
			slog.String("session_id", sessionID),
		)
	}

	return view, nil
}

// checkout runs fn with a snapshot of the session's lines while holding the
// session lock. When fn succeeds the cart is cleared and persisted; when it
// fails the cart is left untouched.
func (s *CartService) checkout(ctx context.Context, sessionID string, fn func(lines []domain.CartLine) error) error {
	cs, err := s.acquire(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := fn(cs.cart.Lines()); err != nil {
		cs.mu.Unlock()
		return err
	}

	cs.cart.Clear()
	s.persist(ctx, sessionID, cs)
	cs.mu.Unlock()
	return nil
}

// acquire returns the session's cart with its mutex held, rehydrating it from
// the repository on first access. Callers must unlock cs.mu.
func (s *CartService) acquire(ctx context.Context, sessionID string) (*cartSession, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	s.mu.Lock()
	cs, ok := s.sessions[sessionID]
	if !ok {
		cs = &cartSession{}
		s.sessions[sessionID] = cs
		activeCarts.Set(float64(len(s.sessions)))
	}
	cs.lastSeen = s.nowFunc()
	s.mu.Unlock()

	cs.mu.Lock()
	if cs.cart == nil {
		cs.cart = domain.NewCart(s.rehydrate(ctx, sessionID))
		if s.newLineID != nil {
			cs.cart.SetIDGenerator(s.newLineID)
		}
	}
	return cs, nil
}

// rehydrate loads persisted lines. Any failure degrades to an empty cart.
func (s *CartService) rehydrate(ctx context.Context, sessionID string) []domain.CartLine {
	lines, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to load persisted cart, starting empty",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}
	return lines
}

// persist writes the full line list through to the repository, deleting the
// stored copy once the cart is empty. Failures are logged, the in-memory cart
// stays authoritative and the session is marked dirty. Callers hold cs.mu.
func (s *CartService) persist(ctx context.Context, sessionID string, cs *cartSession) {
	var err error
	if cs.cart.IsEmpty() {
		err = s.repo.Delete(ctx, sessionID)
	} else {
		err = s.repo.Save(ctx, sessionID, cs.cart.Lines())
	}

	cs.dirty = err != nil
	if err != nil {
		s.logger.WarnContext(ctx, "failed to persist cart",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *CartService) view(cart *domain.Cart) *CartView {
	return &CartView{
		Lines:       cart.Lines(),
		ItemCount:   cart.ItemCount(),
		Subtotal:    cart.Subtotal(),
		DeliveryFee: s.deliveryFee,
		Total:       cart.Total(s.deliveryFee),
	}
}

func (s *CartService) publishUpdated(ctx context.Context, sessionID string, lines []domain.CartLine) {
	if err := s.events.PublishCartUpdated(ctx, sessionID, lines); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *CartService) publishCleared(ctx context.Context, sessionID, reason string) {
	if err := s.events.PublishCartCleared(ctx, sessionID, reason); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}

// StartJanitor evicts idle sessions from memory every idle interval until ctx
// is done. Evicted carts rehydrate from the repository on next access.
func (s *CartService) StartJanitor(ctx context.Context) {
	if s.idle <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(s.idle)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.evictIdle(ctx); n > 0 {
					s.logger.DebugContext(ctx, "evicted idle cart sessions", slog.Int("count", n))
				}
			}
		}
	}()
}

// evictIdle drops sessions not seen within the idle window. Sessions whose
// lock is held are skipped. A dirty session is written to the repository
// first and stays in memory while that write keeps failing.
func (s *CartService) evictIdle(ctx context.Context) int {
	evicted := 0
	pending := make(map[string]*cartSession)

	s.mu.Lock()
	now := s.nowFunc()
	for id, cs := range s.sessions {
		if now.Sub(cs.lastSeen) <= s.idle {
			continue
		}
		if !cs.mu.TryLock() {
			continue
		}
		if cs.dirty {
			pending[id] = cs
			continue
		}
		delete(s.sessions, id)
		cs.mu.Unlock()
		evicted++
	}
	s.mu.Unlock()

	for id, cs := range pending {
		s.persist(ctx, id, cs)

		s.mu.Lock()
		if !cs.dirty && s.sessions[id] == cs && s.nowFunc().Sub(cs.lastSeen) > s.idle {
			delete(s.sessions, id)
			evicted++
		}
		s.mu.Unlock()
		cs.mu.Unlock()
	}

	s.mu.Lock()
	activeCarts.Set(float64(len(s.sessions)))
	s.mu.Unlock()
	return evicted
}

// sessionCount returns the number of sessions held in memory (used in tests).
func (s *CartService) sessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
