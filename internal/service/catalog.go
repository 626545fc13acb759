package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Luiza-Bandeira/VarandaJK/internal/domain"
	"github.com/Luiza-Bandeira/VarandaJK/internal/repository"
	apperrors "github.com/Luiza-Bandeira/VarandaJK/pkg/errors"
)

// CatalogState is the lifecycle of the in-memory menu.
type CatalogState string

const (
	CatalogLoading CatalogState = "loading"
	CatalogReady   CatalogState = "ready"
	CatalogError   CatalogState = "error"
)

// CodeCatalogUnavailable is returned while no menu could be loaded.
const CodeCatalogUnavailable = "CATALOG_UNAVAILABLE"

// catalogLoadTimeout bounds one shared catalog fetch.
const catalogLoadTimeout = 30 * time.Second

// CatalogService loads the menu from the catalog source and serves it from memory.
type CatalogService struct {
	repo   repository.CatalogRepository
	logger *slog.Logger

	group       singleflight.Group
	loadTimeout time.Duration

	mu       sync.RWMutex
	menu     *domain.Menu
	state    CatalogState
	loadedAt time.Time
}

// NewCatalogService creates a catalog service in the loading state.
func NewCatalogService(repo repository.CatalogRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:        repo,
		logger:      logger,
		state:       CatalogLoading,
		loadTimeout: catalogLoadTimeout,
	}
}

// Load fetches categories and available items and replaces the menu. Concurrent
// calls share one fetch, which runs detached from the caller's cancellation
// under its own timeout; a caller whose ctx ends stops waiting without
// failing the others. A failed load publishes nothing and keeps any menu that
// was already loaded.
func (s *CatalogService) Load(ctx context.Context) (*domain.Menu, error) {
	ch := s.group.DoChan("catalog", func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()
		return s.load(loadCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Menu), nil
	}
}

func (s *CatalogService) load(ctx context.Context) (*domain.Menu, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, s.fail(ctx, fmt.Errorf("list categories: %w", err))
	}

	items, err := s.repo.ListAvailableItems(ctx)
	if err != nil {
		return nil, s.fail(ctx, fmt.Errorf("list items: %w", err))
	}

	menu := domain.NewMenu(categories, items)

	s.mu.Lock()
	s.menu = menu
	s.state = CatalogReady
	s.loadedAt = time.Now().UTC()
	s.mu.Unlock()

	catalogLoadsTotal.WithLabelValues("success").Inc()
	catalogItems.Set(float64(menu.ItemCount()))

	s.logger.InfoContext(ctx, "catalog loaded",
		slog.Int("categories", len(menu.Categories)),
		slog.Int("items", menu.ItemCount()),
	)
	return menu, nil
}

func (s *CatalogService) fail(ctx context.Context, err error) error {
	s.mu.Lock()
	if s.menu == nil {
		s.state = CatalogError
	}
	s.mu.Unlock()

	catalogLoadsTotal.WithLabelValues("failure").Inc()

	s.logger.ErrorContext(ctx, "failed to load catalog",
		slog.String("error", err.Error()),
	)
	return err
}

// Menu returns the loaded menu. When nothing is loaded yet it makes one load
// attempt and reports CATALOG_UNAVAILABLE if that fails.
func (s *CatalogService) Menu(ctx context.Context) (*domain.Menu, error) {
	s.mu.RLock()
	menu := s.menu
	s.mu.RUnlock()
	if menu != nil {
		return menu, nil
	}

	menu, err := s.Load(ctx)
	if err != nil {
		return nil, apperrors.Unavailable(CodeCatalogUnavailable, "the menu could not be loaded, try again", err)
	}
	return menu, nil
}

// FindItem returns an available item of the menu.
func (s *CatalogService) FindItem(ctx context.Context, itemID string) (domain.MenuItem, error) {
	menu, err := s.Menu(ctx)
	if err != nil {
		return domain.MenuItem{}, err
	}
	item, ok := menu.Item(itemID)
	if !ok {
		return domain.MenuItem{}, apperrors.NotFound("menu item", itemID)
	}
	return item, nil
}

// State reports the catalog lifecycle state.
func (s *CatalogService) State() CatalogState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// LoadedAt is when the current menu was loaded.
func (s *CatalogService) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
