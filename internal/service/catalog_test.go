package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Luiza-Bandeira/VarandaJK/internal/domain"
	apperrors "github.com/Luiza-Bandeira/VarandaJK/pkg/errors"
)

func testCategories() []domain.Category {
	return []domain.Category{
		{ID: "2", Name: "Bebidas", Icon: "CupSoda", SortOrder: 2},
		{ID: "1", Name: "Lanches", Icon: "Sandwich", SortOrder: 1},
	}
}

func testItems() []domain.MenuItem {
	return []domain.MenuItem{
		{ID: "10", CategoryID: "1", Name: "X-Burguer", Price: 1000, Available: true},
		{ID: "11", CategoryID: "2", Name: "Suco", Price: 700, Available: true},
	}
}

func TestCatalogLoad_Success(t *testing.T) {
	repo := new(mockCatalogRepository)
	svc := NewCatalogService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("ListCategories", mock.Anything).Return(testCategories(), nil)
	repo.On("ListAvailableItems", mock.Anything).Return(testItems(), nil)

	assert.Equal(t, CatalogLoading, svc.State())

	menu, err := svc.Load(ctx)
	require.NoError(t, err)
	require.Len(t, menu.Categories, 2)
	assert.Equal(t, "Lanches", menu.Categories[0].Name)
	assert.Equal(t, "lanches", menu.Categories[0].Key)
	assert.Equal(t, "Bebidas", menu.Categories[1].Name)
	assert.Len(t, menu.ItemsByCategory["1"], 1)
	assert.Equal(t, 2, menu.ItemCount())
	assert.Equal(t, CatalogReady, svc.State())
	assert.False(t, svc.LoadedAt().IsZero())
}

func TestCatalogLoad_CategoriesFailure(t *testing.T) {
	repo := new(mockCatalogRepository)
	svc := NewCatalogService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("ListCategories", mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := svc.Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list categories")
	assert.Equal(t, CatalogError, svc.State())
	repo.AssertNotCalled(t, "ListAvailableItems", mock.Anything)
}

func TestCatalogLoad_ItemsFailurePublishesNothing(t *testing.T) {
	repo := new(mockCatalogRepository)
	svc := NewCatalogService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("ListCategories", mock.Anything).Return(testCategories(), nil)
	repo.On("ListAvailableItems", mock.Anything).Return(nil, errors.New("timeout"))

	_, err := svc.Load(ctx)
	require.Error(t, err)
	assert.Equal(t, CatalogError, svc.State())
	assert.True(t, svc.LoadedAt().IsZero())
}

func TestCatalogMenu_UnavailableError(t *testing.T) {
	repo := new(mockCatalogRepository)
	svc := NewCatalogService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("ListCategories", mock.Anything).Return(nil, errors.New("down"))

	_, err := svc.Menu(ctx)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, CodeCatalogUnavailable, appErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
}

func TestCatalogMenu_LoadsOnDemandAfterFailure(t *testing.T) {
	repo := new(mockCatalogRepository)
	svc := NewCatalogService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("ListCategories", mock.Anything).Return(nil, errors.New("down")).Once()
	repo.On("ListCategories", mock.Anything).Return(testCategories(), nil).Once()
	repo.On("ListAvailableItems", mock.Anything).Return(testItems(), nil).Once()

	_, err := svc.Load(ctx)
	require.Error(t, err)

	menu, err := svc.Menu(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, menu.ItemCount())
	assert.Equal(t, CatalogReady, svc.State())

	// Served from memory now.
	_, err = svc.Menu(ctx)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "ListCategories", 2)
}

func TestCatalogLoad_FailedReloadKeepsMenu(t *testing.T) {
	repo := new(mockCatalogRepository)
	svc := NewCatalogService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("ListCategories", mock.Anything).Return(testCategories(), nil).Once()
	repo.On("ListAvailableItems", mock.Anything).Return(testItems(), nil).Once()
	repo.On("ListCategories", mock.Anything).Return(nil, errors.New("down")).Once()

	_, err := svc.Load(ctx)
	require.NoError(t, err)
	_, err = svc.Load(ctx)
	require.Error(t, err)

	assert.Equal(t, CatalogReady, svc.State())
	menu, err := svc.Menu(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, menu.ItemCount())
}

func TestCatalogLoad_ConcurrentCallersSucceed(t *testing.T) {
	repo := new(mockCatalogRepository)
	svc := NewCatalogService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("ListCategories", mock.Anything).Return(testCategories(), nil)
	repo.On("ListAvailableItems", mock.Anything).Return(testItems(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			menu, err := svc.Menu(ctx)
			assert.NoError(t, err)
			assert.NotNil(t, menu)
		}()
	}
	wg.Wait()
	assert.Equal(t, CatalogReady, svc.State())
}

func TestCatalogLoad_CanceledCallerDoesNotFailSharedLoad(t *testing.T) {
	repo := new(mockCatalogRepository)
	svc := NewCatalogService(repo, newTestLogger())

	started := make(chan struct{})
	release := make(chan struct{})
	fetchErrs := make(chan error, 2)
	var once sync.Once
	repo.On("ListCategories", mock.Anything).Run(func(args mock.Arguments) {
		once.Do(func() { close(started) })
		<-release
		fetchErrs <- args.Get(0).(context.Context).Err()
	}).Return(testCategories(), nil)
	repo.On("ListAvailableItems", mock.Anything).Return(testItems(), nil)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Load(first)
		firstErr <- err
	}()

	<-started
	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	menu, err := svc.Menu(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, menu.ItemCount())
	assert.NoError(t, <-fetchErrs)
	assert.Equal(t, CatalogReady, svc.State())
}

func TestFindItem(t *testing.T) {
	repo := new(mockCatalogRepository)
	svc := NewCatalogService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("ListCategories", mock.Anything).Return(testCategories(), nil)
	repo.On("ListAvailableItems", mock.Anything).Return(testItems(), nil)

	item, err := svc.FindItem(ctx, "10")
	require.NoError(t, err)
	assert.Equal(t, "X-Burguer", item.Name)

	_, err = svc.FindItem(ctx, "99")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
