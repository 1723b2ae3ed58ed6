package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	sharedCache "github.com/davicafu/hexashop/internal/shared/infra/platform/cache"
	"github.com/davicafu/hexashop/tests/mocks"
)

type serviceFixture struct {
	repo   *mocks.InMemoryProductRepo
	cache  *mocks.DummyCache
	live   *mocks.RecordingBus
	events *mocks.RecordingBus
	svc    *ProductService
}

func newServiceFixture(seed ...*catalogDomain.Product) serviceFixture {
	f := serviceFixture{
		repo:   mocks.NewInMemoryProductRepo(seed...),
		cache:  mocks.NewDummyCache(),
		live:   &mocks.RecordingBus{},
		events: &mocks.RecordingBus{},
	}
	f.svc = NewProductService(f.repo, f.cache, f.live, f.events, zap.NewNop())
	return f
}

func validInput() CreateProductInput {
	return CreateProductInput{Title: "Mate", Code: "M-01", Price: 12.5, Stock: 3, Category: "Bazar", Status: true}
}

type failingCreateRepo struct {
	*mocks.InMemoryProductRepo
}

func (r failingCreateRepo) Create(context.Context, *catalogDomain.Product) error {
	return errors.New("write concern failed")
}

func TestCreateProduct_PersistsAndBroadcastsCatalog(t *testing.T) {
	// Arrange
	existing := &catalogDomain.Product{ID: uuid.New(), Title: "Yerba", Code: "Y-1", Price: 5, Category: "Bazar"}
	f := newServiceFixture(existing)

	// Act
	p, err := f.svc.CreateProduct(context.Background(), validInput())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, f.repo.Len())
	assert.Equal(t, catalogDomain.DefaultThumbnail, p.Thumbnail)

	require.Equal(t, []string{catalogDomain.LiveProductAdded}, f.live.Types())
	var broadcast catalogDomain.ProductsBroadcast
	require.NoError(t, f.live.Decode(0, &broadcast))
	assert.Equal(t, MsgProductAdded, broadcast.Message)
	assert.Len(t, broadcast.Products, 2, "se envía el catálogo completo")

	require.Equal(t, []string{catalogDomain.ProductCreated}, f.events.Types())
	assert.Equal(t, p.ID.String(), f.events.Events[0].Key)

	assert.Eventually(t, func() bool {
		return f.cache.Has(catalogDomain.ProductCacheKeyByID(p.ID))
	}, time.Second, 10*time.Millisecond)
}

func TestCreateProduct_InvalidInputPublishesNothing(t *testing.T) {
	f := newServiceFixture()
	in := validInput()
	in.Price = 0

	_, err := f.svc.CreateProduct(context.Background(), in)

	assert.ErrorIs(t, err, catalogDomain.ErrInvalidProduct)
	assert.Empty(t, f.live.Types())
	assert.Empty(t, f.events.Types())
	assert.Equal(t, 0, f.repo.Len())
}

func TestCreateProduct_RepositoryFailureIsReturned(t *testing.T) {
	f := newServiceFixture()
	svc := NewProductService(failingCreateRepo{f.repo}, f.cache, f.live, f.events, zap.NewNop())

	_, err := svc.CreateProduct(context.Background(), validInput())

	assert.EqualError(t, err, "write concern failed")
	assert.Empty(t, f.live.Types(), "un fallo nunca se anuncia como alta")
}

func TestCreateProduct_LiveFailureDoesNotFailWrite(t *testing.T) {
	f := newServiceFixture()
	f.live.Err = errors.New("no subscribers")

	_, err := f.svc.CreateProduct(context.Background(), validInput())

	assert.NoError(t, err)
	assert.Equal(t, 1, f.repo.Len())
}

func TestGetProductByID_CacheHitSkipsRepository(t *testing.T) {
	// Arrange: solo existe en caché
	f := newServiceFixture()
	cached := &catalogDomain.Product{ID: uuid.New(), Title: "Cacheado", Code: "C", Price: 1, Category: "x"}
	require.NoError(t, f.cache.Set(context.Background(), catalogDomain.ProductCacheKeyByID(cached.ID), cached, 60))

	// Act
	got, err := f.svc.GetProductByID(context.Background(), cached.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Cacheado", got.Title)
}

func TestGetProductByID_MissFillsCache(t *testing.T) {
	stored := &catalogDomain.Product{ID: uuid.New(), Title: "Yerba", Code: "Y", Price: 5, Category: "Bazar"}
	f := newServiceFixture(stored)

	got, err := f.svc.GetProductByID(context.Background(), stored.ID)

	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
	assert.Eventually(t, func() bool {
		return f.cache.Has(catalogDomain.ProductCacheKeyByID(stored.ID))
	}, time.Second, 10*time.Millisecond)
}

func TestGetProductByID_NotFoundIsNotRetried(t *testing.T) {
	f := newServiceFixture()
	start := time.Now()

	_, err := f.svc.GetProductByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, catalogDomain.ErrProductNotFound)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestUpdateProduct_AppliesPatchAndBroadcasts(t *testing.T) {
	// Arrange
	stored := &catalogDomain.Product{ID: uuid.New(), Title: "Yerba", Code: "Y", Price: 5, Stock: 1, Category: "Bazar"}
	f := newServiceFixture(stored)
	require.NoError(t, f.cache.Set(context.Background(), catalogDomain.ProductCacheKeyByID(stored.ID), stored, 60))
	stock := 40

	// Act
	updated, err := f.svc.UpdateProduct(context.Background(), stored.ID, catalogDomain.ProductPatch{Stock: &stock})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 40, updated.Stock)
	persisted, err := f.repo.GetByID(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, persisted.Stock)
	assert.Equal(t, []string{catalogDomain.LiveProductUpdated}, f.live.Types())
	assert.Equal(t, []string{catalogDomain.ProductUpdated}, f.events.Types())
	assert.Eventually(t, func() bool {
		return !f.cache.Has(catalogDomain.ProductCacheKeyByID(stored.ID))
	}, time.Second, 10*time.Millisecond)
}

func TestUpdateProduct_InvalidPatchKeepsStoredVersion(t *testing.T) {
	stored := &catalogDomain.Product{ID: uuid.New(), Title: "Yerba", Code: "Y", Price: 5, Category: "Bazar"}
	f := newServiceFixture(stored)
	empty := ""

	_, err := f.svc.UpdateProduct(context.Background(), stored.ID, catalogDomain.ProductPatch{Title: &empty})

	assert.ErrorIs(t, err, catalogDomain.ErrInvalidProduct)
	persisted, _ := f.repo.GetByID(context.Background(), stored.ID)
	assert.Equal(t, "Yerba", persisted.Title)
}

func TestDeleteProduct(t *testing.T) {
	stored := &catalogDomain.Product{ID: uuid.New(), Title: "Yerba", Code: "Y", Price: 5, Category: "Bazar"}
	f := newServiceFixture(stored)

	require.NoError(t, f.svc.DeleteProduct(context.Background(), stored.ID))
	assert.ErrorIs(t, f.svc.DeleteProduct(context.Background(), stored.ID), catalogDomain.ErrProductNotFound)

	assert.Equal(t, 0, f.repo.Len())
	assert.Equal(t, []string{catalogDomain.LiveProductDeleted}, f.live.Types())
	assert.Equal(t, []string{catalogDomain.ProductDeleted}, f.events.Types())
}

func TestSendMessage(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.SendMessage(context.Background(), "ana", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	msg, err := f.svc.SendMessage(context.Background(), " ", "hola")
	require.NoError(t, err)
	assert.Equal(t, "anónimo", msg.User)
	assert.Equal(t, []string{catalogDomain.LiveMessage}, f.live.Types())
}

func TestCreateProduct_CacheEntryFollowsConfiguredTTL(t *testing.T) {
	// Arrange: caché real con TTL corto, como CACHE_TTL=150ms
	cache := sharedCache.NewInMemoryCache(150*time.Millisecond, time.Minute)
	defer cache.Stop()
	repo := mocks.NewInMemoryProductRepo()
	svc := NewProductService(repo, cache, nil, nil, zap.NewNop())

	// Act
	p, err := svc.CreateProduct(context.Background(), validInput())
	require.NoError(t, err)

	// Assert: primero hit, después expira
	key := catalogDomain.ProductCacheKeyByID(p.ID)
	var cached catalogDomain.Product
	assert.Eventually(t, func() bool {
		hit, _ := cache.Get(context.Background(), key, &cached)
		return hit
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		hit, _ := cache.Get(context.Background(), key, &cached)
		return !hit
	}, time.Second, 20*time.Millisecond)
}
