package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	sharedDomain "github.com/davicafu/hexashop/internal/shared/domain"
	sharedEvents "github.com/davicafu/hexashop/internal/shared/events"
	"github.com/davicafu/hexashop/internal/shared/infra/metrics"
	sharedBus "github.com/davicafu/hexashop/internal/shared/infra/platform/bus"
	sharedCache "github.com/davicafu/hexashop/internal/shared/infra/platform/cache"
	sharedQuery "github.com/davicafu/hexashop/internal/shared/infra/platform/query"
	sharedUtils "github.com/davicafu/hexashop/internal/shared/infra/utils"
)

const (
	MsgProductAdded   = "Producto agregado exitosamente"
	MsgProductUpdated = "Producto actualizado exitosamente"
	MsgProductDeleted = "Producto eliminado exitosamente"

	// 0 deja que el adapter aplique su TTL (CACHE_TTL).
	productCacheTTL = 0
)

var ErrEmptyMessage = errors.New("message is required")

// CreateProductInput son los datos de alta ya tipados.
type CreateProductInput struct {
	Title       string
	Description string
	Code        string
	Price       float64
	Stock       int
	Category    string
	Status      bool
	Thumbnail   string
}

// ProductService define los casos de uso de escritura y lectura puntual del catálogo.
// live reparte los cambios a los navegadores; events publica eventos de integración.
type ProductService struct {
	repo    catalogDomain.ProductRepository
	cache   sharedCache.Cache
	live    sharedBus.EventBus
	events  sharedBus.EventBus
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewProductService(
	repo catalogDomain.ProductRepository,
	cache sharedCache.Cache,
	live sharedBus.EventBus,
	events sharedBus.EventBus,
	log *zap.Logger,
) *ProductService {
	return &ProductService{
		repo:   repo,
		cache:  cache,
		live:   live,
		events: events,
		log:    log,
	}
}

// WithMetrics activa los contadores de mutaciones y eventos en vivo.
func (s *ProductService) WithMetrics(m *metrics.Metrics) *ProductService {
	s.metrics = m
	return s
}

// CreateProduct valida, guarda y avisa a los navegadores con el catálogo actualizado.
func (s *ProductService) CreateProduct(ctx context.Context, in CreateProductInput) (*catalogDomain.Product, error) {
	product, err := catalogDomain.NewProduct(in.Title, in.Description, in.Code, in.Price, in.Stock, in.Category, in.Status, in.Thumbnail)
	if err != nil {
		return nil, err
	}

	err = s.repo.Create(ctx, product)
	s.metrics.ObserveMutation("product", "create", err)
	if err != nil {
		s.log.Error("Failed to create product", zap.String("code", product.Code), zap.Error(err))
		return nil, err
	}

	sharedCache.AsyncCacheSet(s.cache, catalogDomain.ProductCacheKeyByID(product.ID), product, productCacheTTL, s.log)
	s.publishIntegration(ctx, catalogDomain.ProductCreated, product.ID, productChanged(product))
	s.broadcastCatalog(ctx, catalogDomain.LiveProductAdded, MsgProductAdded)

	s.log.Info("Product created", zap.String("product_id", product.ID.String()), zap.String("code", product.Code))
	return product, nil
}

// UpdateProduct aplica un cambio parcial sobre la versión guardada.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, patch catalogDomain.ProductPatch) (*catalogDomain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Apply(patch); err != nil {
		return nil, err
	}

	err = s.repo.Update(ctx, product)
	s.metrics.ObserveMutation("product", "update", err)
	if err != nil {
		s.log.Error("Failed to update product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, err
	}

	sharedCache.AsyncCacheDelete(s.cache, catalogDomain.ProductCacheKeyByID(id), s.log)
	s.publishIntegration(ctx, catalogDomain.ProductUpdated, id, productChanged(product))
	s.broadcastCatalog(ctx, catalogDomain.LiveProductUpdated, MsgProductUpdated)
	return product, nil
}

// DeleteProduct elimina el producto y limpia la caché.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	err := s.repo.DeleteByID(ctx, id)
	s.metrics.ObserveMutation("product", "delete", err)
	if err != nil {
		if !errors.Is(err, catalogDomain.ErrProductNotFound) {
			s.log.Error("Failed to delete product", zap.String("product_id", id.String()), zap.Error(err))
		}
		return err
	}

	sharedCache.AsyncCacheDelete(s.cache, catalogDomain.ProductCacheKeyByID(id), s.log)
	s.publishIntegration(ctx, catalogDomain.ProductDeleted, id, sharedEvents.ProductDeleted{ID: id})
	s.broadcastCatalog(ctx, catalogDomain.LiveProductDeleted, MsgProductDeleted)
	return nil
}

// GetProductByID obtiene un producto, usando el patrón cache-aside con reintentos.
// Un "not found" no se reintenta.
func (s *ProductService) GetProductByID(ctx context.Context, id uuid.UUID) (*catalogDomain.Product, error) {
	// 1. Intentar obtener de la caché
	if s.cache != nil {
		var p catalogDomain.Product
		if hit, _ := s.cache.Get(ctx, catalogDomain.ProductCacheKeyByID(id), &p); hit {
			return &p, nil
		}
	}

	// 2. Si es 'miss', ir al repositorio con reintentos
	var product *catalogDomain.Product
	notFound := false
	err := sharedUtils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		found, errRetry := s.repo.GetByID(ctx, id)
		if errors.Is(errRetry, catalogDomain.ErrProductNotFound) {
			notFound = true
			return nil
		}
		product = found
		return errRetry
	})
	if notFound {
		s.log.Warn("Product not found", zap.String("product_id", id.String()))
		return nil, catalogDomain.ErrProductNotFound
	}
	if err != nil {
		s.log.Error("Failed to fetch product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, err
	}

	// 3. Actualizar caché en segundo plano para la próxima vez
	sharedCache.AsyncCacheSet(s.cache, catalogDomain.ProductCacheKeyByID(id), product, productCacheTTL, s.log)
	return product, nil
}

// ListAllProducts devuelve el catálogo completo en el orden del repositorio.
func (s *ProductService) ListAllProducts(ctx context.Context) ([]*catalogDomain.Product, error) {
	products, err := s.repo.Find(ctx, sharedDomain.MatchAll(), sharedQuery.OffsetPagination{}, sharedQuery.Sort{})
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []*catalogDomain.Product{}
	}
	return products, nil
}

// SendMessage reenvía un mensaje de chat a todos los navegadores conectados.
func (s *ProductService) SendMessage(ctx context.Context, user, message string) (catalogDomain.ChatMessage, error) {
	msg := catalogDomain.ChatMessage{
		User:    strings.TrimSpace(user),
		Message: strings.TrimSpace(message),
		SentAt:  time.Now().UTC(),
	}
	if msg.Message == "" {
		return msg, ErrEmptyMessage
	}
	if msg.User == "" {
		msg.User = "anónimo"
	}
	s.publishLive(ctx, catalogDomain.LiveMessage, msg)
	return msg, nil
}

// ---------------- Publicación ----------------

// broadcastCatalog envía el catálogo completo a los navegadores. Best-effort:
// un fallo aquí no deshace la escritura ya confirmada.
func (s *ProductService) broadcastCatalog(ctx context.Context, eventType, message string) {
	if s.live == nil {
		return
	}
	products, err := s.ListAllProducts(ctx)
	if err != nil {
		s.log.Warn("Live broadcast skipped: could not load catalog", zap.String("event", eventType), zap.Error(err))
		return
	}
	s.publishLive(ctx, eventType, catalogDomain.ProductsBroadcast{Message: message, Products: products})
}

func (s *ProductService) publishLive(ctx context.Context, eventType string, data interface{}) {
	if s.live == nil {
		return
	}
	evt, err := sharedEvents.NewIntegrationEvent(eventType, "", data)
	if err == nil {
		err = s.live.Publish(ctx, evt)
	}
	if err != nil {
		s.log.Warn("Live broadcast failed", zap.String("event", eventType), zap.Error(err))
		return
	}
	s.metrics.ObserveLiveEvent(eventType)
}

func (s *ProductService) publishIntegration(ctx context.Context, eventType string, id uuid.UUID, data interface{}) {
	if s.events == nil {
		return
	}
	evt, err := sharedEvents.NewIntegrationEvent(eventType, id.String(), data)
	if err == nil {
		err = s.events.Publish(ctx, evt)
	}
	if err != nil {
		s.log.Warn("Integration event not published",
			zap.String("event", eventType),
			zap.String("product_id", id.String()),
			zap.Error(err),
		)
	}
}

func productChanged(p *catalogDomain.Product) sharedEvents.ProductChanged {
	return sharedEvents.ProductChanged{
		ID:       p.ID,
		Title:    p.Title,
		Code:     p.Code,
		Category: p.Category,
		Price:    p.Price,
		Stock:    p.Stock,
		Status:   p.Status,
	}
}
