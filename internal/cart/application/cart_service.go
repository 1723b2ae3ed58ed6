package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	cartDomain "github.com/davicafu/hexashop/internal/cart/domain"
	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	sharedEvents "github.com/davicafu/hexashop/internal/shared/events"
	"github.com/davicafu/hexashop/internal/shared/infra/metrics"
	sharedBus "github.com/davicafu/hexashop/internal/shared/infra/platform/bus"
)

const (
	MsgCartCreated = "Carrito creado exitosamente"
	MsgCartAdded   = "Carrito agregado exitosamente"
	MsgCartCleared = "Carrito vaciado exitosamente"
	MsgLineUpdated = "Producto actualizado en el carrito correctamente"
	MsgLineRemoved = "Producto eliminado del carrito con exito."
)

// ProductFinder resuelve productos del catálogo (con caché) para poblar carritos.
type ProductFinder interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*catalogDomain.Product, error)
}

// CartItemInput es una línea tal como llega en el cuerpo de la petición.
type CartItemInput struct {
	Product  string `json:"product" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

// CreateCartInput exige al menos una línea.
type CreateCartInput struct {
	Products []CartItemInput `json:"products" validate:"required,min=1,dive"`
}

// ReplaceCartInput admite la lista vacía.
type ReplaceCartInput struct {
	Products []CartItemInput `json:"products" validate:"dive"`
}

// CartLineView es una línea poblada. Product es nil si el producto ya no existe.
type CartLineView struct {
	ProductID uuid.UUID              `json:"productId"`
	Product   *catalogDomain.Product `json:"product"`
	Quantity  int                    `json:"quantity"`
	Subtotal  decimal.Decimal        `json:"subtotal"`
}

// CartView es el carrito con productos y totales calculados.
type CartView struct {
	ID        uuid.UUID       `json:"_id"`
	Products  []CartLineView  `json:"products"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CartAddedBroadcast viaja a los navegadores al crear un carrito.
type CartAddedBroadcast struct {
	Message string   `json:"message"`
	Cart    CartView `json:"cart"`
}

var validate = validator.New()

type CartService struct {
	repo     cartDomain.CartRepository
	products ProductFinder
	live     sharedBus.EventBus
	events   sharedBus.EventBus
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewCartService(
	repo cartDomain.CartRepository,
	products ProductFinder,
	live sharedBus.EventBus,
	events sharedBus.EventBus,
	log *zap.Logger,
) *CartService {
	return &CartService{repo: repo, products: products, live: live, events: events, log: log}
}

func (s *CartService) WithMetrics(m *metrics.Metrics) *CartService {
	s.metrics = m
	return s
}

// --- Lectura ---

func (s *CartService) ListCarts(ctx context.Context) ([]CartView, error) {
	carts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]CartView, 0, len(carts))
	for _, c := range carts {
		v, err := s.populate(ctx, c)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *CartService) GetCart(ctx context.Context, id uuid.UUID) (CartView, error) {
	cart, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return CartView{}, err
	}
	return s.populate(ctx, cart)
}

// --- Escritura ---

// CreateCart valida las líneas, comprueba que los productos existen y avisa en vivo.
func (s *CartService) CreateCart(ctx context.Context, in CreateCartInput) (CartView, error) {
	if err := validate.Struct(in); err != nil {
		return CartView{}, invalid(err)
	}
	items, err := s.resolveItems(ctx, in.Products)
	if err != nil {
		return CartView{}, err
	}
	cart, err := cartDomain.NewCart(items)
	if err != nil {
		return CartView{}, err
	}

	err = s.repo.Create(ctx, cart)
	s.metrics.ObserveMutation("cart", "create", err)
	if err != nil {
		s.log.Error("Failed to create cart", zap.Error(err))
		return CartView{}, err
	}

	view, err := s.populate(ctx, cart)
	if err != nil {
		return CartView{}, err
	}
	s.publishIntegration(ctx, cartDomain.CartCreated, cart)
	s.publishLive(ctx, cartDomain.LiveCartAdded, CartAddedBroadcast{Message: MsgCartAdded, Cart: view})

	s.log.Info("Cart created", zap.String("cart_id", cart.ID.String()), zap.Int("lines", len(cart.Products)))
	return view, nil
}

// SetProductQuantity fija la cantidad de un producto (lo añade si no estaba).
func (s *CartService) SetProductQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) (CartView, error) {
	if quantity <= 0 {
		return CartView{}, cartDomain.ErrInvalidQuantity
	}
	cart, err := s.repo.GetByID(ctx, cartID)
	if err != nil {
		return CartView{}, err
	}
	if _, err := s.products.GetProductByID(ctx, productID); err != nil {
		return CartView{}, err
	}
	if err := cart.SetQuantity(productID, quantity); err != nil {
		return CartView{}, err
	}
	return s.save(ctx, cart, "set_quantity")
}

// ReplaceProducts sustituye todas las líneas; la lista vacía es válida.
func (s *CartService) ReplaceProducts(ctx context.Context, cartID uuid.UUID, in ReplaceCartInput) (CartView, error) {
	if err := validate.Struct(in); err != nil {
		return CartView{}, invalid(err)
	}
	cart, err := s.repo.GetByID(ctx, cartID)
	if err != nil {
		return CartView{}, err
	}
	items, err := s.resolveItems(ctx, in.Products)
	if err != nil {
		return CartView{}, err
	}
	if err := cart.ReplaceProducts(items); err != nil {
		return CartView{}, err
	}
	return s.save(ctx, cart, "replace")
}

// ClearCart vacía el carrito.
func (s *CartService) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	cart, err := s.repo.GetByID(ctx, cartID)
	if err != nil {
		return err
	}
	cart.Clear()
	_, err = s.save(ctx, cart, "clear")
	return err
}

// RemoveProduct quita una línea. El producto debe existir en el catálogo y en el carrito.
func (s *CartService) RemoveProduct(ctx context.Context, cartID, productID uuid.UUID) error {
	cart, err := s.repo.GetByID(ctx, cartID)
	if err != nil {
		return err
	}
	if _, err := s.products.GetProductByID(ctx, productID); err != nil {
		return err
	}
	if err := cart.RemoveProduct(productID); err != nil {
		return err
	}
	_, err = s.save(ctx, cart, "remove_line")
	return err
}

func (s *CartService) save(ctx context.Context, cart *cartDomain.Cart, op string) (CartView, error) {
	err := s.repo.Update(ctx, cart)
	s.metrics.ObserveMutation("cart", op, err)
	if err != nil {
		if !errors.Is(err, cartDomain.ErrCartNotFound) {
			s.log.Error("Failed to update cart", zap.String("cart_id", cart.ID.String()), zap.String("op", op), zap.Error(err))
		}
		return CartView{}, err
	}
	s.publishIntegration(ctx, cartDomain.CartUpdated, cart)
	return s.populate(ctx, cart)
}

// --- Helpers ---

// resolveItems convierte las líneas de entrada y exige que cada producto exista.
func (s *CartService) resolveItems(ctx context.Context, in []CartItemInput) ([]cartDomain.CartItem, error) {
	items := make([]cartDomain.CartItem, 0, len(in))
	for _, line := range in {
		id, err := uuid.Parse(line.Product)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid product id %q", cartDomain.ErrInvalidCart, line.Product)
		}
		if _, err := s.products.GetProductByID(ctx, id); err != nil {
			if errors.Is(err, catalogDomain.ErrProductNotFound) {
				return nil, fmt.Errorf("%w: %s", cartDomain.ErrUnknownProduct, id)
			}
			return nil, err
		}
		items = append(items, cartDomain.CartItem{ProductID: id, Quantity: line.Quantity})
	}
	return items, nil
}

// populate resuelve cada línea y calcula subtotales y total en decimal.
func (s *CartService) populate(ctx context.Context, cart *cartDomain.Cart) (CartView, error) {
	view := CartView{
		ID:        cart.ID,
		Products:  make([]CartLineView, 0, len(cart.Products)),
		Total:     decimal.Zero,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
	for _, it := range cart.Products {
		line := CartLineView{ProductID: it.ProductID, Quantity: it.Quantity, Subtotal: decimal.Zero}

		p, err := s.products.GetProductByID(ctx, it.ProductID)
		switch {
		case err == nil:
			line.Product = p
			line.Subtotal = decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		case errors.Is(err, catalogDomain.ErrProductNotFound):
			// producto borrado del catálogo: la línea queda sin poblar
		default:
			return CartView{}, err
		}

		view.Total = view.Total.Add(line.Subtotal)
		view.Products = append(view.Products, line)
	}
	return view, nil
}

func invalid(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "gt":
			return fmt.Errorf("%w: %w", cartDomain.ErrInvalidCart, cartDomain.ErrInvalidQuantity)
		case "min", "required":
			if fe.Field() == "Products" {
				return fmt.Errorf("%w: %w", cartDomain.ErrInvalidCart, cartDomain.ErrEmptyCart)
			}
		}
		return fmt.Errorf("%w: field %s failed on %s", cartDomain.ErrInvalidCart, fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", cartDomain.ErrInvalidCart, err)
}

func (s *CartService) publishLive(ctx context.Context, eventType string, data interface{}) {
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

func (s *CartService) publishIntegration(ctx context.Context, eventType string, cart *cartDomain.Cart) {
	if s.events == nil {
		return
	}
	evt, err := sharedEvents.NewIntegrationEvent(eventType, cart.PartitionKey(), sharedEvents.CartChanged{
		ID:    cart.ID,
		Lines: len(cart.Products),
		Units: cart.Units(),
	})
	if err == nil {
		err = s.events.Publish(ctx, evt)
	}
	if err != nil {
		s.log.Warn("Integration event not published",
			zap.String("event", eventType),
			zap.String("cart_id", cart.ID.String()),
			zap.Error(err),
		)
	}
}
