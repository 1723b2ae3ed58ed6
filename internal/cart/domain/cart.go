package domain

import (
	"time"

	"github.com/google/uuid"

	sharedBus "github.com/davicafu/hexashop/internal/shared/infra/platform/bus"
)

// CartItem es una línea del carrito: referencia al producto y cantidad (>= 1).
type CartItem struct {
	ProductID uuid.UUID `json:"product"`
	Quantity  int       `json:"quantity"`
}

// Cart agrupa productos del catálogo. Guarda referencias, no copias de producto.
type Cart struct {
	ID        uuid.UUID  `json:"_id"`
	Products  []CartItem `json:"products"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewCart crea un carrito con al menos una línea válida.
// Las líneas repetidas del mismo producto se suman.
func NewCart(items []CartItem) (*Cart, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	now := time.Now().UTC()
	c := &Cart{ID: uuid.New(), Products: []CartItem{}, CreatedAt: now, UpdatedAt: now}
	if err := c.ReplaceProducts(items); err != nil {
		return nil, err
	}
	return c, nil
}

// ReplaceProducts sustituye todas las líneas. Una lista vacía deja el carrito vacío.
func (c *Cart) ReplaceProducts(items []CartItem) error {
	merged := make([]CartItem, 0, len(items))
	index := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if it.ProductID == uuid.Nil {
			return ErrInvalidCart
		}
		if i, ok := index[it.ProductID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	c.Products = merged
	c.touch()
	return nil
}

// SetQuantity fija la cantidad de una línea existente o la añade al final.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i := c.indexOf(productID); i >= 0 {
		c.Products[i].Quantity = quantity
	} else {
		c.Products = append(c.Products, CartItem{ProductID: productID, Quantity: quantity})
	}
	c.touch()
	return nil
}

// RemoveProduct quita una línea; ErrProductNotInCart si no estaba.
func (c *Cart) RemoveProduct(productID uuid.UUID) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrProductNotInCart
	}
	c.Products = append(c.Products[:i], c.Products[i+1:]...)
	c.touch()
	return nil
}

// Clear vacía el carrito sin borrarlo.
func (c *Cart) Clear() {
	c.Products = []CartItem{}
	c.touch()
}

// Units es la suma de cantidades.
func (c *Cart) Units() int {
	n := 0
	for _, it := range c.Products {
		n += it.Quantity
	}
	return n
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	for i, it := range c.Products {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}

func (c *Cart) PartitionKey() string {
	return c.ID.String()
}

var _ sharedBus.Keyer = (*Cart)(nil)
