package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrProductNotInCart = errors.New("product not in cart")
	ErrEmptyCart        = errors.New("cart must contain at least one product")
	ErrInvalidQuantity  = errors.New("quantity must be greater than 0")
	ErrInvalidCart      = errors.New("invalid cart")
	// ErrUnknownProduct: una línea del cuerpo referencia un producto inexistente.
	ErrUnknownProduct = errors.New("one of the products does not exist")
)

// --- Repositorio de Carts ---
type CartRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Cart, error)
	List(ctx context.Context) ([]*Cart, error)
	Create(ctx context.Context, c *Cart) error
	Update(ctx context.Context, c *Cart) error
}
