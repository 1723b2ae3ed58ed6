package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	cartDomain "github.com/davicafu/hexashop/internal/cart/domain"
)

// InMemoryCartRepo simula CartRepository guardando copias profundas.
type InMemoryCartRepo struct {
	carts []*cartDomain.Cart
	mu    sync.Mutex

	ListErr   error
	UpdateErr error
}

var _ cartDomain.CartRepository = (*InMemoryCartRepo)(nil)

func NewInMemoryCartRepo(seed ...*cartDomain.Cart) *InMemoryCartRepo {
	r := &InMemoryCartRepo{}
	for _, c := range seed {
		r.carts = append(r.carts, cloneCart(c))
	}
	return r
}

func cloneCart(c *cartDomain.Cart) *cartDomain.Cart {
	cp := *c
	cp.Products = append([]cartDomain.CartItem{}, c.Products...)
	return &cp
}

func (r *InMemoryCartRepo) GetByID(ctx context.Context, id uuid.UUID) (*cartDomain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.carts {
		if c.ID == id {
			return cloneCart(c), nil
		}
	}
	return nil, cartDomain.ErrCartNotFound
}

func (r *InMemoryCartRepo) List(ctx context.Context) ([]*cartDomain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	out := make([]*cartDomain.Cart, 0, len(r.carts))
	for _, c := range r.carts {
		out = append(out, cloneCart(c))
	}
	return out, nil
}

func (r *InMemoryCartRepo) Create(ctx context.Context, c *cartDomain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts = append(r.carts, cloneCart(c))
	return nil
}

func (r *InMemoryCartRepo) Update(ctx context.Context, c *cartDomain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	for i, existing := range r.carts {
		if existing.ID == c.ID {
			r.carts[i] = cloneCart(c)
			return nil
		}
	}
	return cartDomain.ErrCartNotFound
}

// Len devuelve cuántos carritos hay guardados.
func (r *InMemoryCartRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}
