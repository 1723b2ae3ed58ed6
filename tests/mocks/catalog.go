package mocks

import (
	"context"
	"sort"
	"sync"

	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	sharedDomain "github.com/davicafu/hexashop/internal/shared/domain"
	sharedQuery "github.com/davicafu/hexashop/internal/shared/infra/platform/query"
	"github.com/google/uuid"
)

// InMemoryProductRepo simula ProductRepository conservando el orden de inserción.
// Guarda y devuelve copias, como haría una base de datos.
type InMemoryProductRepo struct {
	products []*catalogDomain.Product
	mu       sync.Mutex

	// Inyección de fallos
	CountErr error
	FindErr  error

	// Contadores de llamadas
	CountCalls int
	FindCalls  int
}

var _ catalogDomain.ProductRepository = (*InMemoryProductRepo)(nil)

func NewInMemoryProductRepo(seed ...*catalogDomain.Product) *InMemoryProductRepo {
	r := &InMemoryProductRepo{}
	for _, p := range seed {
		r.products = append(r.products, clone(p))
	}
	return r
}

func clone(p *catalogDomain.Product) *catalogDomain.Product {
	c := *p
	return &c
}

func (r *InMemoryProductRepo) Count(ctx context.Context, criteria sharedDomain.Criteria) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CountCalls++
	if r.CountErr != nil {
		return 0, r.CountErr
	}

	var n int64
	for _, p := range r.products {
		if p.Matches(criteria) {
			n++
		}
	}
	return n, nil
}

func (r *InMemoryProductRepo) Find(ctx context.Context, criteria sharedDomain.Criteria, page sharedQuery.OffsetPagination, s sharedQuery.Sort) ([]*catalogDomain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FindCalls++
	if r.FindErr != nil {
		return nil, r.FindErr
	}

	var list []*catalogDomain.Product
	for _, p := range r.products {
		if p.Matches(criteria) {
			list = append(list, clone(p))
		}
	}

	if s.Field == catalogDomain.FieldPrice {
		sort.SliceStable(list, func(i, j int) bool {
			if s.Desc {
				return list[i].Price > list[j].Price
			}
			return list[i].Price < list[j].Price
		})
	}

	if page.Unbounded() {
		return list, nil
	}
	start := page.Offset
	if start >= len(list) {
		return []*catalogDomain.Product{}, nil
	}
	end := start + page.Limit
	if end > len(list) {
		end = len(list)
	}
	return list[start:end], nil
}

func (r *InMemoryProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*catalogDomain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == id {
			return clone(p), nil
		}
	}
	return nil, catalogDomain.ErrProductNotFound
}

func (r *InMemoryProductRepo) Create(ctx context.Context, p *catalogDomain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.products {
		if existing.ID == p.ID {
			return catalogDomain.ErrProductAlreadyExists
		}
	}
	r.products = append(r.products, clone(p))
	return nil
}

func (r *InMemoryProductRepo) Update(ctx context.Context, p *catalogDomain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.products {
		if existing.ID == p.ID {
			r.products[i] = clone(p)
			return nil
		}
	}
	return catalogDomain.ErrProductNotFound
}

func (r *InMemoryProductRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.products {
		if existing.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return catalogDomain.ErrProductNotFound
}

// Len devuelve cuántos productos hay guardados.
func (r *InMemoryProductRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.products)
}
