package filesystem

import (
	"context"
	"sort"

	"github.com/google/uuid"

	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	sharedDomain "github.com/davicafu/hexashop/internal/shared/domain"
	"github.com/davicafu/hexashop/internal/shared/infra/platform/jsonstore"
	sharedQuery "github.com/davicafu/hexashop/internal/shared/infra/platform/query"
)

// JSONProductStorage es un adaptador outbound que guarda los productos en un fichero JSON.
// El orden del fichero es el orden de inserción.
type JSONProductStorage struct {
	file *jsonstore.File[*catalogDomain.Product]
}

var _ catalogDomain.ProductRepository = (*JSONProductStorage)(nil)

// NewJSONProductStorage es el constructor.
func NewJSONProductStorage(filePath string) *JSONProductStorage {
	return &JSONProductStorage{file: jsonstore.NewFile[*catalogDomain.Product](filePath)}
}

func (s *JSONProductStorage) Create(ctx context.Context, p *catalogDomain.Product) error {
	return s.file.Update(func(products []*catalogDomain.Product) ([]*catalogDomain.Product, error) {
		if indexOf(products, p.ID) >= 0 {
			return nil, catalogDomain.ErrProductAlreadyExists
		}
		return append(products, p), nil
	})
}

func (s *JSONProductStorage) Update(ctx context.Context, p *catalogDomain.Product) error {
	return s.file.Update(func(products []*catalogDomain.Product) ([]*catalogDomain.Product, error) {
		i := indexOf(products, p.ID)
		if i < 0 {
			return nil, catalogDomain.ErrProductNotFound
		}
		products[i] = p
		return products, nil
	})
}

func (s *JSONProductStorage) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return s.file.Update(func(products []*catalogDomain.Product) ([]*catalogDomain.Product, error) {
		i := indexOf(products, id)
		if i < 0 {
			return nil, catalogDomain.ErrProductNotFound
		}
		return append(products[:i], products[i+1:]...), nil
	})
}

func (s *JSONProductStorage) GetByID(ctx context.Context, id uuid.UUID) (*catalogDomain.Product, error) {
	products, err := s.file.Load()
	if err != nil {
		return nil, err
	}
	if i := indexOf(products, id); i >= 0 {
		return products[i], nil
	}
	return nil, catalogDomain.ErrProductNotFound
}

func (s *JSONProductStorage) Count(ctx context.Context, criteria sharedDomain.Criteria) (int64, error) {
	matched, err := s.filter(criteria)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (s *JSONProductStorage) Find(ctx context.Context, criteria sharedDomain.Criteria, page sharedQuery.OffsetPagination, sortBy sharedQuery.Sort) ([]*catalogDomain.Product, error) {
	matched, err := s.filter(criteria)
	if err != nil {
		return nil, err
	}

	if sortBy.Field == catalogDomain.FieldPrice {
		sort.SliceStable(matched, func(i, j int) bool {
			if sortBy.Desc {
				return matched[i].Price > matched[j].Price
			}
			return matched[i].Price < matched[j].Price
		})
	}

	if page.Unbounded() {
		return matched, nil
	}
	if page.Offset >= len(matched) {
		return []*catalogDomain.Product{}, nil
	}
	end := page.Offset + page.Limit
	if end > len(matched) || end < page.Offset {
		end = len(matched)
	}
	return matched[page.Offset:end], nil
}

// ImportAll añade los productos cuyo ID aún no existe. Devuelve cuántos se añadieron.
func (s *JSONProductStorage) ImportAll(ctx context.Context, incoming []*catalogDomain.Product) (int, error) {
	added := 0
	err := s.file.Update(func(products []*catalogDomain.Product) ([]*catalogDomain.Product, error) {
		for _, p := range incoming {
			if indexOf(products, p.ID) >= 0 {
				continue
			}
			products = append(products, p)
			added++
		}
		return products, nil
	})
	return added, err
}

func (s *JSONProductStorage) filter(criteria sharedDomain.Criteria) ([]*catalogDomain.Product, error) {
	products, err := s.file.Load()
	if err != nil {
		return nil, err
	}
	matched := []*catalogDomain.Product{}
	for _, p := range products {
		if p.Matches(criteria) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func indexOf(products []*catalogDomain.Product, id uuid.UUID) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
