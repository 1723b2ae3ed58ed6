package filesystem

import (
	"context"

	"github.com/google/uuid"

	cartDomain "github.com/davicafu/hexashop/internal/cart/domain"
	"github.com/davicafu/hexashop/internal/shared/infra/platform/jsonstore"
)

// JSONCartStorage guarda los carritos en un fichero JSON (DATA_DIR/carts.json).
type JSONCartStorage struct {
	file *jsonstore.File[*cartDomain.Cart]
}

var _ cartDomain.CartRepository = (*JSONCartStorage)(nil)

func NewJSONCartStorage(filePath string) *JSONCartStorage {
	return &JSONCartStorage{file: jsonstore.NewFile[*cartDomain.Cart](filePath)}
}

func (s *JSONCartStorage) Create(ctx context.Context, c *cartDomain.Cart) error {
	return s.file.Update(func(carts []*cartDomain.Cart) ([]*cartDomain.Cart, error) {
		return append(carts, c), nil
	})
}

func (s *JSONCartStorage) Update(ctx context.Context, c *cartDomain.Cart) error {
	return s.file.Update(func(carts []*cartDomain.Cart) ([]*cartDomain.Cart, error) {
		i := indexOf(carts, c.ID)
		if i < 0 {
			return nil, cartDomain.ErrCartNotFound
		}
		carts[i] = c
		return carts, nil
	})
}

func (s *JSONCartStorage) GetByID(ctx context.Context, id uuid.UUID) (*cartDomain.Cart, error) {
	carts, err := s.file.Load()
	if err != nil {
		return nil, err
	}
	if i := indexOf(carts, id); i >= 0 {
		return normalize(carts[i]), nil
	}
	return nil, cartDomain.ErrCartNotFound
}

func (s *JSONCartStorage) List(ctx context.Context) ([]*cartDomain.Cart, error) {
	carts, err := s.file.Load()
	if err != nil {
		return nil, err
	}
	for _, c := range carts {
		normalize(c)
	}
	return carts, nil
}

func indexOf(carts []*cartDomain.Cart, id uuid.UUID) int {
	for i, c := range carts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// normalize: un "products": null en el fichero se lee como carrito vacío.
func normalize(c *cartDomain.Cart) *cartDomain.Cart {
	if c.Products == nil {
		c.Products = []cartDomain.CartItem{}
	}
	return c
}
