package application

import (
	"context"
	"errors"
	"fmt"

	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
)

// bulkImporter lo implementan los almacenes que importan en una sola escritura (fichero JSON).
type bulkImporter interface {
	ImportAll(ctx context.Context, products []*catalogDomain.Product) (int, error)
}

// ImportProducts da de alta los productos que aún no existen y devuelve cuántos añadió.
func ImportProducts(ctx context.Context, repo catalogDomain.ProductRepository, products []*catalogDomain.Product) (int, error) {
	if bulk, ok := repo.(bulkImporter); ok {
		return bulk.ImportAll(ctx, products)
	}

	added := 0
	for _, p := range products {
		err := repo.Create(ctx, p)
		if errors.Is(err, catalogDomain.ErrProductAlreadyExists) {
			continue
		}
		if err != nil {
			return added, fmt.Errorf("import %s: %w", p.Code, err)
		}
		added++
	}
	return added, nil
}
