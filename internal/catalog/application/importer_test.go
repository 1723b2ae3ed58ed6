package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	"github.com/davicafu/hexashop/tests/mocks"
)

func TestImportProducts_SkipsExisting(t *testing.T) {
	existing := &catalogDomain.Product{ID: uuid.New(), Title: "Mate", Code: "M-1", Price: 1, Category: "Bazar"}
	repo := mocks.NewInMemoryProductRepo(existing)
	fresh := &catalogDomain.Product{ID: uuid.New(), Title: "Yerba", Code: "Y-1", Price: 2, Category: "Almacen"}

	added, err := ImportProducts(context.Background(), repo, []*catalogDomain.Product{existing, fresh})

	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 2, repo.Len())

	// Reimportar no añade nada
	added, err = ImportProducts(context.Background(), repo, []*catalogDomain.Product{existing, fresh})
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestImportProducts_RepositoryFailureStops(t *testing.T) {
	repo := failingCreateRepo{mocks.NewInMemoryProductRepo()}
	p := &catalogDomain.Product{ID: uuid.New(), Title: "Mate", Code: "M-1", Price: 1, Category: "Bazar"}

	added, err := ImportProducts(context.Background(), repo, []*catalogDomain.Product{p})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "M-1")
	assert.Zero(t, added)
}
