package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	sharedDomain "github.com/davicafu/hexashop/internal/shared/domain"
	sharedQuery "github.com/davicafu/hexashop/internal/shared/infra/platform/query"
)

func setupSQLite(t *testing.T) *ProductRepoSQLite {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// :memory: es por conexión
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, InitSQLite(db))
	return NewProductRepoSQLite(db)
}

func seed(t *testing.T, repo *ProductRepoSQLite, category string, price float64, status bool) *catalogDomain.Product {
	p, err := catalogDomain.NewProduct("Producto "+category, "", uuid.NewString(), price, 1, category, status, "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestSQLiteProductRepo_CRUD(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	p := seed(t, repo, "Hogar", 25.5, true)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Title, got.Title)
	assert.Equal(t, 25.5, got.Price)
	assert.True(t, got.Status)
	assert.Equal(t, catalogDomain.DefaultThumbnail, got.Thumbnail)
	assert.Equal(t, p.CreatedAt.Unix(), got.CreatedAt.Unix())

	newStock := 9
	require.NoError(t, got.Apply(catalogDomain.ProductPatch{Stock: &newStock}))
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Stock)

	require.NoError(t, repo.DeleteByID(ctx, p.ID))
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, catalogDomain.ErrProductNotFound)
	assert.ErrorIs(t, repo.DeleteByID(ctx, p.ID), catalogDomain.ErrProductNotFound)
}

func TestSQLiteProductRepo_CreateDuplicateID(t *testing.T) {
	repo := setupSQLite(t)
	p := seed(t, repo, "Hogar", 10, true)

	err := repo.Create(context.Background(), p)

	assert.ErrorIs(t, err, catalogDomain.ErrProductAlreadyExists)
}

func TestSQLiteProductRepo_SearchMatchesCategoryOrStatus(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	seed(t, repo, "Jardín", 10, true)
	seed(t, repo, "Electro", 20, false)
	seed(t, repo, "TrueSound", 30, true)

	n, err := repo.Count(ctx, catalogDomain.SearchCriteria("false"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// "true" encuentra los activos y la categoría que contiene "true"
	n, err = repo.Count(ctx, catalogDomain.SearchCriteria("TRUE"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.Count(ctx, catalogDomain.SearchCriteria("elec"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Count(ctx, sharedDomain.MatchAll())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestSQLiteProductRepo_SearchFoldsNonASCIICase(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()
	radio := seed(t, repo, "Électronique", 99, true)
	seed(t, repo, "Hogar", 10, true)

	for _, query := range []string{"électronique", "ÉLECTRONIQUE", "ÉlEc"} {
		crit := catalogDomain.SearchCriteria(query)

		n, err := repo.Count(ctx, crit)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n, query)

		found, err := repo.Find(ctx, crit, sharedQuery.OffsetPagination{Limit: 10}, sharedQuery.Sort{})
		require.NoError(t, err)
		require.Len(t, found, 1, query)
		assert.Equal(t, radio.ID, found[0].ID)
		assert.True(t, found[0].Matches(crit), "mismo resultado que el filtro en memoria")
	}
}

func TestSQLiteProductRepo_LikeWildcardsAreLiteral(t *testing.T) {
	repo := setupSQLite(t)
	seed(t, repo, "Ofertas", 10, true)
	seed(t, repo, "50%_off", 10, true)

	n, err := repo.Count(context.Background(), catalogDomain.SearchCriteria("%_"))

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSQLiteProductRepo_FindPagesAndSorts(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()
	for i := 1; i <= 12; i++ {
		seed(t, repo, fmt.Sprintf("Cat%02d", i), float64(13-i), true)
	}

	page, err := repo.Find(ctx, sharedDomain.MatchAll(), sharedQuery.PageWindow(3, 5), sharedQuery.Sort{})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Cat11", page[0].Category)
	assert.Equal(t, "Cat12", page[1].Category)

	asc, err := repo.Find(ctx, sharedDomain.MatchAll(), sharedQuery.PageWindow(1, 3), sharedQuery.Sort{Field: catalogDomain.FieldPrice})
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, []float64{1, 2, 3}, []float64{asc[0].Price, asc[1].Price, asc[2].Price})

	all, err := repo.Find(ctx, sharedDomain.MatchAll(), sharedQuery.OffsetPagination{}, sharedQuery.Sort{Field: catalogDomain.FieldPrice, Desc: true})
	require.NoError(t, err)
	require.Len(t, all, 12)
	assert.Equal(t, 12.0, all[0].Price)

	empty, err := repo.Find(ctx, sharedDomain.MatchAll(), sharedQuery.PageWindow(9, 5), sharedQuery.Sort{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
