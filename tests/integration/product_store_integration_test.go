package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/davicafu/hexashop/internal/catalog/application"
	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	productMongo "github.com/davicafu/hexashop/internal/catalog/infra/outbound/db/mongodb"
	productPostgres "github.com/davicafu/hexashop/internal/catalog/infra/outbound/db/postgre"
	productSQLite "github.com/davicafu/hexashop/internal/catalog/infra/outbound/db/sqlite"
)

// exerciseProductStore recorre alta, lectura, cambio, listado y baja sobre un repositorio real.
// Los productos usan una categoría propia para no depender de datos previos.
func exerciseProductStore(t *testing.T, repo catalogDomain.ProductRepository) {
	ctx := context.Background()
	category := "it-" + uuid.NewString()[:8]

	var ids []uuid.UUID
	for i := 1; i <= 5; i++ {
		p, err := catalogDomain.NewProduct(fmt.Sprintf("Producto %d", i), "", category+fmt.Sprint(i), float64(i*10), i, category, true, "")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, p))
		ids = append(ids, p.ID)
	}
	t.Cleanup(func() {
		for _, id := range ids {
			_ = repo.DeleteByID(context.Background(), id)
		}
	})

	// Lectura y cambio
	got, err := repo.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, got), catalogDomain.ErrProductAlreadyExists)
	assert.Equal(t, "Producto 1", got.Title)
	got.Price = 99
	got.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Update(ctx, got))

	// Listado paginado, precio descendente
	query := application.NewCatalogQuery(repo, zap.NewNop())
	env := query.ListProducts(ctx, application.ListParams{
		Limit: 2, Page: 1, Sort: "desc", RawSort: "desc", Query: category, Explicit: true,
	}, "http://localhost/api/products")
	require.Equal(t, application.StatusSuccess, env.Status)
	assert.Equal(t, 3, env.TotalPages)
	require.Len(t, env.Payload, 2)
	assert.Equal(t, 99.0, env.Payload[0].Price)
	assert.Equal(t, 50.0, env.Payload[1].Price)
	assert.True(t, env.HasNextPage)

	// Baja
	require.NoError(t, repo.DeleteByID(ctx, ids[4]))
	_, err = repo.GetByID(ctx, ids[4])
	assert.ErrorIs(t, err, catalogDomain.ErrProductNotFound)
	assert.ErrorIs(t, repo.DeleteByID(ctx, ids[4]), catalogDomain.ErrProductNotFound)
}

func TestProductStoreIntegration_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()
	require.NoError(t, productSQLite.InitSQLite(db))

	exerciseProductStore(t, productSQLite.NewProductRepoSQLite(db))
}

func TestProductStoreIntegration_Postgres(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Ping())
	require.NoError(t, productPostgres.InitPostgresProductSchema(db))

	exerciseProductStore(t, productPostgres.NewProductRepoPostgres(db))
}

func connectMongo(t *testing.T) (*mongo.Client, string) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	dbName := "hexashop_it_" + uuid.NewString()[:8]
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Database(dbName).Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return client, dbName
}

func TestProductStoreIntegration_MongoDB(t *testing.T) {
	client, dbName := connectMongo(t)

	repo, err := productMongo.NewProductRepoMongoDB(context.Background(), client, dbName)
	require.NoError(t, err)
	require.NoError(t, repo.EnsureIndexes(context.Background()))

	exerciseProductStore(t, repo)
}
