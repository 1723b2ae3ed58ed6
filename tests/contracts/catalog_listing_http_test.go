package contracts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/hexashop/internal/catalog/application"
	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	catalogHttp "github.com/davicafu/hexashop/internal/catalog/infra/inbound/http"
	productSQLite "github.com/davicafu/hexashop/internal/catalog/infra/outbound/db/sqlite"
	productFile "github.com/davicafu/hexashop/internal/catalog/infra/outbound/filesystem"
	"github.com/davicafu/hexashop/tests/mocks"
)

// envelopeKeys es el conjunto exacto de campos del sobre JSON.
var envelopeKeys = []string{
	"hasNextPage", "hasPrevPage", "nextLink", "nextPage", "page",
	"payload", "prevLink", "prevPage", "status", "totalPages",
}

type storeFactory func(t *testing.T) catalogDomain.ProductRepository

func stores() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) catalogDomain.ProductRepository {
			return mocks.NewInMemoryProductRepo()
		},
		"sqlite": func(t *testing.T) catalogDomain.ProductRepository {
			db, err := sql.Open("sqlite", ":memory:")
			require.NoError(t, err)
			db.SetMaxOpenConns(1)
			t.Cleanup(func() { db.Close() })
			require.NoError(t, productSQLite.InitSQLite(db))
			return productSQLite.NewProductRepoSQLite(db)
		},
		"file": func(t *testing.T) catalogDomain.ProductRepository {
			return productFile.NewJSONProductStorage(filepath.Join(t.TempDir(), "products.json"))
		},
	}
}

// seedCatalog guarda 12 productos con precio i; los pares son "Bazar", los impares "Hogar".
func seedCatalog(t *testing.T, repo catalogDomain.ProductRepository) {
	for i := 1; i <= 12; i++ {
		p := &catalogDomain.Product{
			ID: uuid.New(), Title: fmt.Sprintf("P%02d", i), Code: fmt.Sprintf("C%02d", i),
			Price: float64(i), Stock: i, Category: map[bool]string{true: "Bazar", false: "Hogar"}[i%2 == 0],
			Status: true, Thumbnail: catalogDomain.DefaultThumbnail,
		}
		require.NoError(t, repo.Create(context.Background(), p))
	}
}

func newListingRouter(repo catalogDomain.ProductRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	query := application.NewCatalogQuery(repo, zap.NewNop())
	service := application.NewProductService(repo, mocks.NewDummyCache(), nil, nil, zap.NewNop())
	handler := catalogHttp.NewProductHandler(query, service, nil, nil, "", 1, zap.NewNop())

	r := gin.New()
	catalogHttp.RegisterProductRoutes(r, handler)
	return r
}

func getJSON(t *testing.T, r *gin.Engine, target string) map[string]interface{} {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func prices(body map[string]interface{}) []float64 {
	var out []float64
	for _, item := range body["payload"].([]interface{}) {
		out = append(out, item.(map[string]interface{})["price"].(float64))
	}
	return out
}

func TestListingContract_SameEnvelopeForEveryStore(t *testing.T) {
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			seedCatalog(t, repo)
			r := newListingRouter(repo)

			// Última página, orden descendente
			body := getJSON(t, r, "/api/products?limit=5&page=3&sort=desc")

			keys := make([]string, 0, len(body))
			for k := range body {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			assert.Equal(t, envelopeKeys, keys)

			assert.Equal(t, "success", body["status"])
			assert.Equal(t, []float64{2, 1}, prices(body))
			assert.EqualValues(t, 3, body["totalPages"])
			assert.EqualValues(t, 3, body["page"])
			assert.EqualValues(t, 2, body["prevPage"])
			assert.Nil(t, body["nextPage"])
			assert.Equal(t, true, body["hasPrevPage"])
			assert.Equal(t, false, body["hasNextPage"])
			assert.Equal(t, "http://example.com/api/products?limit=5&page=2&sort=desc", body["prevLink"])
			assert.Nil(t, body["nextLink"])

			// Filtro por categoría, sin orden: orden de inserción
			body = getJSON(t, r, "/api/products?query=baz&limit=4")
			assert.Equal(t, []float64{2, 4, 6, 8}, prices(body))
			assert.EqualValues(t, 2, body["totalPages"])
			assert.Equal(t, "http://example.com/api/products?limit=4&page=2&query=baz", body["nextLink"])

			// Sin coincidencias
			body = getJSON(t, r, "/api/products?query=zzz")
			assert.Empty(t, body["payload"])
			assert.EqualValues(t, 0, body["totalPages"])
			assert.Equal(t, false, body["hasNextPage"])
			assert.Nil(t, body["prevLink"])

			// Mayúsculas acentuadas: el filtro ignora mayúsculas también fuera de ASCII
			require.NoError(t, repo.Create(context.Background(), &catalogDomain.Product{
				ID: uuid.New(), Title: "Radio", Code: "R-01", Price: 99, Stock: 1,
				Category: "Électronique", Status: true, Thumbnail: catalogDomain.DefaultThumbnail,
			}))
			body = getJSON(t, r, "/api/products?query="+url.QueryEscape("électronique"))
			assert.Equal(t, []float64{99}, prices(body))
			body = getJSON(t, r, "/api/products?query="+url.QueryEscape("ÉLECTRO"))
			assert.Equal(t, []float64{99}, prices(body))
		})
	}
}

func TestListingContract_RepositoryFailure(t *testing.T) {
	repo := mocks.NewInMemoryProductRepo()
	repo.FindErr = fmt.Errorf("connection refused")
	r := newListingRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/products?page=4", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{
		"status": "error", "payload": [], "totalPages": 0,
		"prevPage": null, "nextPage": null, "page": 1,
		"hasPrevPage": false, "hasNextPage": false,
		"prevLink": null, "nextLink": null
	}`, rec.Body.String())
}
