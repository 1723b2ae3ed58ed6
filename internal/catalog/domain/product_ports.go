package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/hexashop/internal/shared/domain"
	sharedQuery "github.com/davicafu/hexashop/internal/shared/infra/platform/query"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product already exists")
	ErrInvalidProduct       = errors.New("invalid product")
)

// ProductReader es lo único que necesita el listado: contar y traer una ventana.
type ProductReader interface {
	Count(ctx context.Context, criteria sharedDomain.Criteria) (int64, error)
	Find(ctx context.Context, criteria sharedDomain.Criteria, page sharedQuery.OffsetPagination, sort sharedQuery.Sort) ([]*Product, error)
}

// --- Repositorio de Products ---
type ProductRepository interface {
	ProductReader
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// CatalogEventRecord es una fila de analítica por evento de integración.
type CatalogEventRecord struct {
	EventType   string
	AggregateID string
	Category    string
	Price       float64
	OccurredAt  time.Time
}

// DTO para transportar los resultados de la consulta de tendencia.
type DailyEventTrend struct {
	Day       time.Time `json:"day"`
	EventType string    `json:"eventType"`
	Count     uint64    `json:"count"`
}

type CatalogAnalyticsRepository interface {
	LogBatch(ctx context.Context, records []CatalogEventRecord) error
	GetDailyTrend(ctx context.Context, start, end time.Time) ([]DailyEventTrend, error)
}

// ---------- Helpers comunes (cache keys, etc.) ----------

func ProductCacheKeyByID(id uuid.UUID) string {
	return fmt.Sprintf("product:id:%s", id.String())
}
