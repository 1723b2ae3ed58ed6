package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// CatalogAnalyticsRepo implementa CatalogAnalyticsRepository para ClickHouse.
type CatalogAnalyticsRepo struct {
	db *sql.DB
}

// NewCatalogAnalyticsRepo abre la conexión y comprueba que responde.
func NewCatalogAnalyticsRepo(addr string, dbName string) (*CatalogAnalyticsRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
	})

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return NewCatalogAnalyticsRepoFromDB(conn), nil
}

// NewCatalogAnalyticsRepoFromDB envuelve una conexión ya abierta.
func NewCatalogAnalyticsRepoFromDB(db *sql.DB) *CatalogAnalyticsRepo {
	return &CatalogAnalyticsRepo{db: db}
}

func (r *CatalogAnalyticsRepo) Close() error {
	return r.db.Close()
}

// LogBatch inserta el lote completo en una única transacción.
func (r *CatalogAnalyticsRepo) LogBatch(ctx context.Context, records []catalogDomain.CatalogEventRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO catalog_events_log (event_type, aggregate_id, category, price, event_time)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.EventType, rec.AggregateID, rec.Category, rec.Price, rec.OccurredAt); err != nil {
			// Si un registro falla, hacemos rollback de todo el lote.
			tx.Rollback()
			return fmt.Errorf("failed to exec statement for %s %s: %w", rec.EventType, rec.AggregateID, err)
		}
	}

	return tx.Commit()
}

// GetDailyTrend cuenta eventos por día y tipo en el rango [start, end].
func (r *CatalogAnalyticsRepo) GetDailyTrend(ctx context.Context, start, end time.Time) ([]catalogDomain.DailyEventTrend, error) {
	query := `
		SELECT
			toStartOfDay(event_time) AS day,
			event_type,
			count() AS total
		FROM catalog_events_log
		WHERE event_time BETWEEN ? AND ?
		GROUP BY day, event_type
		ORDER BY day, event_type
	`
	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trends := []catalogDomain.DailyEventTrend{}
	for rows.Next() {
		var trend catalogDomain.DailyEventTrend
		if err := rows.Scan(&trend.Day, &trend.EventType, &trend.Count); err != nil {
			return nil, err
		}
		trends = append(trends, trend)
	}
	return trends, rows.Err()
}

// InitSchema crea la tabla en ClickHouse si no existe.
func (r *CatalogAnalyticsRepo) InitSchema(ctx context.Context) error {
	// Particionada por mes; ordenada por los campos de consulta habituales.
	query := `
		CREATE TABLE IF NOT EXISTS catalog_events_log (
			event_type   LowCardinality(String),
			aggregate_id String,
			category     String,
			price        Float64,
			event_time   DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(event_time)
		ORDER BY (event_type, event_time);
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

// Verificación estática de la interfaz.
var _ catalogDomain.CatalogAnalyticsRepository = (*CatalogAnalyticsRepo)(nil)
