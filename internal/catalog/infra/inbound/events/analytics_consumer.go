package events

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"

	// --- Importaciones compartidas ---
	sharedEvents "github.com/davicafu/hexashop/internal/shared/events"
	sharedUtils "github.com/davicafu/hexashop/internal/shared/infra/utils"
)

// RecordQueue es la cola del BatchWorker que termina en ClickHouse.
type RecordQueue interface {
	Enqueue(rec catalogDomain.CatalogEventRecord) bool
}

// AnalyticsConsumer convierte eventos de integración en filas de analítica.
type AnalyticsConsumer struct {
	queue RecordQueue
	log   *zap.Logger
}

func NewAnalyticsConsumer(queue RecordQueue, logger *zap.Logger) *AnalyticsConsumer {
	return &AnalyticsConsumer{queue: queue, log: logger}
}

// HandleMessage es el punto de entrada para un nuevo mensaje/evento.
func (c *AnalyticsConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event", zap.String("key", key), zap.Error(err))
		return
	}

	rec := catalogDomain.CatalogEventRecord{
		EventType:   base.Type,
		AggregateID: sharedUtils.Ternary(base.Key != "", base.Key, key),
		OccurredAt:  base.Timestamp,
	}

	switch base.Type {
	case catalogDomain.ProductCreated, catalogDomain.ProductUpdated:
		sharedUtils.HandleEventData[sharedEvents.ProductChanged](c.log, base.Type, base.Data, func(evt sharedEvents.ProductChanged) {
			rec.AggregateID = evt.ID.String()
			rec.Category = evt.Category
			rec.Price = evt.Price
			c.enqueue(rec)
		})

	case catalogDomain.ProductDeleted:
		sharedUtils.HandleEventData[sharedEvents.ProductDeleted](c.log, base.Type, base.Data, func(evt sharedEvents.ProductDeleted) {
			rec.AggregateID = evt.ID.String()
			c.enqueue(rec)
		})

	default:
		// Resto de eventos del contexto (carritos): solo tipo, clave y fecha.
		if !strings.HasPrefix(base.Type, catalogDomain.CatalogTopic+".") {
			c.log.Warn("Unknown catalog event type", zap.String("type", base.Type), zap.String("key", key))
			return
		}
		c.enqueue(rec)
	}
}

func (c *AnalyticsConsumer) enqueue(rec catalogDomain.CatalogEventRecord) {
	if !c.queue.Enqueue(rec) {
		c.log.Warn("Analytics record dropped", zap.String("type", rec.EventType), zap.String("aggregate_id", rec.AggregateID))
		return
	}
	c.log.Debug("Analytics record queued", zap.String("type", rec.EventType), zap.String("aggregate_id", rec.AggregateID))
}
