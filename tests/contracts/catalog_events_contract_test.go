package contracts

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cartApp "github.com/davicafu/hexashop/internal/cart/application"
	cartDomain "github.com/davicafu/hexashop/internal/cart/domain"
	catalogApp "github.com/davicafu/hexashop/internal/catalog/application"
	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	catalogEvents "github.com/davicafu/hexashop/internal/catalog/infra/inbound/events"
	"github.com/davicafu/hexashop/tests/mocks"
)

// captureQueue sustituye al BatchWorker y guarda las filas recibidas.
type captureQueue struct {
	mu      sync.Mutex
	records []catalogDomain.CatalogEventRecord
}

func (q *captureQueue) Enqueue(rec catalogDomain.CatalogEventRecord) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.records = append(q.records, rec)
	return true
}

// deliver serializa cada evento publicado como lo haría el bus y lo entrega al consumidor.
func deliver(t *testing.T, bus *mocks.RecordingBus, consumer *catalogEvents.AnalyticsConsumer) {
	for _, evt := range bus.Events {
		payload, err := json.Marshal(evt)
		require.NoError(t, err)
		consumer.HandleMessage(context.Background(), evt.Key, payload)
	}
}

func TestCatalogEventsContract_ProducerToAnalytics(t *testing.T) {
	ctx := context.Background()
	events := &mocks.RecordingBus{}
	products := catalogApp.NewProductService(mocks.NewInMemoryProductRepo(), mocks.NewDummyCache(), nil, events, zap.NewNop())
	carts := cartApp.NewCartService(mocks.NewInMemoryCartRepo(), products, nil, events, zap.NewNop())

	// Alta de producto, carrito con ese producto y baja del producto
	p, err := products.CreateProduct(ctx, catalogApp.CreateProductInput{
		Title: "Mate", Code: "M-01", Price: 12.5, Stock: 3, Category: "Bazar", Status: true,
	})
	require.NoError(t, err)
	cart, err := carts.CreateCart(ctx, cartApp.CreateCartInput{
		Products: []cartApp.CartItemInput{{Product: p.ID.String(), Quantity: 2}},
	})
	require.NoError(t, err)
	require.NoError(t, products.DeleteProduct(ctx, p.ID))

	require.Equal(t, []string{
		catalogDomain.ProductCreated, cartDomain.CartCreated, catalogDomain.ProductDeleted,
	}, events.Types())

	queue := &captureQueue{}
	deliver(t, events, catalogEvents.NewAnalyticsConsumer(queue, zap.NewNop()))

	require.Len(t, queue.records, 3)

	created := queue.records[0]
	assert.Equal(t, catalogDomain.ProductCreated, created.EventType)
	assert.Equal(t, p.ID.String(), created.AggregateID)
	assert.Equal(t, "Bazar", created.Category)
	assert.Equal(t, 12.5, created.Price)
	assert.False(t, created.OccurredAt.IsZero())

	assert.Equal(t, cartDomain.CartCreated, queue.records[1].EventType)
	assert.Equal(t, cart.ID.String(), queue.records[1].AggregateID)
	assert.Empty(t, queue.records[1].Category)

	assert.Equal(t, catalogDomain.ProductDeleted, queue.records[2].EventType)
	assert.Equal(t, p.ID.String(), queue.records[2].AggregateID)
}

func TestCatalogEventsContract_ForeignEventsAreIgnored(t *testing.T) {
	queue := &captureQueue{}
	consumer := catalogEvents.NewAnalyticsConsumer(queue, zap.NewNop())

	consumer.HandleMessage(context.Background(), "k", []byte(`{"type":"billing.invoice.created","key":"k","data":{}}`))
	consumer.HandleMessage(context.Background(), "k", []byte(`not json`))

	assert.Empty(t, queue.records)
}
