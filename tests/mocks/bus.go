package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/stretchr/testify/mock"

	sharedEvents "github.com/davicafu/hexashop/internal/shared/events"
	sharedBus "github.com/davicafu/hexashop/internal/shared/infra/platform/bus"
)

// MockPublisher es un mock de testify del EventBus.
type MockPublisher struct {
	mock.Mock
}

var _ sharedBus.EventBus = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(ctx context.Context, event interface{}) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// RecordingBus guarda todos los eventos publicados para inspeccionarlos.
type RecordingBus struct {
	mu     sync.Mutex
	Events []sharedEvents.IntegrationEvent
	Err    error
}

var _ sharedBus.EventBus = (*RecordingBus)(nil)

func (b *RecordingBus) Publish(ctx context.Context, event interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	if evt, ok := event.(sharedEvents.IntegrationEvent); ok {
		b.Events = append(b.Events, evt)
	}
	return nil
}

// Types devuelve los tipos publicados en orden.
func (b *RecordingBus) Types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.Events))
	for _, e := range b.Events {
		out = append(out, e.Type)
	}
	return out
}

// Decode deserializa el Data del evento i en dest.
func (b *RecordingBus) Decode(i int, dest interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return json.Unmarshal(b.Events[i].Data, dest)
}
