package events

import (
	"context"
	"encoding/json"
	"sync"

	sharedBus "github.com/davicafu/hexashop/internal/shared/infra/platform/bus"
)

// InMemoryEventBus reparte cada evento publicado entre todos sus suscriptores.
// Entrega como máximo una vez: si el buffer de un suscriptor está lleno, el evento se descarta para él.
type InMemoryEventBus struct {
	subscribers []chan interface{}
	mu          sync.RWMutex
	topic       string // Identificador del topic que maneja este bus
	dropped     func(topic string)
}

// Verifica en tiempo de compilación que cumple las interfaces
var (
	_ sharedBus.EventBus   = (*InMemoryEventBus)(nil)
	_ sharedBus.Subscriber = (*InMemoryEventBus)(nil)
)

// NewInMemoryEventBus crea un bus de eventos para un topic específico.
func NewInMemoryEventBus(topic string) *InMemoryEventBus {
	return &InMemoryEventBus{
		subscribers: make([]chan interface{}, 0),
		topic:       topic,
	}
}

// OnDrop registra un callback invocado por cada entrega descartada (métricas).
func (b *InMemoryEventBus) OnDrop(fn func(topic string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dropped = fn
}

// Topic devuelve el nombre lógico del bus.
func (b *InMemoryEventBus) Topic() string {
	return b.topic
}

// Publish envía el evento serializado a todos los suscriptores sin bloquear.
// Se reparte bajo el RLock para que Unsubscribe no cierre un canal en pleno envío.
func (b *InMemoryEventBus) Publish(ctx context.Context, event interface{}) error {
	payloadBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, subChan := range b.subscribers {
		select {
		case subChan <- payloadBytes:
		default:
			if b.dropped != nil {
				b.dropped(b.topic)
			}
		}
	}
	return nil
}

// Subscribe suscribe un nuevo oyente a este bus.
func (b *InMemoryEventBus) Subscribe(bufferSize int) <-chan interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	subChan := make(chan interface{}, bufferSize)
	b.subscribers = append(b.subscribers, subChan)
	return subChan
}

// Unsubscribe quita al oyente y cierra su canal.
func (b *InMemoryEventBus) Unsubscribe(ch <-chan interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, subChan := range b.subscribers {
		if subChan == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(subChan)
			return
		}
	}
}

// Subscribers devuelve cuántos oyentes hay conectados.
func (b *InMemoryEventBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
