package bus

import "context"

// Keyer lo implementan los eventos que deben compartir partición (mismo agregado).
type Keyer interface {
	PartitionKey() string
}

// EventBus publica un evento; cada adapter decide topic y codificación.
type EventBus interface {
	Publish(ctx context.Context, event interface{}) error
}

// Subscriber entrega los eventos publicados a oyentes locales (SSE, consumidores in-process).
type Subscriber interface {
	Subscribe(bufferSize int) <-chan interface{}
	Unsubscribe(ch <-chan interface{})
}
