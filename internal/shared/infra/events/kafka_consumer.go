package events

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const readRetryDelay = time.Second

// MessageHandler recibe cada mensaje de integración (clave + JSON del evento).
type MessageHandler interface {
	HandleMessage(ctx context.Context, key string, payload []byte)
}

// messageReader es el subconjunto de *kafka.Reader que usamos.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Config() kafka.ReaderConfig
	Close() error
}

// ConsumerAdapter lee un topic de Kafka y reenvía cada mensaje al handler.
// Con GroupID configurado, ReadMessage confirma el offset tras cada lectura.
type ConsumerAdapter struct {
	reader  messageReader
	handler MessageHandler
	log     *zap.Logger
}

func NewConsumerAdapter(reader messageReader, handler MessageHandler, log *zap.Logger) *ConsumerAdapter {
	return &ConsumerAdapter{reader: reader, handler: handler, log: log}
}

// Start lanza el bucle de lectura en una goroutine; termina al cancelar ctx y cierra el reader.
func (c *ConsumerAdapter) Start(ctx context.Context) {
	cfg := c.reader.Config()
	c.log.Info("🎧 Kafka consumer started",
		zap.String("topic", cfg.Topic),
		zap.String("group", cfg.GroupID),
		zap.Strings("brokers", cfg.Brokers),
	)

	go func() {
		defer c.reader.Close()
		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.log.Info("Kafka consumer stopped", zap.String("topic", cfg.Topic))
					return
				}
				c.log.Error("Failed to read Kafka message", zap.String("topic", cfg.Topic), zap.Error(err))
				select {
				case <-time.After(readRetryDelay):
				case <-ctx.Done():
					return
				}
				continue
			}
			c.handler.HandleMessage(ctx, string(msg.Key), msg.Value)
		}
	}()
}

// ConsumeChannel entrega a handler los mensajes de un bus en memoria hasta que ctx termina.
// El bus publica JSON ya serializado; otros valores se ignoran.
func ConsumeChannel(ctx context.Context, ch <-chan interface{}, handler MessageHandler, log *zap.Logger) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				log.Info("In-memory consumer stopped")
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if payload, ok := msg.([]byte); ok {
					handler.HandleMessage(ctx, "", payload)
				}
			}
		}
	}()
}
