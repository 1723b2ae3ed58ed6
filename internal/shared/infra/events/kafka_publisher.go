package events

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/segmentio/kafka-go"

	sharedEvents "github.com/davicafu/hexashop/internal/shared/events"
	sharedBus "github.com/davicafu/hexashop/internal/shared/infra/platform/bus"
)

// messageWriter es el subconjunto de *kafka.Writer que usamos.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher publica eventos de integración como JSON. La clave del mensaje es la
// PartitionKey del evento (id del producto o carrito) y el tipo viaja en la cabecera "type".
type KafkaPublisher struct {
	writer messageWriter
	log    *zap.Logger
}

var _ sharedBus.EventBus = (*KafkaPublisher)(nil)

func NewKafkaPublisher(writer messageWriter, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event interface{}) error {
	msg, eventType, err := toKafkaMessage(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Kafka publish failed", zap.String("type", eventType), zap.ByteString("key", msg.Key), zap.Error(err))
		return err
	}
	p.log.Debug("Event published to Kafka", zap.String("type", eventType), zap.ByteString("key", msg.Key))
	return nil
}

func toKafkaMessage(event interface{}) (kafka.Message, string, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, "", err
	}

	msg := kafka.Message{Value: value}
	if keyer, ok := event.(sharedBus.Keyer); ok && keyer.PartitionKey() != "" {
		msg.Key = []byte(keyer.PartitionKey())
	}

	var eventType string
	if evt, ok := event.(sharedEvents.IntegrationEvent); ok {
		eventType = evt.Type
		msg.Headers = []kafka.Header{{Key: "type", Value: []byte(eventType)}}
	}
	return msg, eventType, nil
}
