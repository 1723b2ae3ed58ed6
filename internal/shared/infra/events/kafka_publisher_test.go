package events

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/hexashop/internal/shared/events"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestKafkaPublisher_UsesPartitionKeyAndTypeHeader(t *testing.T) {
	// Arrange
	writer := &captureWriter{}
	pub := NewKafkaPublisher(writer, zap.NewNop())
	evt, err := sharedEvents.NewIntegrationEvent("catalog.product.created", "p-1", map[string]int{"stock": 3})
	require.NoError(t, err)

	// Act
	require.NoError(t, pub.Publish(context.Background(), evt))

	// Assert
	require.Len(t, writer.msgs, 1)
	assert.Equal(t, []byte("p-1"), writer.msgs[0].Key)
	require.Len(t, writer.msgs[0].Headers, 1)
	assert.Equal(t, "type", writer.msgs[0].Headers[0].Key)
	assert.Equal(t, []byte("catalog.product.created"), writer.msgs[0].Headers[0].Value)
}

func TestKafkaPublisher_PropagatesWriterError(t *testing.T) {
	pub := NewKafkaPublisher(&captureWriter{err: errors.New("broker down")}, zap.NewNop())

	err := pub.Publish(context.Background(), map[string]string{"a": "b"})

	assert.EqualError(t, err, "broker down")
}
