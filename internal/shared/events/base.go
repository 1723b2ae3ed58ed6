package events

import (
	"encoding/json"
	"time"
)

// Base de todos los eventos (integración y tiempo real)
type IntegrationEvent struct {
	Type      string          `json:"type"`
	Key       string          `json:"key,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"` // contenido específico del evento
}

// NewIntegrationEvent serializa data dentro del sobre común.
func NewIntegrationEvent(eventType, key string, data interface{}) (IntegrationEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return IntegrationEvent{}, err
	}
	return IntegrationEvent{
		Type:      eventType,
		Key:       key,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// PartitionKey agrupa en Kafka los eventos del mismo agregado.
func (e IntegrationEvent) PartitionKey() string {
	return e.Key
}
