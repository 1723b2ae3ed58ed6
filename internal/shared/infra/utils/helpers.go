package utils

import (
	"encoding/json"

	"go.uber.org/zap"
)

// Ternary devuelve ifTrue o ifFalse según condition.
func Ternary[T any](condition bool, ifTrue, ifFalse T) T {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// HandleEventData decodifica el Data de un evento de integración y llama a handler.
// Un payload corrupto se registra con su tipo de evento y se descarta.
func HandleEventData[T any](log *zap.Logger, eventType string, data json.RawMessage, handler func(T)) bool {
	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Warn("Failed to decode event data", zap.String("type", eventType), zap.Error(err))
		return false
	}
	handler(payload)
	return true
}
