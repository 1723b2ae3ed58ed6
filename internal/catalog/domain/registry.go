package domain

import "time"

// Eventos de integración (Kafka / bus interno).
const (
	ProductCreated = "catalog.product.created"
	ProductUpdated = "catalog.product.updated"
	ProductDeleted = "catalog.product.deleted"
)

const CatalogTopic = "catalog"

// Eventos en tiempo real hacia los navegadores conectados.
const (
	LiveProductAdded   = "productAdded"
	LiveProductUpdated = "productUpdated"
	LiveProductDeleted = "productDeleted"
	LiveMessage        = "realTimeProducts:message"
)

const LiveTopic = "live"

// ProductsBroadcast viaja con cada cambio del catálogo: mensaje + catálogo completo.
type ProductsBroadcast struct {
	Message  string     `json:"message"`
	Products []*Product `json:"products"`
}

// ChatMessage es el eco de mensajes entre navegadores de la página en tiempo real.
type ChatMessage struct {
	User    string    `json:"user"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sentAt"`
}
