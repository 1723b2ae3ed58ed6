package events

import (
	"github.com/google/uuid"
)

// Contratos de integración, NO entidades del dominio.
// Se definen planos para intercambio entre contextos.
type ProductChanged struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Code     string    `json:"code"`
	Category string    `json:"category"`
	Price    float64   `json:"price"`
	Stock    int       `json:"stock"`
	Status   bool      `json:"status"`
}

type ProductDeleted struct {
	ID uuid.UUID `json:"id"`
}

type CartChanged struct {
	ID    uuid.UUID `json:"id"`
	Lines int       `json:"lines"`
	Units int       `json:"units"`
}
