package domain

// Eventos de integración de carritos; comparten el prefijo del contexto de catálogo.
const (
	CartCreated = "catalog.cart.created"
	CartUpdated = "catalog.cart.updated"
)

// LiveCartAdded se emite a los navegadores al crear un carrito.
const LiveCartAdded = "cartAdded"
