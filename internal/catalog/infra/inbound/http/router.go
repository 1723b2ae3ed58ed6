package http

import "github.com/gin-gonic/gin"

// RegisterProductRoutes registra las rutas HTTP del catálogo.
func RegisterProductRoutes(r *gin.Engine, handler *ProductHandler) {
	r.GET("/", handler.Home)

	// Vista en tiempo real + API del listado
	rt := r.Group("/realTimeProducts")
	{
		rt.GET("", handler.ListRealTime)
		rt.GET("/events", handler.Events)
		rt.POST("/messages", handler.SendMessage)
		rt.GET("/:id", handler.GetProduct)
		rt.POST("", handler.CreateProduct)
		rt.PUT("/:id", handler.UpdateProduct)
		rt.DELETE("/:id", handler.DeleteProduct)
	}

	// Mismas operaciones, siempre en JSON
	api := r.Group("/api/products")
	{
		api.GET("", handler.ListAPI)
		api.GET("/:id", handler.GetProduct)
		api.POST("", handler.CreateProduct)
		api.PUT("/:id", handler.UpdateProduct)
		api.DELETE("/:id", handler.DeleteProduct)
	}
}

// RegisterAnalyticsRoutes solo se llama cuando hay ClickHouse configurado.
func RegisterAnalyticsRoutes(r *gin.Engine, handler *AnalyticsHandler) {
	r.GET("/api/analytics/trend", handler.Trend)
}
