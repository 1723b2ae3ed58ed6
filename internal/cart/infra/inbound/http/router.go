package http

import "github.com/gin-gonic/gin"

// RegisterCartRoutes registra las rutas de /api/carts.
func RegisterCartRoutes(r *gin.Engine, handler *CartHandler) {
	carts := r.Group("/api/carts")
	{
		carts.GET("", handler.ListCarts)
		carts.GET("/:cid", handler.GetCart)
		carts.POST("", handler.CreateCart)
		carts.PUT("/:cid", handler.ReplaceProducts)
		carts.PUT("/:cid/products/:pid", handler.SetProductQuantity)
		carts.DELETE("/:cid", handler.ClearCart)
		carts.DELETE("/:cid/products/:pid", handler.RemoveProduct)
	}
}
