package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/hexashop/internal/cart/application"
	cartDomain "github.com/davicafu/hexashop/internal/cart/domain"
	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	"github.com/davicafu/hexashop/internal/web"
	"github.com/davicafu/hexashop/pkg/utils"
)

const (
	titleCarts          = "Carritos"
	msgListFailed       = "Error al cargar los carritos"
	msgInvalidCartID    = "ID de carrito invalido"
	msgInvalidProductID = "ID de producto invalido"
	msgCartNotFound     = "Carrito no encontrado"
	msgProductNotFound  = "Producto no encontrado"
	msgNotInCart        = "Producto no encontrado en el carrito."
	msgMissing          = "Faltan campos requeridos"
)

// CartHandler encapsula los endpoints HTTP de carritos.
type CartHandler struct {
	service *application.CartService
	log     *zap.Logger
}

func NewCartHandler(service *application.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{service: service, log: log}
}

// ListCarts endpoint GET /api/carts: vista con todos los carritos poblados.
func (h *CartHandler) ListCarts(c *gin.Context) {
	carts, err := h.service.ListCarts(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to load carts", zap.Error(err))
		c.HTML(http.StatusInternalServerError, web.ViewCarts, gin.H{
			"title":   titleCarts,
			"carts":   []application.CartView{},
			"msg":     msgListFailed,
			"isCarts": true,
		})
		return
	}
	c.HTML(http.StatusOK, web.ViewCarts, gin.H{"title": titleCarts, "carts": carts, "isCarts": true})
}

// GetCart endpoint GET /api/carts/:cid
func (h *CartHandler) GetCart(c *gin.Context) {
	cid, ok := parseUUID(c, "cid", msgInvalidCartID)
	if !ok {
		return
	}
	cart, err := h.service.GetCart(c.Request.Context(), cid)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// CreateCart endpoint POST /api/carts
func (h *CartHandler) CreateCart(c *gin.Context) {
	var in application.CreateCartInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.SendBadRequest(c, msgMissing)
		return
	}
	cart, err := h.service.CreateCart(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": application.MsgCartCreated, "cart": cart})
}

// SetProductQuantity endpoint PUT /api/carts/:cid/products/:pid con {"quantity": n}.
func (h *CartHandler) SetProductQuantity(c *gin.Context) {
	cid, ok := parseUUID(c, "cid", msgInvalidCartID)
	if !ok {
		return
	}
	pid, ok := parseUUID(c, "pid", msgInvalidProductID)
	if !ok {
		return
	}
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.SendBadRequest(c, cartDomain.ErrInvalidQuantity.Error())
		return
	}

	cart, err := h.service.SetProductQuantity(c.Request.Context(), cid, pid, body.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": application.MsgLineUpdated, "cart": cart})
}

// ReplaceProducts endpoint PUT /api/carts/:cid
func (h *CartHandler) ReplaceProducts(c *gin.Context) {
	cid, ok := parseUUID(c, "cid", msgInvalidCartID)
	if !ok {
		return
	}
	var in application.ReplaceCartInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.SendBadRequest(c, msgMissing)
		return
	}
	cart, err := h.service.ReplaceProducts(c.Request.Context(), cid, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ClearCart endpoint DELETE /api/carts/:cid
func (h *CartHandler) ClearCart(c *gin.Context) {
	cid, ok := parseUUID(c, "cid", msgInvalidCartID)
	if !ok {
		return
	}
	if err := h.service.ClearCart(c.Request.Context(), cid); err != nil {
		h.writeError(c, err)
		return
	}
	utils.SendMessage(c, http.StatusOK, application.MsgCartCleared)
}

// RemoveProduct endpoint DELETE /api/carts/:cid/products/:pid
func (h *CartHandler) RemoveProduct(c *gin.Context) {
	cid, ok := parseUUID(c, "cid", msgInvalidCartID)
	if !ok {
		return
	}
	pid, ok := parseUUID(c, "pid", msgInvalidProductID)
	if !ok {
		return
	}
	if err := h.service.RemoveProduct(c.Request.Context(), cid, pid); err != nil {
		h.writeError(c, err)
		return
	}
	utils.SendMessage(c, http.StatusOK, application.MsgLineRemoved)
}

// --- Helpers ---

func parseUUID(c *gin.Context, param, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.SendBadRequest(c, msg)
		return uuid.Nil, false
	}
	return id, true
}

func (h *CartHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cartDomain.ErrCartNotFound):
		utils.SendNotFound(c, msgCartNotFound)
	case errors.Is(err, cartDomain.ErrProductNotInCart):
		utils.SendNotFound(c, msgNotInCart)
	case errors.Is(err, catalogDomain.ErrProductNotFound):
		utils.SendNotFound(c, msgProductNotFound)
	case errors.Is(err, cartDomain.ErrInvalidCart),
		errors.Is(err, cartDomain.ErrInvalidQuantity),
		errors.Is(err, cartDomain.ErrEmptyCart),
		errors.Is(err, cartDomain.ErrUnknownProduct):
		utils.SendBadRequest(c, err.Error())
	default:
		h.log.Error("Cart request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.SendInternalServerError(c, err.Error())
	}
}
