package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/hexashop/internal/catalog/application"
	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	sharedEvents "github.com/davicafu/hexashop/internal/shared/events"
	"github.com/davicafu/hexashop/internal/shared/infra/metrics"
	sharedBus "github.com/davicafu/hexashop/internal/shared/infra/platform/bus"
	"github.com/davicafu/hexashop/internal/web"
	"github.com/davicafu/hexashop/pkg/utils"
)

const (
	titleRealTime   = "Productos en tiempo real"
	msgListFailed   = "Error al cargar los productos"
	msgCreatedView  = "Producto agregado correctamente"
	msgMissing      = "Faltan campos requeridos"
	msgInvalidID    = "ID Invalido"
	msgNotFound     = "Producto no encontrado."
	msgDeleted      = "Producto eliminado con exito."
	msgCriticalView = "Error crítico al procesar la solicitud"

	// ThumbnailPrefix es la ruta pública de las imágenes subidas.
	ThumbnailPrefix = "/static/img/"

	sseKeepAlive = 25 * time.Second
)

// ProductHandler encapsula los endpoints HTTP del catálogo.
type ProductHandler struct {
	query     *application.CatalogQuery
	service   *application.ProductService
	live      sharedBus.Subscriber
	metrics   *metrics.Metrics
	uploadDir string
	liveBuf   int
	log       *zap.Logger
}

// NewProductHandler crea un ProductHandler. uploadDir es el directorio físico de /static/img.
func NewProductHandler(
	query *application.CatalogQuery,
	service *application.ProductService,
	live sharedBus.Subscriber,
	m *metrics.Metrics,
	uploadDir string,
	liveBuf int,
	log *zap.Logger,
) *ProductHandler {
	if liveBuf <= 0 {
		liveBuf = 16
	}
	return &ProductHandler{
		query:     query,
		service:   service,
		live:      live,
		metrics:   m,
		uploadDir: uploadDir,
		liveBuf:   liveBuf,
		log:       log,
	}
}

// --- Listado ---

// ListRealTime endpoint GET /realTimeProducts: JSON si llega algún parámetro, vista si no.
func (h *ProductHandler) ListRealTime(c *gin.Context) {
	params := application.ParseListParams(c.Request.URL.Query())
	h.list(c, params, params.Explicit)
}

// ListAPI endpoint GET /api/products: siempre JSON.
func (h *ProductHandler) ListAPI(c *gin.Context) {
	h.list(c, application.ParseListParams(c.Request.URL.Query()), true)
}

func (h *ProductHandler) list(c *gin.Context, params application.ListParams, asJSON bool) {
	env := h.query.ListProducts(c.Request.Context(), params, RequestBaseURL(c))

	status := http.StatusOK
	if env.Failed() {
		status = http.StatusInternalServerError
	}

	if asJSON {
		h.metrics.ObserveListing("json", env.Status)
		c.JSON(status, env)
		return
	}

	h.metrics.ObserveListing("html", env.Status)
	view := gin.H{
		"title":              titleRealTime,
		"products":           env.Payload,
		"isRealTimeProducts": true,
	}
	if env.Failed() {
		view["msg"] = msgListFailed
	}
	c.HTML(status, web.ViewRealTimeProducts, view)
}

// RequestBaseURL reconstruye scheme://host/path de la petición, sin query string.
func RequestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, c.Request.URL.Path)
}

// Home endpoint GET /: portada con todo el catálogo.
func (h *ProductHandler) Home(c *gin.Context) {
	products, err := h.service.ListAllProducts(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to load home products", zap.Error(err))
		utils.SendServiceUnavailable(c, err.Error())
		return
	}

	view := make([]catalogDomain.Product, 0, len(products))
	for _, p := range products {
		view = append(view, p.WithDisplayDefaults())
	}
	c.HTML(http.StatusOK, web.ViewHome, gin.H{"title": "Inicio", "products": view})
}

// --- CRUD ---

// GetProduct endpoint GET /realTimeProducts/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.service.GetProductByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct endpoint POST /realTimeProducts (multipart con imagen opcional) o JSON en /api.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	in, err := h.bindCreate(c)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, catalogDomain.ErrInvalidProduct) {
			utils.SendBadRequest(c, err.Error())
			return
		}
		h.createFailed(c, err)
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{"message": application.MsgProductAdded, "product": product})
		return
	}
	h.renderCatalog(c, http.StatusOK, msgCreatedView)
}

func (h *ProductHandler) createFailed(c *gin.Context, err error) {
	if wantsJSON(c) {
		utils.SendServiceUnavailable(c, "Error al agregar el producto: "+err.Error())
		return
	}
	h.renderCatalog(c, http.StatusServiceUnavailable, "Error al agregar el producto: "+err.Error())
}

// renderCatalog vuelve a pintar la vista en tiempo real con el catálogo completo.
func (h *ProductHandler) renderCatalog(c *gin.Context, status int, msg string) {
	products, err := h.service.ListAllProducts(c.Request.Context())
	if err != nil {
		products = []*catalogDomain.Product{}
		msg = msgCriticalView
	}
	c.HTML(status, web.ViewRealTimeProducts, gin.H{
		"title":              titleRealTime,
		"products":           products,
		"msg":                msg,
		"isRealTimeProducts": true,
	})
}

// createProductRequest es el cuerpo JSON del alta. binding lo aplica gin con validator/v10.
type createProductRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Code        string  `json:"code" binding:"required"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category" binding:"required"`
	Status      *bool   `json:"status"`
	Thumbnail   string  `json:"thumbnails"`
}

// createProductForm es el formulario multipart del alta. price y stock llegan como
// texto para devolver el mensaje de cada campo.
type createProductForm struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description"`
	Code        string `form:"code" binding:"required"`
	Price       string `form:"price" binding:"required"`
	Stock       string `form:"stock" binding:"required"`
	Category    string `form:"category" binding:"required"`
	Status      string `form:"status"`
}

// bindCreate lee JSON o formulario. Presencia de campos por binding; rangos y
// textos en blanco los valida el dominio.
func (h *ProductHandler) bindCreate(c *gin.Context) (application.CreateProductInput, error) {
	if c.ContentType() == gin.MIMEJSON {
		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return application.CreateProductInput{}, bindError(err)
		}
		return application.CreateProductInput{
			Title: req.Title, Description: req.Description, Code: req.Code,
			Price: req.Price, Stock: req.Stock, Category: req.Category,
			Status: req.Status == nil || *req.Status, Thumbnail: req.Thumbnail,
		}, nil
	}

	var form createProductForm
	if err := c.ShouldBind(&form); err != nil {
		return application.CreateProductInput{}, bindError(err)
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(form.Price), 64)
	if err != nil {
		return application.CreateProductInput{}, errors.New("El precio debe ser mayor a 0")
	}
	stock, err := strconv.Atoi(strings.TrimSpace(form.Stock))
	if err != nil {
		return application.CreateProductInput{}, errors.New("El stock debe ser mayor o igual a 0")
	}

	thumbnail, err := h.saveImage(c)
	if err != nil {
		return application.CreateProductInput{}, err
	}

	return application.CreateProductInput{
		Title:       form.Title,
		Description: form.Description,
		Code:        form.Code,
		Price:       price,
		Stock:       stock,
		Category:    form.Category,
		Status:      form.Status == "true",
		Thumbnail:   thumbnail,
	}, nil
}

// bindError traduce los fallos de validación de gin al mensaje del formulario.
func bindError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return errors.New(msgMissing)
	}
	return err
}

// saveImage guarda el fichero "image" si viene; "" deja la miniatura por defecto.
func (h *ProductHandler) saveImage(c *gin.Context) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}

	name := fmt.Sprintf("image-%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], strings.ToLower(filepath.Ext(file.Filename)))
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, name)); err != nil {
		h.log.Error("Failed to store uploaded image", zap.String("file", file.Filename), zap.Error(err))
		return "", fmt.Errorf("no se pudo guardar la imagen: %w", err)
	}
	return ThumbnailPrefix + name, nil
}

// Usamos punteros para que los campos sean opcionales en el JSON
type updateProductRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Code        *string  `json:"code,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Status      *bool    `json:"status,omitempty"`
	Thumbnail   *string  `json:"thumbnails,omitempty"`
}

// UpdateProduct endpoint PUT /realTimeProducts/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), id, catalogDomain.ProductPatch{
		Title: req.Title, Description: req.Description, Code: req.Code, Price: req.Price,
		Stock: req.Stock, Category: req.Category, Status: req.Status, Thumbnail: req.Thumbnail,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct endpoint DELETE /realTimeProducts/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	utils.SendMessage(c, http.StatusOK, msgDeleted)
}

// --- Tiempo real ---

// SendMessage endpoint POST /realTimeProducts/messages
func (h *ProductHandler) SendMessage(c *gin.Context) {
	var req struct {
		User    string `json:"user"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), req.User, req.Message)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, msg)
}

// Events endpoint GET /realTimeProducts/events: flujo SSE de eventos en vivo.
// Un navegador lento pierde eventos; nunca frena a quien publica.
func (h *ProductHandler) Events(c *gin.Context) {
	ch := h.live.Subscribe(h.liveBuf)
	defer h.live.Unsubscribe(ch)

	h.metrics.LiveConnected(1)
	defer h.metrics.LiveConnected(-1)

	keepAlive := time.NewTicker(sseKeepAlive)
	defer keepAlive.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-keepAlive.C:
			c.SSEvent("ping", "")
			return true
		case msg, ok := <-ch:
			if !ok {
				return false
			}
			payload, isBytes := msg.([]byte)
			if !isBytes {
				return true
			}
			var evt sharedEvents.IntegrationEvent
			if err := json.Unmarshal(payload, &evt); err != nil {
				h.log.Warn("Malformed live event", zap.Error(err))
				return true
			}
			c.SSEvent(evt.Type, evt.Data)
			return true
		}
	})
}

// --- Helpers ---

// wantsJSON distingue clientes de API de navegadores que envían el formulario.
func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.FullPath(), "/api/") {
		return true
	}
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, msgInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func (h *ProductHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalogDomain.ErrProductNotFound):
		utils.SendNotFound(c, msgNotFound)
	case errors.Is(err, catalogDomain.ErrInvalidProduct):
		utils.SendBadRequest(c, err.Error())
	default:
		h.log.Error("Product request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.SendInternalServerError(c, err.Error())
	}
}
