package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	sharedBus "github.com/davicafu/hexashop/internal/shared/infra/platform/bus"
)

// DefaultThumbnail se usa cuando el producto no trae imagen.
const DefaultThumbnail = "/static/img/default-product.jpg"

// Product es un artículo del catálogo. Los nombres JSON mantienen el contrato
// que ya consumen las vistas y el script del navegador.
type Product struct {
	ID          uuid.UUID `json:"_id"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Code        string    `json:"code" validate:"required"`
	Price       float64   `json:"price" validate:"finite,gt=0"`
	Stock       int       `json:"stock" validate:"gte=0"`
	Category    string    `json:"category" validate:"required"`
	Status      bool      `json:"status"`
	Thumbnail   string    `json:"thumbnails"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductPatch lleva solo los campos que el cliente quiere cambiar.
type ProductPatch struct {
	Title       *string
	Description *string
	Code        *string
	Price       *float64
	Stock       *int
	Category    *string
	Status      *bool
	Thumbnail   *string
}

var validate = newValidator()

// newValidator añade "finite": rechaza NaN e ±Inf, que gt=0 deja pasar para +Inf
// y que encoding/json no sabe serializar.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}

// NewProduct normaliza y valida un producto nuevo.
func NewProduct(title, description, code string, price float64, stock int, category string, status bool, thumbnail string) (*Product, error) {
	now := time.Now().UTC()
	p := &Product{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Code:        strings.TrimSpace(code),
		Price:       price,
		Stock:       stock,
		Category:    strings.TrimSpace(category),
		Status:      status,
		Thumbnail:   strings.TrimSpace(thumbnail),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Thumbnail == "" {
		p.Thumbnail = DefaultThumbnail
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate comprueba las reglas del producto y devuelve ErrInvalidProduct envuelto.
func (p *Product) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidProduct, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "finite":
		return field + " must be a finite number"
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

// Apply aplica un cambio parcial y revalida. Si falla, el producto queda intacto.
func (p *Product) Apply(patch ProductPatch) error {
	next := *p
	if patch.Title != nil {
		next.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		next.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Code != nil {
		next.Code = strings.TrimSpace(*patch.Code)
	}
	if patch.Price != nil {
		next.Price = *patch.Price
	}
	if patch.Stock != nil {
		next.Stock = *patch.Stock
	}
	if patch.Category != nil {
		next.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Status != nil {
		next.Status = *patch.Status
	}
	if patch.Thumbnail != nil {
		next.Thumbnail = strings.TrimSpace(*patch.Thumbnail)
		if next.Thumbnail == "" {
			next.Thumbnail = DefaultThumbnail
		}
	}
	if err := next.Validate(); err != nil {
		return err
	}
	next.UpdatedAt = time.Now().UTC()
	*p = next
	return nil
}

// WithDisplayDefaults rellena los huecos que la portada no debe mostrar vacíos.
func (p Product) WithDisplayDefaults() Product {
	if p.Title == "" {
		p.Title = "Sin título"
	}
	if p.Description == "" {
		p.Description = "Sin descripción"
	}
	if p.Category == "" {
		p.Category = "Sin categoría"
	}
	if p.Thumbnail == "" {
		p.Thumbnail = DefaultThumbnail
	}
	return p
}

func (p *Product) PartitionKey() string {
	return p.ID.String()
}

// Verificación estática para asegurar que Product implementa la interfaz
var _ sharedBus.Keyer = (*Product)(nil)
