package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct_TrimsAndDefaultsThumbnail(t *testing.T) {
	// Act
	p, err := NewProduct("  Mate  ", " calabaza ", " M-01 ", 12.5, 3, " Bazar ", true, "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Mate", p.Title)
	assert.Equal(t, "calabaza", p.Description)
	assert.Equal(t, "M-01", p.Code)
	assert.Equal(t, "Bazar", p.Category)
	assert.Equal(t, DefaultThumbnail, p.Thumbnail)
	assert.NotEqual(t, uuid.Nil, p.ID, "debe tener ID")
	assert.False(t, p.CreatedAt.IsZero())
}

func TestNewProduct_ValidationRules(t *testing.T) {
	cases := []struct {
		name     string
		title    string
		code     string
		price    float64
		stock    int
		category string
		wantMsg  string
	}{
		{"sin título", " ", "C1", 10, 1, "cat", "title is required"},
		{"sin código", "T", "", 10, 1, "cat", "code is required"},
		{"precio cero", "T", "C1", 0, 1, "cat", "price must be greater than 0"},
		{"stock negativo", "T", "C1", 10, -1, "cat", "stock must be at least 0"},
		{"sin categoría", "T", "C1", 10, 1, "", "category is required"},
		{"precio infinito", "T", "C1", math.Inf(1), 1, "cat", "price must be a finite number"},
		{"precio -infinito", "T", "C1", math.Inf(-1), 1, "cat", "price must be a finite number"},
		{"precio NaN", "T", "C1", math.NaN(), 1, "cat", "price must be a finite number"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProduct(tc.title, "", tc.code, tc.price, tc.stock, tc.category, true, "")

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidProduct))
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestProduct_ApplyPatch(t *testing.T) {
	// Arrange
	p, err := NewProduct("Mate", "", "M-01", 10, 1, "Bazar", true, "/static/img/mate.jpg")
	require.NoError(t, err)
	p.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	before := p.UpdatedAt
	price := 15.0
	status := false

	// Act
	err = p.Apply(ProductPatch{Price: &price, Status: &status})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 15.0, p.Price)
	assert.False(t, p.Status)
	assert.Equal(t, "Mate", p.Title, "los campos no enviados no cambian")
	assert.True(t, p.UpdatedAt.After(before))
}

func TestProduct_ApplyInvalidPatchLeavesProductUntouched(t *testing.T) {
	p, err := NewProduct("Mate", "", "M-01", 10, 1, "Bazar", true, "")
	require.NoError(t, err)
	bad := -3.0

	err = p.Apply(ProductPatch{Price: &bad})

	assert.ErrorIs(t, err, ErrInvalidProduct)
	assert.Equal(t, 10.0, p.Price)
}

func TestProduct_WithDisplayDefaults(t *testing.T) {
	shown := Product{Price: 5}.WithDisplayDefaults()

	assert.Equal(t, "Sin título", shown.Title)
	assert.Equal(t, "Sin descripción", shown.Description)
	assert.Equal(t, "Sin categoría", shown.Category)
	assert.Equal(t, DefaultThumbnail, shown.Thumbnail)
}

func TestProduct_JSONFieldNames(t *testing.T) {
	p, err := NewProduct("Mate", "", "M-01", 10, 1, "Bazar", true, "")
	require.NoError(t, err)

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"_id", "title", "description", "code", "price", "stock", "category", "status", "thumbnails"} {
		assert.Contains(t, fields, key)
	}
}

func TestProduct_ApplyRejectsNonFinitePrice(t *testing.T) {
	p, err := NewProduct("Mate", "", "M-01", 12.5, 3, "Bazar", true, "")
	require.NoError(t, err)
	inf := math.Inf(1)

	err = p.Apply(ProductPatch{Price: &inf})

	assert.ErrorIs(t, err, ErrInvalidProduct)
	assert.Equal(t, 12.5, p.Price)
	_, err = json.Marshal(p)
	assert.NoError(t, err)
}
