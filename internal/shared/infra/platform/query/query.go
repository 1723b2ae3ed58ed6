package query

import "math"

// ---------- Tipos de paginación / ordenamiento ----------

// OffsetPagination para paginación clásica
type OffsetPagination struct {
	Limit  int
	Offset int
}

// PageWindow traduce página (base 1) y tamaño a skip/limit.
func PageWindow(page, limit int) OffsetPagination {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		return OffsetPagination{Limit: limit}
	}
	if page-1 > math.MaxInt/limit {
		return OffsetPagination{Limit: limit, Offset: math.MaxInt}
	}
	return OffsetPagination{Limit: limit, Offset: (page - 1) * limit}
}

// Unbounded indica que no hay ventana: se devuelven todos los registros.
func (p OffsetPagination) Unbounded() bool {
	return p.Limit <= 0
}

// Sort indica campo y dirección. Field vacío = orden natural del repositorio.
type Sort struct {
	Field string // ej. "price", "created_at"
	Desc  bool
}

// IsZero indica que no se pidió ordenamiento explícito.
func (s Sort) IsZero() bool {
	return s.Field == ""
}
