package domain

import (
	"fmt"
	"strings"

	shared "github.com/davicafu/hexashop/internal/shared/domain"
)

// Campos filtrables / ordenables del catálogo.
const (
	FieldCategory = "category"
	FieldStatus   = "status"
	FieldPrice    = "price"
	FieldTitle    = "title"
	FieldCode     = "code"
)

// --- Criterios Específicos para el Dominio Catalog ---

// CategoryContainsCriteria busca productos cuya categoría contenga un texto (sin distinguir mayúsculas).
type CategoryContainsCriteria struct {
	Text string
}

// ToConditions implementa la interfaz shared.Criteria.
func (c CategoryContainsCriteria) ToConditions() []shared.Criterion {
	return []shared.Criterion{
		{Field: FieldCategory, Op: shared.OpContains, Value: c.Text},
	}
}

// -----------------------------------------------------------

// StatusCriteria busca productos activos o inactivos.
type StatusCriteria struct {
	Status bool
}

// ToConditions implementa la interfaz shared.Criteria.
func (c StatusCriteria) ToConditions() []shared.Criterion {
	return []shared.Criterion{
		{Field: FieldStatus, Op: shared.OpEq, Value: c.Status},
	}
}

// -----------------------------------------------------------

// ParseStatusLiteral reconoce "true"/"false" sin distinguir mayúsculas.
func ParseStatusLiteral(s string) (value bool, ok bool) {
	switch {
	case strings.EqualFold(s, "true"):
		return true, true
	case strings.EqualFold(s, "false"):
		return false, true
	}
	return false, false
}

// SearchCriteria arma el filtro del buscador del catálogo:
//   - texto vacío: todos los productos
//   - en otro caso: categoría contiene el texto, OR estado == literal booleano
//     (esta segunda rama solo existe si el texto es "true"/"false").
//
// Un texto "true" encuentra productos activos y también categorías que contengan "true".
func SearchCriteria(query string) shared.Criteria {
	if query == "" {
		return shared.MatchAll()
	}
	branches := []shared.Criteria{CategoryContainsCriteria{Text: query}}
	if status, ok := ParseStatusLiteral(query); ok {
		branches = append(branches, StatusCriteria{Status: status})
	}
	return shared.Or(branches...)
}

// -----------------------------------------------------------

// Matches evalúa los criterios contra el producto en memoria (stores de fichero, fakes de test).
func (p *Product) Matches(c shared.Criteria) bool {
	return shared.Evaluate(c, p.matchCriterion)
}

func (p *Product) matchCriterion(c shared.Criterion) bool {
	switch c.Field {
	case FieldCategory:
		return matchText(p.Category, c)
	case FieldTitle:
		return matchText(p.Title, c)
	case FieldCode:
		return matchText(p.Code, c)
	case FieldStatus:
		want, ok := c.Value.(bool)
		return ok && c.Op == shared.OpEq && p.Status == want
	case FieldPrice:
		want, ok := toFloat(c.Value)
		return ok && compareFloat(p.Price, c.Op, want)
	}
	return false
}

func matchText(actual string, c shared.Criterion) bool {
	want := fmt.Sprint(c.Value)
	switch c.Op {
	case shared.OpEq:
		return actual == want
	case shared.OpContains:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(want))
	case shared.OpILike:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(strings.Trim(want, "%")))
	case shared.OpLike:
		return strings.Contains(actual, strings.Trim(want, "%"))
	}
	return false
}

func compareFloat(a float64, op shared.Operator, b float64) bool {
	switch op {
	case shared.OpEq:
		return a == b
	case shared.OpGt:
		return a > b
	case shared.OpGte:
		return a >= b
	case shared.OpLt:
		return a < b
	case shared.OpLte:
		return a <= b
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
