package domain

// ---------------- Operadores ----------------

type Operator string

const (
	OpEq    Operator = "="
	OpGt    Operator = ">"
	OpGte   Operator = ">="
	OpLt    Operator = "<"
	OpLte   Operator = "<="
	OpLike  Operator = "LIKE"
	OpILike Operator = "ILIKE"
	// OpContains: subcadena sin distinguir mayúsculas. Value es el texto literal, sin comodines.
	OpContains Operator = "CONTAINS"
)

type LogicalOperator string

const (
	OpAnd LogicalOperator = "AND"
	OpOr  LogicalOperator = "OR"
)

// ---------------- Criterion ----------------

// Criterion describe una condición neutral de filtrado
type Criterion struct {
	Field string
	Op    Operator
	Value interface{}
}

// ---------------- Criteria interface ----------------

// Criteria permite transformar filtros a condiciones neutrales.
// Las condiciones de un mismo Criteria hoja se combinan con AND.
type Criteria interface {
	ToConditions() []Criterion
}

// ---------------- Composite Criteria ----------------

// CompositeCriteria es un nodo del árbol de filtros. Los adaptadores lo
// recorren con Fold para respetar el operador; ToConditions solo aplana.
type CompositeCriteria struct {
	Operator  LogicalOperator
	Criterias []Criteria
}

func (c CompositeCriteria) ToConditions() []Criterion {
	var all []Criterion
	for _, crit := range c.Criterias {
		all = append(all, crit.ToConditions()...)
	}
	return all
}

// ---------------- Helpers ----------------

// And crea un CompositeCriteria con operador AND
func And(criterias ...Criteria) CompositeCriteria {
	return CompositeCriteria{Operator: OpAnd, Criterias: criterias}
}

// Or crea un CompositeCriteria con operador OR
func Or(criterias ...Criteria) CompositeCriteria {
	return CompositeCriteria{Operator: OpOr, Criterias: criterias}
}

// MatchAll no restringe nada.
func MatchAll() CompositeCriteria {
	return And()
}

// Fold reduce el árbol a la representación de un adaptador (bson, SQL, bool...).
// Devuelve ok=false cuando el árbol no impone ninguna condición.
func Fold[T any](c Criteria, leaf func(Criterion) T, combine func(LogicalOperator, []T) T) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}

	comp, isComposite := c.(CompositeCriteria)
	if !isComposite {
		conds := c.ToConditions()
		switch len(conds) {
		case 0:
			return zero, false
		case 1:
			return leaf(conds[0]), true
		}
		parts := make([]T, 0, len(conds))
		for _, cond := range conds {
			parts = append(parts, leaf(cond))
		}
		return combine(OpAnd, parts), true
	}

	var parts []T
	for _, child := range comp.Criterias {
		if v, ok := Fold(child, leaf, combine); ok {
			parts = append(parts, v)
		}
	}
	switch len(parts) {
	case 0:
		return zero, false
	case 1:
		return parts[0], true
	}
	op := comp.Operator
	if op != OpOr {
		op = OpAnd
	}
	return combine(op, parts), true
}

// Evaluate aplica el árbol en memoria; match resuelve cada condición hoja.
func Evaluate(c Criteria, match func(Criterion) bool) bool {
	result, ok := Fold(c, match, func(op LogicalOperator, parts []bool) bool {
		if op == OpOr {
			for _, p := range parts {
				if p {
					return true
				}
			}
			return false
		}
		for _, p := range parts {
			if !p {
				return false
			}
		}
		return true
	})
	if !ok {
		return true
	}
	return result
}
