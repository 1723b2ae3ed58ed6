// Package sqlcriteria traduce el árbol de criterios del dominio a cláusulas WHERE.
package sqlcriteria

import (
	"fmt"
	"strings"

	sharedDomain "github.com/davicafu/hexashop/internal/shared/domain"
)

// Dialect resuelve las diferencias de placeholders y búsqueda sin mayúsculas.
type Dialect struct {
	// Placeholder devuelve el marcador del argumento n (base 1).
	Placeholder func(n int) string
	// Contains arma la comparación "campo contiene texto" con el marcador dado.
	Contains func(field, placeholder string) string
}

// SQLiteLower es la función de minúsculas Unicode que registra el adapter SQLite.
// LOWER de SQLite solo convierte ASCII ("Électronique" no casaría con "électronique").
const SQLiteLower = "unicode_lower"

var (
	Postgres = Dialect{
		Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		Contains: func(field, ph string) string {
			return fmt.Sprintf(`%s ILIKE %s ESCAPE '\'`, field, ph)
		},
	}
	SQLite = Dialect{
		Placeholder: func(int) string { return "?" },
		Contains: func(field, ph string) string {
			return fmt.Sprintf(`%[1]s(%[2]s) LIKE %[1]s(%[3]s) ESCAPE '\'`, SQLiteLower, field, ph)
		},
	}
)

type fragment struct {
	sql  string
	args []interface{}
}

// Where devuelve la condición (sin la palabra WHERE) y sus argumentos.
// Cadena vacía cuando los criterios no restringen nada.
func Where(criteria sharedDomain.Criteria, d Dialect) (string, []interface{}) {
	n := 0
	leaf := func(c sharedDomain.Criterion) fragment {
		n++
		ph := d.Placeholder(n)
		switch c.Op {
		case sharedDomain.OpContains:
			return fragment{
				sql:  d.Contains(c.Field, ph),
				args: []interface{}{"%" + escapeLike(fmt.Sprint(c.Value)) + "%"},
			}
		default:
			return fragment{
				sql:  fmt.Sprintf("%s %s %s", c.Field, c.Op, ph),
				args: []interface{}{c.Value},
			}
		}
	}
	combine := func(op sharedDomain.LogicalOperator, parts []fragment) fragment {
		sqls := make([]string, 0, len(parts))
		var args []interface{}
		for _, p := range parts {
			sqls = append(sqls, p.sql)
			args = append(args, p.args...)
		}
		return fragment{sql: "(" + strings.Join(sqls, " "+string(op)+" ") + ")", args: args}
	}

	out, ok := sharedDomain.Fold(criteria, leaf, combine)
	if !ok {
		return "", nil
	}
	return out.sql, out.args
}

// escapeLike neutraliza los comodines de LIKE para que el texto se busque literal.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
