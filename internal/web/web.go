// Package web embebe las vistas HTML y los scripts del navegador.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Nombres de las vistas.
const (
	ViewHome             = "home"
	ViewRealTimeProducts = "realTimeProducts"
	ViewCarts            = "carts"
	ViewNotFound         = "404"
)

var funcs = template.FuncMap{
	"price": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}

// Templates parsea todas las vistas; se instala con gin.Engine.SetHTMLTemplate.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.tmpl")
}

// Static sirve los scripts embebidos (montado en /static/js).
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static/js")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
