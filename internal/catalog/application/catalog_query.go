package application

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	sharedQuery "github.com/davicafu/hexashop/internal/shared/infra/platform/query"
)

const (
	DefaultLimit = 10
	DefaultPage  = 1

	StatusSuccess = "success"
	StatusError   = "error"
)

// ListParams son los parámetros ya normalizados de un listado.
type ListParams struct {
	Limit int
	Page  int
	// Sort es "asc", "desc" o "" (sin orden explícito).
	Sort string
	// RawSort conserva el valor recibido para reconstruir los enlaces.
	RawSort string
	Query   string
	// Explicit indica que el cliente envió limit, page, sort o query: respuesta JSON.
	Explicit bool
}

// ParseListParams normaliza los parámetros crudos. Valores ausentes o inválidos
// toman el valor por defecto; nunca se rechaza la petición.
func ParseListParams(values url.Values) ListParams {
	p := ListParams{
		Limit:   positiveIntOr(values.Get("limit"), DefaultLimit),
		Page:    positiveIntOr(values.Get("page"), DefaultPage),
		RawSort: values.Get("sort"),
		Query:   values.Get("query"),
	}
	switch strings.ToLower(p.RawSort) {
	case "asc":
		p.Sort = "asc"
	case "desc":
		p.Sort = "desc"
	}
	for _, key := range []string{"limit", "page", "sort", "query"} {
		if values.Get(key) != "" {
			p.Explicit = true
			break
		}
	}
	return p
}

func positiveIntOr(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Envelope es el sobre común para JSON y para las vistas HTML.
// Los nombres JSON forman parte del contrato público.
type Envelope struct {
	Status      string                   `json:"status"`
	Payload     []*catalogDomain.Product `json:"payload"`
	TotalPages  int                      `json:"totalPages"`
	PrevPage    *int                     `json:"prevPage"`
	NextPage    *int                     `json:"nextPage"`
	Page        int                      `json:"page"`
	HasPrevPage bool                     `json:"hasPrevPage"`
	HasNextPage bool                     `json:"hasNextPage"`
	PrevLink    *string                  `json:"prevLink"`
	NextLink    *string                  `json:"nextLink"`
}

// Failed indica que el sobre representa un error de repositorio.
func (e Envelope) Failed() bool {
	return e.Status == StatusError
}

// ErrorEnvelope es la respuesta uniforme ante un fallo del repositorio.
func ErrorEnvelope() Envelope {
	return Envelope{
		Status:  StatusError,
		Payload: []*catalogDomain.Product{},
		Page:    DefaultPage,
	}
}

// CatalogQuery resuelve el listado paginado y filtrado del catálogo.
// No guarda estado: cada llamada hace exactamente un conteo y una búsqueda.
type CatalogQuery struct {
	repo catalogDomain.ProductReader
	log  *zap.Logger
}

func NewCatalogQuery(repo catalogDomain.ProductReader, log *zap.Logger) *CatalogQuery {
	return &CatalogQuery{repo: repo, log: log}
}

// ListProducts ejecuta el listado. baseURL es esquema://host/ruta del endpoint
// tal como lo vio la petición. Los fallos se devuelven como ErrorEnvelope.
func (q *CatalogQuery) ListProducts(ctx context.Context, params ListParams, baseURL string) Envelope {
	criteria := catalogDomain.SearchCriteria(params.Query)
	window := sharedQuery.PageWindow(params.Page, params.Limit)
	sort := sortFor(params.Sort)

	var (
		total    int64
		products []*catalogDomain.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := q.repo.Count(gctx, criteria)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		found, err := q.repo.Find(gctx, criteria, window, sort)
		if err != nil {
			return fmt.Errorf("find products: %w", err)
		}
		products = found
		return nil
	})

	if err := g.Wait(); err != nil {
		q.log.Error("Failed to list products",
			zap.Int("page", params.Page),
			zap.Int("limit", params.Limit),
			zap.String("query", params.Query),
			zap.Error(err),
		)
		return ErrorEnvelope()
	}

	return buildEnvelope(products, total, params, baseURL)
}

func sortFor(direction string) sharedQuery.Sort {
	if direction == "" {
		return sharedQuery.Sort{}
	}
	return sharedQuery.Sort{Field: catalogDomain.FieldPrice, Desc: direction == "desc"}
}

// TotalPages = ceil(total/limit), 0 si no hay coincidencias.
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func buildEnvelope(products []*catalogDomain.Product, total int64, params ListParams, baseURL string) Envelope {
	if products == nil {
		products = []*catalogDomain.Product{}
	}
	totalPages := TotalPages(total, params.Limit)

	env := Envelope{
		Status:      StatusSuccess,
		Payload:     products,
		TotalPages:  totalPages,
		Page:        params.Page,
		HasPrevPage: params.Page > 1,
		HasNextPage: params.Page < totalPages,
	}
	if env.HasPrevPage {
		prev := params.Page - 1
		link := PageLink(baseURL, params, prev)
		env.PrevPage, env.PrevLink = &prev, &link
	}
	if env.HasNextPage {
		next := params.Page + 1
		link := PageLink(baseURL, params, next)
		env.NextPage, env.NextLink = &next, &link
	}
	return env
}

// PageLink reconstruye la query desde cero: limit (si no es el de defecto),
// page, sort y query (si vinieron), en ese orden.
func PageLink(baseURL string, params ListParams, page int) string {
	parts := make([]string, 0, 4)
	if params.Limit != DefaultLimit {
		parts = append(parts, "limit="+strconv.Itoa(params.Limit))
	}
	parts = append(parts, "page="+strconv.Itoa(page))
	if params.RawSort != "" {
		parts = append(parts, "sort="+url.QueryEscape(params.RawSort))
	}
	if params.Query != "" {
		parts = append(parts, "query="+url.QueryEscape(params.Query))
	}
	return baseURL + "?" + strings.Join(parts, "&")
}
