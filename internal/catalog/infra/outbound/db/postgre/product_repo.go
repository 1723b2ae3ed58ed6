package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	// --- Importaciones del dominio y compartidas ---
	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	sharedDomain "github.com/davicafu/hexashop/internal/shared/domain"
	sharedQuery "github.com/davicafu/hexashop/internal/shared/infra/platform/query"
	"github.com/davicafu/hexashop/internal/shared/infra/platform/sqlcriteria"
	sharedUtils "github.com/davicafu/hexashop/internal/shared/infra/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // Driver de PostgreSQL
)

const productColumns = "id, title, description, code, price, stock, category, status, thumbnail, created_at, updated_at"

// ProductRepoPostgres implementa la interfaz ProductRepository para PostgreSQL.
type ProductRepoPostgres struct {
	db *sql.DB
}

var _ catalogDomain.ProductRepository = (*ProductRepoPostgres)(nil)

// NewProductRepoPostgres es el constructor del repositorio.
func NewProductRepoPostgres(db *sql.DB) *ProductRepoPostgres {
	return &ProductRepoPostgres{db: db}
}

// ------------------ Escritura ------------------

func (r *ProductRepoPostgres) Create(ctx context.Context, p *catalogDomain.Product) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (`+productColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Title, p.Description, p.Code, p.Price, p.Stock, p.Category, p.Status, p.Thumbnail, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return catalogDomain.ErrProductAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *ProductRepoPostgres) Update(ctx context.Context, p *catalogDomain.Product) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET title=$1, description=$2, code=$3, price=$4, stock=$5, category=$6, status=$7, thumbnail=$8, updated_at=$9 WHERE id=$10`,
		p.Title, p.Description, p.Code, p.Price, p.Stock, p.Category, p.Status, p.Thumbnail, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return catalogDomain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepoPostgres) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return catalogDomain.ErrProductNotFound
	}
	return nil
}

// ------------------ Lectura ------------------

// GetByID recupera un producto por su ID.
func (r *ProductRepoPostgres) GetByID(ctx context.Context, id uuid.UUID) (*catalogDomain.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalogDomain.ErrProductNotFound
		}
		return nil, fmt.Errorf("db scan error: %w", err)
	}
	return p, nil
}

func (r *ProductRepoPostgres) Count(ctx context.Context, criteria sharedDomain.Criteria) (int64, error) {
	whereSQL, args := sqlcriteria.Where(criteria, sqlcriteria.Postgres)

	query := "SELECT COUNT(*) FROM products"
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// Find aplica filtros, ordenamiento y paginación. Sin orden explícito se usa el de inserción.
func (r *ProductRepoPostgres) Find(ctx context.Context, criteria sharedDomain.Criteria, page sharedQuery.OffsetPagination, sort sharedQuery.Sort) ([]*catalogDomain.Product, error) {
	query, args := buildFindQuery(criteria, page, sort)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*catalogDomain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func buildFindQuery(criteria sharedDomain.Criteria, page sharedQuery.OffsetPagination, sort sharedQuery.Sort) (string, []interface{}) {
	whereSQL, args := sqlcriteria.Where(criteria, sqlcriteria.Postgres)

	var b strings.Builder
	b.WriteString("SELECT " + productColumns + " FROM products")
	if whereSQL != "" {
		b.WriteString(" WHERE " + whereSQL)
	}

	if sort.IsZero() {
		b.WriteString(" ORDER BY created_at, id")
	} else {
		fmt.Fprintf(&b, " ORDER BY %s %s, id", sort.Field, sharedUtils.Ternary(sort.Desc, "DESC", "ASC"))
	}

	if !page.Unbounded() {
		argOffset := len(args)
		fmt.Fprintf(&b, " LIMIT $%d OFFSET $%d", argOffset+1, argOffset+2)
		args = append(args, page.Limit, page.Offset)
	}
	return b.String(), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*catalogDomain.Product, error) {
	var p catalogDomain.Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Code, &p.Price, &p.Stock,
		&p.Category, &p.Status, &p.Thumbnail, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ------------------ Inicialización del Esquema ------------------

// InitPostgresProductSchema crea la tabla 'products' y sus índices si no existen.
func InitPostgresProductSchema(db *sql.DB) error {
	_, err := db.Exec(`
    CREATE TABLE IF NOT EXISTS products (
        id UUID PRIMARY KEY,
        title TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        code TEXT NOT NULL,
        price DOUBLE PRECISION NOT NULL,
        stock INTEGER NOT NULL,
        category TEXT NOT NULL,
        status BOOLEAN NOT NULL DEFAULT TRUE,
        thumbnail TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMP WITH TIME ZONE NOT NULL,
        updated_at TIMESTAMP WITH TIME ZONE NOT NULL
    )`)
	if err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_products_price ON products (price)`)
	return err
}
