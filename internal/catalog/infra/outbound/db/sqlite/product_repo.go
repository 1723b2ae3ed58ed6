package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	moderncsqlite "modernc.org/sqlite"

	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	sharedDomain "github.com/davicafu/hexashop/internal/shared/domain"
	sharedQuery "github.com/davicafu/hexashop/internal/shared/infra/platform/query"
	"github.com/davicafu/hexashop/internal/shared/infra/platform/sqlcriteria"
	sharedUtils "github.com/davicafu/hexashop/internal/shared/infra/utils"
)

const productColumns = "id, title, description, code, price, stock, category, status, thumbnail, created_at, updated_at"

func init() {
	// Disponible en toda conexión abierta después de registrarla.
	moderncsqlite.MustRegisterDeterministicScalarFunction(sqlcriteria.SQLiteLower, 1, unicodeLower)
}

func unicodeLower(_ *moderncsqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

type ProductRepoSQLite struct {
	db *sql.DB
}

var _ catalogDomain.ProductRepository = (*ProductRepoSQLite)(nil)

func NewProductRepoSQLite(db *sql.DB) *ProductRepoSQLite {
	return &ProductRepoSQLite{db: db}
}

// ------------------ Métodos ------------------

func (r *ProductRepoSQLite) Create(ctx context.Context, p *catalogDomain.Product) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		p.ID.String(), p.Title, p.Description, p.Code, p.Price, p.Stock, p.Category, p.Status, p.Thumbnail, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return catalogDomain.ErrProductAlreadyExists
	}
	return err
}

func (r *ProductRepoSQLite) Update(ctx context.Context, p *catalogDomain.Product) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET title=?, description=?, code=?, price=?, stock=?, category=?, status=?, thumbnail=?, updated_at=? WHERE id=?`,
		p.Title, p.Description, p.Code, p.Price, p.Stock, p.Category, p.Status, p.Thumbnail, p.UpdatedAt, p.ID.String(),
	)
	if err != nil {
		return err
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return catalogDomain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepoSQLite) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=?`, id.String())
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return catalogDomain.ErrProductNotFound
	}
	return nil
}

// GetByID con manejo de errores en uuid.Parse
func (r *ProductRepoSQLite) GetByID(ctx context.Context, id uuid.UUID) (*catalogDomain.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id.String())

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalogDomain.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProductRepoSQLite) Count(ctx context.Context, criteria sharedDomain.Criteria) (int64, error) {
	where, args := sqlcriteria.Where(criteria, sqlcriteria.SQLite)

	query := "SELECT COUNT(*) FROM products"
	if where != "" {
		query += " WHERE " + where
	}

	var n int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *ProductRepoSQLite) Find(ctx context.Context, criteria sharedDomain.Criteria, page sharedQuery.OffsetPagination, sort sharedQuery.Sort) ([]*catalogDomain.Product, error) {
	where, args := sqlcriteria.Where(criteria, sqlcriteria.SQLite)
	if where != "" {
		where = "WHERE " + where
	}

	// rowid conserva el orden de inserción y desempata precios iguales
	orderBy := "rowid"
	if !sort.IsZero() {
		orderBy = fmt.Sprintf("%s %s, rowid", sort.Field, sharedUtils.Ternary(sort.Desc, "DESC", "ASC"))
	}

	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY %s`, productColumns, where, orderBy)
	if !page.Unbounded() {
		query += " LIMIT ? OFFSET ?"
		args = append(args, page.Limit, page.Offset)
	}

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

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*catalogDomain.Product, error) {
	var p catalogDomain.Product
	var idStr string
	if err := row.Scan(&idStr, &p.Title, &p.Description, &p.Code, &p.Price, &p.Stock,
		&p.Category, &p.Status, &p.Thumbnail, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	parsedID, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in DB: %w", err)
	}
	p.ID = parsedID
	return &p, nil
}

// ------------------ Inicialización de DB ------------------

// InitSQLite crea la tabla products si no existe
func InitSQLite(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS products (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            code TEXT NOT NULL,
            price REAL NOT NULL,
            stock INTEGER NOT NULL,
            category TEXT NOT NULL,
            status BOOLEAN NOT NULL DEFAULT 1,
            thumbnail TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_products_price ON products (price)`)
	return err
}
