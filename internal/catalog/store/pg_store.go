package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	caterrors "github.com/webmart/shopcore/internal/catalog/errors"
	"github.com/webmart/shopcore/internal/catalog/query"
)

// productColumns lists every selected column; the photo payload is deliberately absent.
const productColumns = `p.id, p.name, p.description, p.price, p.category_id, c.name, p.quantity, p.sold, p.created_at`

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// Find returns products matching the compiled query.
func (p *PgStore) Find(ctx context.Context, q *query.Query) ([]Product, error) {
	sql := `SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id`
	if q.Where != "" {
		sql += " WHERE " + q.Where
	}
	direction := "ASC"
	if q.Desc {
		direction = "DESC"
	}
	// OrderBy comes from the builder's whitelist and limit/offset are
	// validated non-negative, so they are safe to splice in.
	sql += fmt.Sprintf(" ORDER BY p.%s %s LIMIT %d OFFSET %d", q.OrderBy, direction, q.Limit, q.Offset)

	rows, err := p.db.Query(ctx, sql, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	sql := `SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`
	rows, err := p.db.Query(ctx, sql, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	defer rows.Close()
	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, caterrors.ErrProductNotFound
	}
	return &products[0], nil
}

// FindRelated returns products sharing the given product's category,
// excluding the product itself. Ordering is arbitrary.
func (p *PgStore) FindRelated(ctx context.Context, id uuid.UUID, limit int32) ([]Product, error) {
	sql := `SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id <> $1
		  AND p.category_id = (SELECT category_id FROM products WHERE id = $1)
		LIMIT $2`
	rows, err := p.db.Query(ctx, sql, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find related products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// DistinctCategories returns every category referenced by at least one product.
func (p *PgStore) DistinctCategories(ctx context.Context) ([]Category, error) {
	sql := `SELECT DISTINCT c.id, c.name
		FROM categories c
		JOIN products p ON p.category_id = c.id`
	rows, err := p.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to find distinct categories: %w", err)
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return categories, nil
}

// AdjustStock applies every delta in a single batch round trip. Each UPDATE
// adjusts quantity and sold together, so an item can never half-apply.
// Failures are collected per delta and returned joined; deltas already
// applied are not rolled back.
func (p *PgStore) AdjustStock(ctx context.Context, deltas []StockDelta) (int, error) {
	if len(deltas) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, d := range deltas {
		batch.Queue(
			`UPDATE products SET quantity = quantity - $2, sold = sold + $2 WHERE id = $1`,
			d.ProductID, d.Count,
		)
	}

	results := p.db.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	applied := 0
	var errs []error
	for _, d := range deltas {
		tag, err := results.Exec()
		if err != nil {
			errs = append(errs, fmt.Errorf("stock update for product %s: %w", d.ProductID, err))
			continue
		}
		if tag.RowsAffected() == 0 {
			errs = append(errs, fmt.Errorf("stock update for product %s: %w", d.ProductID, caterrors.ErrProductNotFound))
			continue
		}
		applied++
	}
	return applied, errors.Join(errs...)
}

// Save inserts or replaces a single product document.
func (p *PgStore) Save(ctx context.Context, product *Product) error {
	sql := `INSERT INTO products (id, name, description, price, category_id, quantity, sold, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			category_id = EXCLUDED.category_id,
			quantity = EXCLUDED.quantity,
			sold = EXCLUDED.sold`
	var categoryID *uuid.UUID
	if product.CategoryID != uuid.Nil {
		categoryID = &product.CategoryID
	}
	_, err := p.db.Exec(ctx, sql,
		product.ID, product.Name, product.Description, product.Price,
		categoryID, product.Quantity, product.Sold, product.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// scanProducts reads product rows produced by the shared column list.
func scanProducts(rows pgx.Rows) ([]Product, error) {
	products := make([]Product, 0)
	for rows.Next() {
		var prod Product
		var categoryID *uuid.UUID
		var categoryName *string
		if err := rows.Scan(&prod.ID, &prod.Name, &prod.Description, &prod.Price,
			&categoryID, &categoryName, &prod.Quantity, &prod.Sold, &prod.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if categoryID != nil {
			prod.CategoryID = *categoryID
		}
		if categoryName != nil {
			prod.Category = &Category{ID: prod.CategoryID, Name: *categoryName}
		}
		products = append(products, prod)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}
