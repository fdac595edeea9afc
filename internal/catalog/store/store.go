// Package store provides an interface for catalog storage operations.
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/webmart/shopcore/internal/catalog/query"
)

// ProductStore is an interface for catalog storage operations.
// It abstracts the underlying data store, allowing for different implementations.
type ProductStore interface {
	// Find returns products matching the compiled query, sorted and paginated.
	// The photo payload is excluded and the category reference resolved.
	// Returns an empty slice when nothing matches.
	Find(ctx context.Context, q *query.Query) ([]Product, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindRelated returns up to limit products sharing the given product's
	// category, never including the product itself. An empty slice is a
	// valid result.
	FindRelated(ctx context.Context, id uuid.UUID, limit int32) ([]Product, error)

	// DistinctCategories returns the set of categories referenced by at
	// least one product, without duplicates and in no particular order.
	DistinctCategories(ctx context.Context) ([]Category, error)

	// AdjustStock applies all deltas as one batched update. Each delta is a
	// single atomic quantity/sold adjustment; per-delta failures are
	// collected and returned joined, with no rollback of deltas already
	// applied. Returns the number of deltas that were applied.
	AdjustStock(ctx context.Context, deltas []StockDelta) (int, error)

	// Save writes a single product document, inserting or replacing it.
	Save(ctx context.Context, p *Product) error
}
