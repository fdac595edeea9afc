// Package store provides an interface for order storage operations.
package store

import (
	"context"

	"github.com/google/uuid"
)

// OrderStore is an interface for order storage operations.
// It abstracts the underlying data store, allowing for different implementations.
type OrderStore interface {
	// CreateOrder persists a new order with its line items in one
	// transaction and returns the stored order.
	CreateOrder(ctx context.Context, order *Order) (*Order, error)

	// FindByID retrieves a single order with its line items.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByUserID returns a user's orders newest first, without line items.
	// Returns an empty slice if no orders exist.
	FindByUserID(ctx context.Context, userID uuid.UUID, offset, limit int32) ([]Order, error)

	// UpdateStatus sets the status on every order matching the ID and
	// returns the number of matched orders. Zero matches is not an error.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (int64, error)
}
