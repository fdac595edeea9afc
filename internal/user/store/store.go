// Package store provides an interface for user storage operations: user
// lookup and the append-only purchase history written by fulfillment and
// read back by the user service.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is owned by the excluded auth collaborator; only the fields the core
// reads are modeled here.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
}

// PurchaseHistoryEntry is a denormalized snapshot of one purchased line item,
// appended to a user's history. Append-only.
type PurchaseHistoryEntry struct {
	ProductID     uuid.UUID
	Name          string
	Description   string
	Price         decimal.Decimal
	Quantity      int32
	TransactionID string
	Amount        decimal.Decimal
}

// UserStore is an interface for user storage operations.
type UserStore interface {
	// FindByID retrieves a single user by its unique identifier.
	// Returns ErrUserNotFound if no user exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// AppendPurchaseHistory appends one entry per purchased line item to
	// the user's history in a single bulk write.
	AppendPurchaseHistory(ctx context.Context, userID uuid.UUID, entries []PurchaseHistoryEntry) error

	// PurchaseHistory returns a user's history entries newest first.
	PurchaseHistory(ctx context.Context, userID uuid.UUID) ([]PurchaseHistoryEntry, error)
}
