package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is created once per checkout. Status is the only field mutated after
// creation; orders are never deleted.
type Order struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Status        string
	TransactionID string
	Amount        decimal.Decimal
	CreatedAt     time.Time
	Items         []OrderItem
}

// OrderItem is one product-and-count pair within an order, with the price and
// descriptive fields snapshotted at checkout. Immutable once placed.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int32
}
