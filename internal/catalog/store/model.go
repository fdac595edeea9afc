package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog document. The binary photo payload lives in the same
// row but is never selected by query paths; it is served by the photo
// endpoint owned by an external collaborator.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  uuid.UUID
	Category    *Category // resolved reference, nil when the row had none
	Quantity    int32
	Sold        int32
	CreatedAt   time.Time
}

// Category is referenced by products, never embedded.
type Category struct {
	ID   uuid.UUID
	Name string
}

// StockDelta is one line item's inventory adjustment: quantity goes down by
// Count, the sold counter goes up by the same amount.
type StockDelta struct {
	ProductID uuid.UUID
	Count     int32
}
