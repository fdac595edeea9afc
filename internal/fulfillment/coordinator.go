// Package fulfillment reconciles inventory counters and purchase history
// after an order has been accepted.
package fulfillment

import (
	"context"
	"fmt"
	"log/slog"

	catalogstore "github.com/webmart/shopcore/internal/catalog/store"
	ordererrors "github.com/webmart/shopcore/internal/order/errors"
	orderstore "github.com/webmart/shopcore/internal/order/store"
	userstore "github.com/webmart/shopcore/internal/user/store"
)

// Coordinator applies inventory deltas and appends purchase history for an
// accepted order. It never touches the order's status; that transition is a
// separate explicit step.
type Coordinator struct {
	products catalogstore.ProductStore
	users    userstore.UserStore
	logger   *slog.Logger
}

// NewCoordinator creates a Coordinator over the catalog and user stores.
func NewCoordinator(products catalogstore.ProductStore, users userstore.UserStore, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		products: products,
		users:    users,
		logger:   logger.With("component", "fulfillment"),
	}
}

// Apply decrements each line item's product quantity and increments its sold
// counter as one batched update, then appends one purchase history entry per
// line item to the purchasing user. The two mutations are not transactionally
// coupled: a failure in the second leaves stock already adjusted, and partial
// stock failures are surfaced without rolling back applied deltas.
//
// There is no stock-sufficiency check; a count exceeding the current quantity
// drives it negative.
//
// Returns the number of line items whose stock delta was applied.
func (c *Coordinator) Apply(ctx context.Context, order *orderstore.Order) (int, error) {
	deltas := make([]catalogstore.StockDelta, len(order.Items))
	entries := make([]userstore.PurchaseHistoryEntry, len(order.Items))
	for i, item := range order.Items {
		deltas[i] = catalogstore.StockDelta{ProductID: item.ProductID, Count: item.Quantity}
		entries[i] = userstore.PurchaseHistoryEntry{
			ProductID:     item.ProductID,
			Name:          item.Name,
			Description:   item.Description,
			Price:         item.Price,
			Quantity:      item.Quantity,
			TransactionID: order.TransactionID,
			Amount:        order.Amount,
		}
	}

	applied, err := c.products.AdjustStock(ctx, deltas)
	if err != nil {
		c.logger.ErrorContext(ctx, "Stock adjustment failed; applied deltas stay in place",
			"order_id", order.ID, "applied", applied, "total", len(deltas), "error", err)
		return applied, fmt.Errorf("stock adjustment for order %s: %w: %w", order.ID, ordererrors.ErrFulfillmentFailed, err)
	}

	if err := c.users.AppendPurchaseHistory(ctx, order.UserID, entries); err != nil {
		c.logger.ErrorContext(ctx, "Purchase history append failed after stock was adjusted",
			"order_id", order.ID, "user_id", order.UserID, "error", err)
		return applied, fmt.Errorf("purchase history for order %s: %w: %w", order.ID, ordererrors.ErrFulfillmentFailed, err)
	}

	c.logger.InfoContext(ctx, "Fulfillment applied",
		"order_id", order.ID, "user_id", order.UserID, "line_items", applied)
	return applied, nil
}
