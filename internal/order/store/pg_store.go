package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	ordererrors "github.com/webmart/shopcore/internal/order/errors"
)

// PgStore implements OrderStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of OrderStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// CreateOrder persists the order and its line items in one transaction.
func (p *PgStore) CreateOrder(ctx context.Context, order *Order) (*Order, error) {
	created := *order

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO orders (user_id, status, transaction_id, amount)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, created_at`,
			order.UserID, order.Status, order.TransactionID, order.Amount,
		).Scan(&created.ID, &created.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		created.Items = make([]OrderItem, 0, len(order.Items))
		for _, item := range order.Items {
			item.OrderID = created.ID
			err := tx.QueryRow(ctx,
				`INSERT INTO order_items (order_id, product_id, name, description, price, quantity)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 RETURNING id`,
				item.OrderID, item.ProductID, item.Name, item.Description, item.Price, item.Quantity,
			).Scan(&item.ID)
			if err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
			created.Items = append(created.Items, item)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &created, nil
}

// FindByID retrieves a single order with its line items.
// Returns ErrOrderNotFound if no order exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := p.db.QueryRow(ctx,
		`SELECT id, user_id, status, transaction_id, amount, created_at
		 FROM orders WHERE id = $1`, id,
	).Scan(&order.ID, &order.UserID, &order.Status, &order.TransactionID, &order.Amount, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ordererrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	rows, err := p.db.Query(ctx,
		`SELECT id, order_id, product_id, name, description, price, quantity
		 FROM order_items WHERE order_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find order items: %w", err)
	}
	defer rows.Close()

	order.Items = make([]OrderItem, 0)
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Name, &item.Description, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}
	return &order, nil
}

// FindByUserID returns a user's orders newest first, without line items.
func (p *PgStore) FindByUserID(ctx context.Context, userID uuid.UUID, offset, limit int32) ([]Order, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, user_id, status, transaction_id, amount, created_at
		 FROM orders WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders for user: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var order Order
		if err := rows.Scan(&order.ID, &order.UserID, &order.Status,
			&order.TransactionID, &order.Amount, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus sets the status on every order matching the ID. It performs an
// unconditional multi-match update and does not check the current state.
func (p *PgStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (int64, error) {
	tag, err := p.db.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return 0, fmt.Errorf("failed to update order status: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *PgStore) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return ordererrors.ErrTransactionBegin
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return ordererrors.ErrTransactionRollback
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return ordererrors.ErrTransactionCommit
	}
	return nil
}
