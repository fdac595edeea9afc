package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

// PgStore implements UserStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of UserStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// FindByID retrieves a user by its unique identifier.
// Returns ErrUserNotFound if no user exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := p.db.QueryRow(ctx,
		`SELECT id, name, email, created_at FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return &user, nil
}

// AppendPurchaseHistory bulk-inserts one history row per entry.
func (p *PgStore) AppendPurchaseHistory(ctx context.Context, userID uuid.UUID, entries []PurchaseHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = []any{userID, e.ProductID, e.Name, e.Description, e.Price, e.Quantity, e.TransactionID, e.Amount}
	}
	_, err := p.db.CopyFrom(ctx,
		pgx.Identifier{"purchase_history"},
		[]string{"user_id", "product_id", "name", "description", "price", "quantity", "transaction_id", "amount"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to append purchase history for user %s: %w", userID, err)
	}
	return nil
}

// PurchaseHistory returns a user's history entries newest first.
func (p *PgStore) PurchaseHistory(ctx context.Context, userID uuid.UUID) ([]PurchaseHistoryEntry, error) {
	rows, err := p.db.Query(ctx,
		`SELECT product_id, name, description, price, quantity, transaction_id, amount
		 FROM purchase_history WHERE user_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find purchase history: %w", err)
	}
	defer rows.Close()

	entries := make([]PurchaseHistoryEntry, 0)
	for rows.Next() {
		var e PurchaseHistoryEntry
		if err := rows.Scan(&e.ProductID, &e.Name, &e.Description, &e.Price,
			&e.Quantity, &e.TransactionID, &e.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan purchase history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read purchase history: %w", err)
	}
	return entries, nil
}
