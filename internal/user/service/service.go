// Package service provides the user-facing reads over the user store.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webmart/shopcore/internal/user/store"
)

// UserService defines the user-facing read operations.
type UserService interface {
	// PurchaseHistory returns the user's purchase history entries newest
	// first. Returns an empty slice if the user has no history.
	PurchaseHistory(ctx context.Context, userID uuid.UUID) ([]PurchaseHistoryEntryDto, error)
}

// Service implements UserService over a UserStore.
type Service struct {
	userStore store.UserStore
}

// NewService creates a new instance of UserService with the provided userStore.
func NewService(userStore store.UserStore) *Service {
	return &Service{userStore: userStore}
}

// PurchaseHistoryEntryDto is one purchased line item of a user's history.
type PurchaseHistoryEntryDto struct {
	ProductID     uuid.UUID       `json:"product_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int32           `json:"quantity"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// PurchaseHistory retrieves a user's history entries and returns them as DTOs.
func (s *Service) PurchaseHistory(ctx context.Context, userID uuid.UUID) ([]PurchaseHistoryEntryDto, error) {
	entries, err := s.userStore.PurchaseHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch purchase history for user %s: %w", userID, err)
	}
	dtos := make([]PurchaseHistoryEntryDto, len(entries))
	for i, e := range entries {
		dtos[i] = PurchaseHistoryEntryDto{
			ProductID:     e.ProductID,
			Name:          e.Name,
			Description:   e.Description,
			Price:         e.Price,
			Quantity:      e.Quantity,
			TransactionID: e.TransactionID,
			Amount:        e.Amount,
		}
	}
	return dtos, nil
}
