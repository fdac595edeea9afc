// Package service provides the implementation of order-related business logic.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	ordererrors "github.com/webmart/shopcore/internal/order/errors"
	"github.com/webmart/shopcore/internal/order/store"
)

// OrderService defines the methods for managing orders.
// It abstracts the underlying business logic and data access.
type OrderService interface {
	// Create validates and persists a new order from a cart submission.
	// The order starts in the "Not processed" status.
	Create(ctx context.Context, order OrderCreateDto) (*OrderDto, error)

	// FindByID retrieves a single order with its line items.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*OrderDto, error)

	// FindByUserID returns a user's orders newest first.
	// Returns an empty slice if no orders exist.
	FindByUserID(ctx context.Context, userID uuid.UUID, offset, limit int32) ([]OrderDto, error)

	// StatusValues returns the order status enumeration.
	StatusValues() []string

	// SetStatus sets any enumerated status on every order matching the ID,
	// without checking that it is a legal successor of the current state.
	// Returns the number of matched orders; zero matches is not an error.
	// Returns ErrInvalidStatus for values outside the enumeration.
	SetStatus(ctx context.Context, orderID uuid.UUID, status string) (int64, error)
}

// Service implements OrderService and provides methods to manage orders.
type Service struct {
	orderStore store.OrderStore
}

// NewService creates a new instance of OrderService with the provided orderStore.
func NewService(orderStore store.OrderStore) *Service {
	return &Service{orderStore: orderStore}
}

// OrderDto represents the data transfer object for an order.
type OrderDto struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     string          `json:"created_at"`
	Items         []OrderItemDto  `json:"items,omitempty"`
}

// OrderItemDto represents one line item of an order.
type OrderItemDto struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int32           `json:"quantity"`
}

// OrderCreateDto represents the data transfer object for creating a new order.
type OrderCreateDto struct {
	UserID        uuid.UUID            `json:"user_id" validate:"required"`
	TransactionID string               `json:"transaction_id" validate:"required"`
	Amount        decimal.Decimal      `json:"amount"`
	Items         []OrderItemCreateDto `json:"items" validate:"required,gt=0,dive"`
}

// OrderItemCreateDto is one product-and-count pair of a cart submission, with
// the price and descriptive fields snapshotted by the client at checkout.
type OrderItemCreateDto struct {
	ProductID   uuid.UUID       `json:"product_id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int32           `json:"quantity" validate:"required,min=1"`
}

// Create persists a new order in the initial "Not processed" status and
// returns it as an OrderDto.
func (s *Service) Create(ctx context.Context, order OrderCreateDto) (*OrderDto, error) {
	items := make([]store.OrderItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = store.OrderItem{
			ProductID:   item.ProductID,
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
			Quantity:    item.Quantity,
		}
	}

	created, err := s.orderStore.CreateOrder(ctx, &store.Order{
		UserID:        order.UserID,
		Status:        StatusNotProcessed,
		TransactionID: order.TransactionID,
		Amount:        order.Amount,
		Items:         items,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return toDto(created), nil
}

// FindByID retrieves an order by its ID and returns it as an OrderDto.
// Returns ErrOrderNotFound if no order exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*OrderDto, error) {
	order, err := s.orderStore.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order by ID %s: %w", id, err)
	}
	return toDto(order), nil
}

// FindByUserID retrieves a user's orders and returns them as OrderDtos.
func (s *Service) FindByUserID(ctx context.Context, userID uuid.UUID, offset, limit int32) ([]OrderDto, error) {
	orders, err := s.orderStore.FindByUserID(ctx, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders for user %s: %w", userID, err)
	}
	dtos := make([]OrderDto, len(orders))
	for i, order := range orders {
		dtos[i] = *toDto(&order)
	}
	return dtos, nil
}

// StatusValues returns the order status enumeration in display order.
func (s *Service) StatusValues() []string {
	return StatusValues()
}

// SetStatus sets the given status on every order matching the ID. Any
// enumerated value may be set from any other; only membership in the
// enumeration is checked.
func (s *Service) SetStatus(ctx context.Context, orderID uuid.UUID, status string) (int64, error) {
	if !isValidStatus(status) {
		return 0, fmt.Errorf("unknown order status %q: %w", status, ordererrors.ErrInvalidStatus)
	}
	matched, err := s.orderStore.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return 0, fmt.Errorf("failed to set status for order %s: %w", orderID, err)
	}
	return matched, nil
}

// toDto converts a store.Order to an OrderDto.
func toDto(order *store.Order) *OrderDto {
	var items []OrderItemDto
	if len(order.Items) > 0 {
		items = make([]OrderItemDto, len(order.Items))
		for i, item := range order.Items {
			items[i] = OrderItemDto{
				ID:          item.ID,
				ProductID:   item.ProductID,
				Name:        item.Name,
				Description: item.Description,
				Price:       item.Price,
				Quantity:    item.Quantity,
			}
		}
	}
	return &OrderDto{
		ID:            order.ID,
		UserID:        order.UserID,
		Status:        order.Status,
		TransactionID: order.TransactionID,
		Amount:        order.Amount,
		CreatedAt:     order.CreatedAt.Format(time.RFC3339),
		Items:         items,
	}
}
