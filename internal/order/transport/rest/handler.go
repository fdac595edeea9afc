// Package rest provides HTTP handlers for order operations.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	ordererrors "github.com/webmart/shopcore/internal/order/errors"
	"github.com/webmart/shopcore/internal/order/service"
	"github.com/webmart/shopcore/internal/order/store"
	"github.com/webmart/shopcore/pkg/web"
)

// Fulfiller applies the post-acceptance side effects of an order: stock
// adjustment and purchase history.
type Fulfiller interface {
	Apply(ctx context.Context, order *store.Order) (int, error)
}

type Handler struct {
	service     service.OrderService
	fulfillment Fulfiller
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewHandler creates a new instance of the order API with the provided
// service and fulfillment coordinator.
func NewHandler(service service.OrderService, fulfillment Fulfiller, logger *slog.Logger) *Handler {
	return &Handler{
		service:     service,
		fulfillment: fulfillment,
		validate:    validator.New(),
		logger:      logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for orders. All routes require an
// authenticated user.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(web.AuthMiddleware)
		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Get("/", h.FindByUserID)
			r.Post("/", h.Create)
			r.Get("/status-values", h.StatusValues)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.FindByID)
				r.Put("/status", h.SetStatus)
			})
		})
	})
}

// StatusUpdateRequest is the request body for a status change.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// Create accepts a cart submission for the authenticated user, persists the
// order in its initial status and applies fulfillment. The order remains
// persisted even when fulfillment fails.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}

	var req service.OrderCreateDto
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = userID

	if err := h.validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.Create(r.Context(), req)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error creating order", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create order")
		return
	}
	mLogger.InfoContext(r.Context(), "Order created", "order_id", created.ID, "user_id", userID)

	if _, err := h.fulfillment.Apply(r.Context(), toStoreOrder(created)); err != nil {
		mLogger.ErrorContext(r.Context(), "Fulfillment failed for created order", "order_id", created.ID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError,
			fmt.Sprintf("Order %s was accepted but fulfillment failed", created.ID))
		return
	}

	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// FindByUserID returns the authenticated user's orders, newest first.
func (h *Handler) FindByUserID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	offset, ok := web.ParseOptionalGte(r, w, mLogger, "offset", 0, 0)
	if !ok {
		return
	}
	limit, ok := web.ParseOptionalGte(r, w, mLogger, "limit", 1, 10)
	if !ok {
		return
	}

	orders, err := h.service.FindByUserID(r.Context(), userID, offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error fetching orders for user", "user_id", userID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, orders)
}

// FindByID retrieves a single order with its line items.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ordererrors.ErrOrderNotFound) {
			mLogger.WarnContext(r.Context(), "Order not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Order with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving order", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve order with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// StatusValues returns the order status enumeration.
func (h *Handler) StatusValues(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	web.RespondJSON(w, mLogger, http.StatusOK, h.service.StatusValues())
}

// SetStatus sets the given status on every order matching the ID and reports
// how many were matched.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	var req StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		mLogger.WarnContext(r.Context(), "Invalid status update request", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "status is required")
		return
	}

	matched, err := h.service.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, ordererrors.ErrInvalidStatus) {
			mLogger.WarnContext(r.Context(), "Rejected unknown order status", "status", req.Status)
			web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
			return
		}
		mLogger.ErrorContext(r.Context(), "Error setting order status", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to set status for order %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Order status set", "ID", id, "status", req.Status, "matched", matched)
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]int64{"matched": matched})
}

// toStoreOrder rebuilds the persisted order shape the fulfillment step
// operates on from the created DTO.
func toStoreOrder(dto *service.OrderDto) *store.Order {
	items := make([]store.OrderItem, len(dto.Items))
	for i, item := range dto.Items {
		items[i] = store.OrderItem{
			ID:          item.ID,
			ProductID:   item.ProductID,
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
			Quantity:    item.Quantity,
		}
	}
	return &store.Order{
		ID:            dto.ID,
		UserID:        dto.UserID,
		Status:        dto.Status,
		TransactionID: dto.TransactionID,
		Amount:        dto.Amount,
		Items:         items,
	}
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
