// Package rest provides HTTP handlers for user-facing reads.
package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/webmart/shopcore/internal/user/service"
	"github.com/webmart/shopcore/pkg/web"
)

type Handler struct {
	service service.UserService
	logger  *slog.Logger
}

// NewHandler creates a new instance of the user API with the provided service.
func NewHandler(service service.UserService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for user reads. All routes require
// an authenticated user.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(web.AuthMiddleware)
		r.Get("/api/v1/users/me/history", h.PurchaseHistory)
	})
}

// PurchaseHistory returns the authenticated user's purchase history, newest
// first.
func (h *Handler) PurchaseHistory(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}

	history, err := h.service.PurchaseHistory(r.Context(), userID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error fetching purchase history", "user_id", userID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch purchase history")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, history)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
