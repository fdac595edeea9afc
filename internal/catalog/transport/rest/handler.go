// Package rest provides HTTP handlers for catalog operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	caterrors "github.com/webmart/shopcore/internal/catalog/errors"
	"github.com/webmart/shopcore/internal/catalog/query"
	"github.com/webmart/shopcore/internal/catalog/service"
	"github.com/webmart/shopcore/pkg/web"
)

type Handler struct {
	service  service.CatalogService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the catalog API with the provided service.
func NewHandler(service service.CatalogService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/by-search", h.ListBySearch)
		r.Get("/search", h.Search)
		r.Get("/categories", h.Categories)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Get("/related", h.Related)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// FilterRequest is the request body of the filtered search endpoint. Unknown
// filter dimensions are not part of the shape and are therefore dropped at
// decode time.
type FilterRequest struct {
	Filters struct {
		Category []uuid.UUID       `json:"category"`
		Price    []decimal.Decimal `json:"price"`
	} `json:"filters"`
	Search string `json:"search"`
	SortBy string `json:"sortBy"`
	Order  string `json:"order" validate:"omitempty,oneof=asc desc"`
	Limit  int32  `json:"limit" validate:"min=0"`
	Skip   int32  `json:"skip" validate:"min=0"`
}

// List returns an ordered product listing.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, ok := web.ParseOptionalGte(r, w, mLogger, "limit", 0, 0)
	if !ok {
		return
	}
	sortBy := r.URL.Query().Get("sortBy")
	order := r.URL.Query().Get("order")

	mLogger.DebugContext(r.Context(), "Received request to list products", "sortBy", sortBy, "order", order, "limit", limit)
	list, err := h.service.ListProducts(r.Context(), sortBy, order, limit)
	if err != nil {
		if errors.Is(err, caterrors.ErrInvalidFilter) {
			mLogger.WarnContext(r.Context(), "Invalid listing parameters", "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
			return
		}
		mLogger.ErrorContext(r.Context(), "Error listing products", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully listed products", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// ListBySearch applies the structured filter body and returns the matching
// page together with the returned item count.
func (h *Handler) ListBySearch(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
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

	spec := query.FilterSpec{
		Categories: req.Filters.Category,
		Price:      req.Filters.Price,
		Search:     req.Search,
		SortBy:     req.SortBy,
		Order:      req.Order,
		Limit:      req.Limit,
		Skip:       req.Skip,
	}
	mLogger.DebugContext(r.Context(), "Received filtered search request", "spec", fmt.Sprintf("%+v", spec))
	page, err := h.service.ListFiltered(r.Context(), spec)
	if err != nil {
		if errors.Is(err, caterrors.ErrInvalidFilter) {
			mLogger.WarnContext(r.Context(), "Invalid filter", "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
			return
		}
		mLogger.ErrorContext(r.Context(), "Error running filtered search", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Filtered search completed", "size", page.Size)
	web.RespondJSON(w, mLogger, http.StatusOK, page)
}

// Search matches products by name substring, optionally within one category.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	term := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")

	mLogger.DebugContext(r.Context(), "Received search request", "term", term, "category", category)
	list, err := h.service.Search(r.Context(), term, category)
	if err != nil {
		if errors.Is(err, caterrors.ErrInvalidFilter) {
			mLogger.WarnContext(r.Context(), "Invalid search parameters", "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
			return
		}
		mLogger.ErrorContext(r.Context(), "Error searching products", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to search products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Categories returns the distinct categories referenced by at least one product.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	categories, err := h.service.CategoriesInUse(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error fetching categories in use", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, categories)
}

// Related returns other products in the same category as the given product.
func (h *Handler) Related(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	limit, ok := web.ParseOptionalGte(r, w, mLogger, "limit", 0, 0)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request for related products", "ID", id, "limit", limit)
	list, err := h.service.ListRelated(r.Context(), id, limit)
	if err != nil {
		if errors.Is(err, caterrors.ErrInvalidFilter) {
			web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
			return
		}
		mLogger.ErrorContext(r.Context(), "Error fetching related products", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch related products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindByID retrieves a product by its ID, photo excluded.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, caterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
