// Package service provides the implementation of catalog query logic.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	caterrors "github.com/webmart/shopcore/internal/catalog/errors"
	"github.com/webmart/shopcore/internal/catalog/query"
	"github.com/webmart/shopcore/internal/catalog/store"
)

// AllCategories is the sentinel category value that drops the category
// constraint from a search.
const AllCategories = "All"

// CatalogService defines the read-only catalog query operations.
type CatalogService interface {
	// ListProducts returns an ordered product listing capped at limit.
	// A zero limit falls back to the default page size.
	ListProducts(ctx context.Context, sortBy, order string, limit int32) ([]ProductDto, error)

	// ListFiltered applies a FilterSpec and returns the matching page.
	// The reported size is the number of items returned, not the total
	// matching population.
	ListFiltered(ctx context.Context, spec query.FilterSpec) (*FilteredPageDto, error)

	// ListRelated returns up to limit products sharing the given product's
	// category, excluding the product itself. An empty result is success.
	ListRelated(ctx context.Context, id uuid.UUID, limit int32) ([]ProductDto, error)

	// CategoriesInUse returns the distinct categories referenced by at
	// least one product.
	CategoriesInUse(ctx context.Context) ([]CategoryDto, error)

	// Search matches products by name substring, optionally constrained to
	// one category. An empty term is a no-op returning an empty slice.
	Search(ctx context.Context, term, category string) ([]ProductDto, error)

	// FindByID retrieves a single product, photo excluded.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)
}

// Service implements CatalogService over a ProductStore.
type Service struct {
	repository store.ProductStore
}

// NewService creates a new instance of CatalogService with the provided repository.
func NewService(repo store.ProductStore) *Service {
	return &Service{repository: repo}
}

// ProductDto represents the data transfer object for a product summary.
// The photo payload is never part of it.
type ProductDto struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    *CategoryDto    `json:"category,omitempty"`
	Quantity    int32           `json:"quantity"`
	Sold        int32           `json:"sold"`
	CreatedAt   string          `json:"created_at"`
}

// CategoryDto represents the data transfer object for a category.
type CategoryDto struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FilteredPageDto is the result of a filtered search. Size is the count of
// returned items only; computing the total matching population would be a
// separate operation.
type FilteredPageDto struct {
	Size     int          `json:"size"`
	Products []ProductDto `json:"products"`
}

// ListProducts returns an ordered product listing with the category resolved
// and the photo excluded.
func (s *Service) ListProducts(ctx context.Context, sortBy, order string, limit int32) ([]ProductDto, error) {
	q, err := query.Build(query.FilterSpec{SortBy: sortBy, Order: order, Limit: limit})
	if err != nil {
		return nil, err
	}
	products, err := s.repository.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return toDtos(products), nil
}

// ListFiltered compiles the FilterSpec and returns the resulting page. A zero
// limit falls back to the search default of query.DefaultSearchLimit items.
func (s *Service) ListFiltered(ctx context.Context, spec query.FilterSpec) (*FilteredPageDto, error) {
	if spec.Limit == 0 {
		spec.Limit = query.DefaultSearchLimit
	}
	q, err := query.Build(spec)
	if err != nil {
		return nil, err
	}
	products, err := s.repository.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filtered products: %w", err)
	}
	dtos := toDtos(products)
	return &FilteredPageDto{Size: len(dtos), Products: dtos}, nil
}

// ListRelated returns other products in the same category as the given one.
func (s *Service) ListRelated(ctx context.Context, id uuid.UUID, limit int32) ([]ProductDto, error) {
	if limit < 0 {
		return nil, fmt.Errorf("limit must not be negative, got %d: %w", limit, caterrors.ErrInvalidFilter)
	}
	if limit == 0 {
		limit = query.DefaultListLimit
	}
	products, err := s.repository.FindRelated(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch related products for %s: %w", id, err)
	}
	return toDtos(products), nil
}

// CategoriesInUse returns the distinct set of categories attached to at least
// one product.
func (s *Service) CategoriesInUse(ctx context.Context) ([]CategoryDto, error) {
	categories, err := s.repository.DistinctCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories in use: %w", err)
	}
	dtos := make([]CategoryDto, len(categories))
	for i, c := range categories {
		dtos[i] = CategoryDto{ID: c.ID.String(), Name: c.Name}
	}
	return dtos, nil
}

// Search matches products by name substring. An empty term performs no query
// and returns an empty slice; a category of "All" or empty drops the category
// constraint.
func (s *Service) Search(ctx context.Context, term, category string) ([]ProductDto, error) {
	if term == "" {
		return []ProductDto{}, nil
	}
	spec := query.FilterSpec{Search: term}
	if category != "" && category != AllCategories {
		categoryID, err := uuid.Parse(category)
		if err != nil {
			return nil, fmt.Errorf("invalid category %q: %w", category, caterrors.ErrInvalidFilter)
		}
		spec.Categories = []uuid.UUID{categoryID}
	}
	q, err := query.Build(spec)
	if err != nil {
		return nil, err
	}
	products, err := s.repository.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return toDtos(products), nil
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return toDto(product), nil
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	dto := &ProductDto{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Quantity:    product.Quantity,
		Sold:        product.Sold,
		CreatedAt:   product.CreatedAt.Format(time.RFC3339),
	}
	if product.Category != nil {
		dto.Category = &CategoryDto{ID: product.Category.ID.String(), Name: product.Category.Name}
	}
	return dto
}

func toDtos(products []store.Product) []ProductDto {
	dtos := make([]ProductDto, len(products))
	for i, item := range products {
		dtos[i] = *toDto(&item)
	}
	return dtos
}
