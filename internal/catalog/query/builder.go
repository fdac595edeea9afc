// Package query turns client-supplied filter criteria into a bounded,
// validated product query.
package query

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	caterrors "github.com/webmart/shopcore/internal/catalog/errors"
)

// Default page sizes. Zero limit in a FilterSpec means "use the default";
// negative values are rejected.
const (
	DefaultListLimit   = 6
	DefaultSearchLimit = 4
)

// FilterSpec is a structured description of a catalog query. Every dimension
// is optional; an absent or empty dimension produces no predicate term.
type FilterSpec struct {
	// Categories filters by set membership on the category reference.
	Categories []uuid.UUID
	// Price is either empty or exactly [min, max]; both bounds inclusive.
	Price []decimal.Decimal
	// Search matches the product name by case-insensitive substring.
	Search string
	// SortBy is one of id, name, price, quantity, sold, createdAt.
	SortBy string
	// Order is "asc" or "desc"; empty means ascending.
	Order string
	Limit int32
	Skip  int32
}

// Query is the compiled form of a FilterSpec: a SQL predicate with positional
// arguments, a validated sort column, and a pagination window. The predicate
// references the products table through the alias "p".
type Query struct {
	Where   string
	Args    []any
	OrderBy string
	Desc    bool
	Limit   int32
	Offset  int32
}

// sortColumns whitelists sortable fields and maps them to columns.
var sortColumns = map[string]string{
	"":          "id",
	"id":        "id",
	"name":      "name",
	"price":     "price",
	"quantity":  "quantity",
	"sold":      "sold",
	"createdAt": "created_at",
}

// Build compiles a FilterSpec into a Query. It is pure and side-effect free.
// Returns ErrInvalidFilter when the price range is malformed, the sort
// dimension is unknown, or limit/skip are negative. A zero limit falls back
// to DefaultListLimit; callers wanting a different default set it beforehand.
func Build(spec FilterSpec) (*Query, error) {
	if spec.Limit < 0 {
		return nil, fmt.Errorf("limit must not be negative, got %d: %w", spec.Limit, caterrors.ErrInvalidFilter)
	}
	if spec.Skip < 0 {
		return nil, fmt.Errorf("skip must not be negative, got %d: %w", spec.Skip, caterrors.ErrInvalidFilter)
	}
	orderBy, ok := sortColumns[spec.SortBy]
	if !ok {
		return nil, fmt.Errorf("unknown sort field %q: %w", spec.SortBy, caterrors.ErrInvalidFilter)
	}
	desc, err := parseDirection(spec.Order)
	if err != nil {
		return nil, err
	}

	q := &Query{
		OrderBy: orderBy,
		Desc:    desc,
		Limit:   spec.Limit,
		Offset:  spec.Skip,
	}
	if q.Limit == 0 {
		q.Limit = DefaultListLimit
	}

	var terms []string
	arg := func(v any) string {
		q.Args = append(q.Args, v)
		return fmt.Sprintf("$%d", len(q.Args))
	}

	if len(spec.Categories) > 0 {
		terms = append(terms, fmt.Sprintf("p.category_id = ANY(%s)", arg(spec.Categories)))
	}
	if len(spec.Price) > 0 {
		if len(spec.Price) != 2 {
			return nil, fmt.Errorf("price range requires exactly [min, max], got %d bounds: %w",
				len(spec.Price), caterrors.ErrInvalidFilter)
		}
		min, max := spec.Price[0], spec.Price[1]
		if min.GreaterThan(max) {
			return nil, fmt.Errorf("price range min %s exceeds max %s: %w", min, max, caterrors.ErrInvalidFilter)
		}
		terms = append(terms, fmt.Sprintf("p.price >= %s", arg(min)))
		terms = append(terms, fmt.Sprintf("p.price <= %s", arg(max)))
	}
	if spec.Search != "" {
		terms = append(terms, fmt.Sprintf("p.name ILIKE %s", arg("%"+escapeLike(spec.Search)+"%")))
	}

	q.Where = strings.Join(terms, " AND ")
	return q, nil
}

func parseDirection(order string) (desc bool, err error) {
	switch order {
	case "", "asc":
		return false, nil
	case "desc":
		return true, nil
	default:
		return false, fmt.Errorf("unknown sort direction %q: %w", order, caterrors.ErrInvalidFilter)
	}
}

// escapeLike escapes LIKE metacharacters so the search term matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
