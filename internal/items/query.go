// Package items implements the items resource engine: query normalization,
// the existence-checked mutation policy, pagination metadata, and the
// database seeder.
package items

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/joaosp7/teste-principia-backend/internal/storage"
)

// Defaults applied when a list parameter is absent.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	DefaultSort  = "createdAt"
	DefaultOrder = "DESC"
	MaxLimit     = 25
)

var (
	allowedSorts  = []string{"createdAt", "updatedAt", "name"}
	allowedOrders = []string{"ASC", "DESC"}
)

// ParseListQuery validates and defaults the raw pagination, search, and sort
// parameters into a canonical query descriptor. Any parameter outside its
// declared type, range, or enum fails the whole request; validation collects
// every violation instead of stopping at the first.
func ParseListQuery(values url.Values) (storage.ListQuery, error) {
	query := storage.ListQuery{
		Page:  DefaultPage,
		Limit: DefaultLimit,
		Sort:  DefaultSort,
		Order: DefaultOrder,
	}
	var violations []FieldViolation

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			violations = append(violations, FieldViolation{Field: "page", Message: "must be an integer"})
		case page < 1:
			violations = append(violations, FieldViolation{Field: "page", Message: "must be at least 1"})
		default:
			query.Page = page
		}
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			violations = append(violations, FieldViolation{Field: "limit", Message: "must be an integer"})
		case limit < 1:
			violations = append(violations, FieldViolation{Field: "limit", Message: "must be at least 1"})
		case limit > MaxLimit:
			violations = append(violations, FieldViolation{Field: "limit", Message: fmt.Sprintf("must be at most %d", MaxLimit)})
		default:
			query.Limit = limit
		}
	}

	if raw := values.Get("sort"); raw != "" {
		if contains(allowedSorts, raw) {
			query.Sort = raw
		} else {
			violations = append(violations, FieldViolation{
				Field:   "sort",
				Message: fmt.Sprintf("must be one of %s", strings.Join(allowedSorts, ", ")),
			})
		}
	}

	if raw := values.Get("order"); raw != "" {
		if contains(allowedOrders, raw) {
			query.Order = raw
		} else {
			violations = append(violations, FieldViolation{
				Field:   "order",
				Message: fmt.Sprintf("must be one of %s", strings.Join(allowedOrders, ", ")),
			})
		}
	}

	query.Search = strings.TrimSpace(values.Get("search"))

	if len(violations) > 0 {
		return storage.ListQuery{}, &InvalidQueryError{Violations: violations}
	}
	return query, nil
}

func contains(values []string, candidate string) bool {
	for _, value := range values {
		if value == candidate {
			return true
		}
	}
	return false
}
