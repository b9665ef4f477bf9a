package items

import "github.com/joaosp7/teste-principia-backend/internal/storage"

// PageMetadata echoes the effective query parameters alongside the pagination
// window, so clients can detect applied defaults.
type PageMetadata struct {
	Page         int    `json:"page"`
	Limit        int    `json:"limit"`
	Sort         string `json:"sort"`
	Order        string `json:"order"`
	TotalItems   int    `json:"totalItems"`
	TotalPages   int    `json:"totalPages"`
	NextPage     *int   `json:"nextPage"`
	PreviousPage *int   `json:"previousPage"`
}

// NewPageMetadata derives pagination metadata from the effective query and
// the count of rows matching the filter ignoring the page window.
func NewPageMetadata(query storage.ListQuery, totalItems int) PageMetadata {
	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + query.Limit - 1) / query.Limit
	}

	meta := PageMetadata{
		Page:       query.Page,
		Limit:      query.Limit,
		Sort:       query.Sort,
		Order:      query.Order,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
	if next := query.Page + 1; next <= totalPages {
		meta.NextPage = &next
	}
	if previous := query.Page - 1; previous >= 1 {
		meta.PreviousPage = &previous
	}
	return meta
}
