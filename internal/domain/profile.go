package domain

import (
	"math"
	"strings"
)

// Profile is the authenticated operator, fetched once per session by the
// session guard. LocationID is the externally supplied scope merged into
// every request for scoped resources.
type Profile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	LocationID string `json:"location_id"`
}

// Valid reports whether a decoded profile payload is usable. A successful
// response with an empty or id-less body counts as a failed profile fetch.
func (p *Profile) Valid() bool {
	return p != nil && strings.TrimSpace(p.ID) != ""
}

// PageMeta is the server's pagination block on every list response.
// Page is 1-based, per the wire convention.
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// PageResult is one page of a list response.
type PageResult[T any] struct {
	Items      []T      `json:"items"`
	Pagination PageMeta `json:"pagination"`
}

// NewPageResult builds a PageResult with computed TotalPages. page is 1-based.
func NewPageResult[T any](items []T, total int64, page, limit int) *PageResult[T] {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	if items == nil {
		items = []T{}
	}
	return &PageResult[T]{
		Items: items,
		Pagination: PageMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}
