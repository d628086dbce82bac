package dto

import "github.com/restaurant/backend/internal/domain/shared"

// PageQuery holds the query parameters of the paged list routes
type PageQuery struct {
	Size      int    `form:"size" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sortBy" binding:"max=64"`
	SortDir   string `form:"sortDir" binding:"max=8"`
	SearchKey string `form:"searchKey" binding:"max=255"`
}

// ToFilter converts the query into a repository filter for the 1-based page
func (q PageQuery) ToFilter(page int) shared.Filter {
	f := shared.DefaultFilter()
	f.Page = page
	if q.Size > 0 {
		f.PageSize = q.Size
	}
	if q.SortBy != "" {
		f.OrderBy = q.SortBy
	}
	if q.SortDir != "" {
		f.OrderDir = q.SortDir
	}
	f.Search = q.SearchKey
	return f
}

// PageResponse is one page of a list
type PageResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// NewPageResponse converts a paginated result into its wire form
func NewPageResponse[T any](p *shared.Paginated[T]) PageResponse[T] {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return PageResponse[T]{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}
