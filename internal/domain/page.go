package domain

// PaginationParams carries page/limit values from the HTTP layer to the repo layer.
// Page is 1-indexed. Limit is capped at MaxPageLimit by NewPaginationParams.
type PaginationParams struct {
	Page  int
	Limit int
}

// MaxPageLimit is the largest page size a caller may request.
const MaxPageLimit = 100

// NewPaginationParams builds a PaginationParams from optional query values.
// Nil or non-positive values fall back to page=1, limit=20.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: 20}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, MaxPageLimit)
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one page of results together with the total row count.
type Page[T any] struct {
	Items []T
	Total int64
	PaginationParams
}
