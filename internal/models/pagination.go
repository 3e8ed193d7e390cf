package models

// MaxPerPage caps the page size for every paginated endpoint. Values above
// the cap are clamped rather than rejected.
const MaxPerPage = 50

// DefaultPerPage is used when the client does not request a page size.
const DefaultPerPage = 20

// PageRequest carries validated, 1-indexed pagination parameters.
type PageRequest struct {
	Page    int
	PerPage int
}

// Offset returns the row offset implied by the page number.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Limit returns the page size.
func (p PageRequest) Limit() int {
	return p.PerPage
}

// Pagination is the response envelope describing a result page.
type Pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// NewPagination builds the envelope for a page request and total row count.
func NewPagination(req PageRequest, total int64) Pagination {
	pages := int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	return Pagination{
		Page:    req.Page,
		PerPage: req.PerPage,
		Total:   total,
		Pages:   pages,
		HasNext: req.Page < pages,
		HasPrev: req.Page > 1 && total > 0,
	}
}
