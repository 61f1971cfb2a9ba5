// Package pagination turns page/pageSize parameters into a bounded query
// plan and computes the navigation metadata for list responses.
package pagination

const (
	DefaultPage     = 1
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Plan is a normalized page request: page >= 1, pageSize clamped to
// [1, MaxPageSize], offset derived from both.
type Plan struct {
	Page     int
	PageSize int
	Offset   int
}

// NewPlan clamps raw page parameters into a bounded plan.
func NewPlan(page, pageSize int) Plan {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Plan{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}
}

// Meta is the pagination metadata attached to a list response.
type Meta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
	HasPrev  bool  `json:"has_prev"`
	HasNext  bool  `json:"has_next"`
}

// BuildMeta computes the last page (never below 1) and which of the
// prev/next navigation links apply. First and last links always apply.
func (p Plan) BuildMeta(total int64) Meta {
	lastPage := int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	if lastPage < 1 {
		lastPage = 1
	}
	return Meta{
		Page:     p.Page,
		PageSize: p.PageSize,
		Total:    total,
		LastPage: lastPage,
		HasPrev:  p.Page > 1,
		HasNext:  p.Page < lastPage,
	}
}
