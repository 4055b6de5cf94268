package query

// Pagination is the envelope returned alongside every list response.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// NewPagination computes pages as ceil(total / limit).
func NewPagination(total int, spec Spec) Pagination {
	limit := spec.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	page := spec.Page
	if page < 1 {
		page = DefaultPage
	}
	if total < 0 {
		total = 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return Pagination{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pages,
	}
}

// Window applies the spec's offset and limit to an in-memory slice.
// Used by providers that do not page in SQL.
func Window[T any](items []T, spec Spec) []T {
	start := spec.Offset()
	if start >= len(items) || start < 0 {
		return []T{}
	}
	end := start + spec.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
