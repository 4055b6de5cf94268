// Package query turns raw list-endpoint parameters into a normalized query
// descriptor and renders it as parameterized PostgreSQL.
// This is part of the platform layer and contains no business logic.
package query

import (
	"maps"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Order is a sort direction.
type Order string

const (
	Asc  Order = "ASC"
	Desc Order = "DESC"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Config describes how one resource exposes its columns to list queries.
// Every column name here is trusted SQL; request values never reach the
// query text.
type Config struct {
	// Filters maps a query parameter to the column it filters by equality.
	Filters map[string]string
	// SearchFields are the columns matched case-insensitively by `search`.
	SearchFields []string
	// Sorts maps accepted `sort_by` values to columns.
	Sorts map[string]string
	// DefaultSort is the column used when `sort_by` is absent or unknown.
	// Empty means "created_at".
	DefaultSort string
	// DefaultOrder applies when `sort_order` is absent or invalid. Empty means DESC.
	DefaultOrder Order
	// DefaultLimit and MaxLimit override the package defaults when positive.
	DefaultLimit int
	MaxLimit     int
}

// Filter is one equality condition.
type Filter struct {
	Column string
	Value  string
}

// Spec is the normalized query descriptor consumed by repositories.
type Spec struct {
	Page         int
	Limit        int
	Filters      []Filter
	Search       string
	SearchFields []string
	SortColumn   string
	Order        Order
}

// Offset returns the row offset for the current page.
func (s Spec) Offset() int {
	if s.Page < 1 || s.Limit < 1 {
		return 0
	}
	return (s.Page - 1) * s.Limit
}

// Parse builds a Spec from request query values. It never fails: malformed
// numbers and unknown sort keys fall back to defaults, unknown filter keys
// are ignored, and filter values are passed through untouched.
func Parse(values url.Values, cfg Config) Spec {
	defaultLimit := DefaultLimit
	if cfg.DefaultLimit > 0 {
		defaultLimit = cfg.DefaultLimit
	}
	maxLimit := MaxLimit
	if cfg.MaxLimit > 0 {
		maxLimit = cfg.MaxLimit
	}

	spec := Spec{
		Page:  positiveInt(values.Get("page"), DefaultPage),
		Limit: positiveInt(values.Get("limit"), defaultLimit),
	}
	if spec.Limit > maxLimit {
		spec.Limit = maxLimit
	}
	// Keep (page-1)*limit representable.
	if maxPage := math.MaxInt / spec.Limit; spec.Page > maxPage {
		spec.Page = maxPage
	}

	for _, key := range sortedKeys(cfg.Filters) {
		raw, ok := values[key]
		if !ok || len(raw) == 0 {
			continue
		}
		value := strings.TrimSpace(raw[0])
		if value == "" {
			continue
		}
		spec.Filters = append(spec.Filters, Filter{Column: cfg.Filters[key], Value: value})
	}

	if search := strings.TrimSpace(values.Get("search")); search != "" && len(cfg.SearchFields) > 0 {
		spec.Search = search
		spec.SearchFields = append([]string(nil), cfg.SearchFields...)
	}

	spec.SortColumn = cfg.DefaultSort
	if spec.SortColumn == "" {
		spec.SortColumn = "created_at"
	}
	if column, ok := cfg.Sorts[strings.TrimSpace(values.Get("sort_by"))]; ok {
		spec.SortColumn = column
	}

	spec.Order = cfg.DefaultOrder
	if spec.Order == "" {
		spec.Order = Desc
	}
	switch strings.ToUpper(strings.TrimSpace(values.Get("sort_order"))) {
	case string(Asc):
		spec.Order = Asc
	case string(Desc):
		spec.Order = Desc
	}

	return spec
}

// FilterValue returns the value of the filter on column, if present.
func (s Spec) FilterValue(column string) (string, bool) {
	for _, f := range s.Filters {
		if f.Column == column {
			return f.Value, true
		}
	}
	return "", false
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// sortedKeys keeps filter order, and therefore placeholder numbering, stable.
func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
