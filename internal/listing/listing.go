// Package listing filters, sorts and paginates collections that were fetched
// in full, the way the admin tables do.
package listing

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// DefaultPageSize is used when a query does not set one.
const DefaultPageSize = 10

// AllValues disables a filter, like an "All" option in a select.
const AllValues = "all"

// Query describes one view of a table.
type Query struct {
	Search   string
	Filters  map[string]string
	SortKey  string
	Desc     bool
	Page     int // 1-based
	PageSize int
}

// Spec tells Apply how to look inside T.
type Spec[T any] struct {
	// SearchFields returns the strings matched by Query.Search.
	SearchFields func(T) []string
	// Filters maps a filter key to the value compared for equality.
	Filters map[string]func(T) string
	// Sorters maps a sort key to a comparison function.
	Sorters map[string]func(a, b T) int
}

// Page is one page of results plus totals for the whole filtered set.
type Page[T any] struct {
	Items      []T
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// Apply runs search, filters, sort and pagination, in that order. The input
// slice is not modified.
func Apply[T any](items []T, spec Spec[T], q Query) (Page[T], error) {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if search != "" && !matchesSearch(spec, item, search) {
			continue
		}
		ok, err := matchesFilters(spec, item, q.Filters)
		if err != nil {
			return Page[T]{}, err
		}
		if ok {
			filtered = append(filtered, item)
		}
	}

	if q.SortKey != "" {
		less, ok := spec.Sorters[q.SortKey]
		if !ok {
			return Page[T]{}, fmt.Errorf("unknown sort key %q", q.SortKey)
		}
		slices.SortStableFunc(filtered, func(a, b T) int {
			if q.Desc {
				return less(b, a)
			}
			return less(a, b)
		})
	}

	return paginate(filtered, q.Page, q.PageSize), nil
}

func matchesSearch[T any](spec Spec[T], item T, search string) bool {
	if spec.SearchFields == nil {
		return true
	}
	for _, f := range spec.SearchFields(item) {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func matchesFilters[T any](spec Spec[T], item T, filters map[string]string) (bool, error) {
	for key, want := range filters {
		if want == "" || strings.EqualFold(want, AllValues) {
			continue
		}
		get, ok := spec.Filters[key]
		if !ok {
			return false, fmt.Errorf("unknown filter %q", key)
		}
		if !strings.EqualFold(get(item), want) {
			return false, nil
		}
	}
	return true, nil
}

func paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}

	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	var out []T
	if start < total {
		out = items[start:end]
	} else {
		out = []T{}
	}

	return Page[T]{
		Items:      out,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// CompareStrings orders strings case-insensitively.
func CompareStrings(a, b string) int {
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}
