// Package query implements the filter, sort and paginate pipeline shared by
// the list endpoints. It works on snapshots, so no lock is held while a
// query is evaluated.
package query

import (
	"slices"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Params are the caller supplied query parameters.
type Params struct {
	SearchTerm     string
	SortBy         string
	SortDescending bool
	PageNumber     int
	PageSize       int
}

// Normalize clamps PageNumber to >= 1 and PageSize to [1, MaxPageSize].
// A zero PageSize means the caller did not set it and gets DefaultPageSize.
func (p Params) Normalize() Params {
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	switch {
	case p.PageSize == 0:
		p.PageSize = DefaultPageSize
	case p.PageSize < 1:
		p.PageSize = 1
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}
	p.SearchTerm = strings.TrimSpace(p.SearchTerm)
	return p
}

// Less compares two records, returning a negative number when a sorts
// before b, zero when equal and a positive number otherwise.
type Less[T any] func(a, b T) int

// Order is a parsed sort key plus direction.
type Order[K comparable] struct {
	Key        K
	Descending bool
}

// Spec describes how a record type takes part in the pipeline. K is the
// closed set of sort keys of the record type.
type Spec[T any, K comparable] struct {
	// SearchFields returns the text fields matched by the search term.
	SearchFields func(T) []string

	// ParseSort maps the raw sortBy parameter to a key of the enumeration.
	// It reports false for empty or unrecognized input.
	ParseSort func(string) (K, bool)

	Sorts map[K]Less[T]

	// Fallback is applied when ParseSort reports false. Nil keeps the input
	// order.
	Fallback *Order[K]
}

// Page is one window of a query result.
type Page[T any] struct {
	Data            []T  `json:"data"`
	TotalCount      int  `json:"totalCount"`
	PageNumber      int  `json:"pageNumber"`
	PageSize        int  `json:"pageSize"`
	TotalPages      int  `json:"totalPages"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// Run applies filter, sort and pagination, in that order, to items.
// items is not modified.
func Run[T any, K comparable](items []T, p Params, spec Spec[T, K]) Page[T] {
	p = p.Normalize()

	filtered := Filter(items, p.SearchTerm, spec.SearchFields)
	if order, ok := spec.Resolve(p.SortBy, p.SortDescending); ok {
		Sort(filtered, spec.Sorts[order.Key], order.Descending)
	}
	return Paginate(filtered, p.PageNumber, p.PageSize)
}

// Resolve turns the raw sort parameters into an order of the enumeration,
// falling back to spec.Fallback. It reports false when nothing should be
// sorted.
func (spec Spec[T, K]) Resolve(sortBy string, descending bool) (Order[K], bool) {
	if spec.ParseSort != nil {
		if key, ok := spec.ParseSort(sortBy); ok {
			if _, has := spec.Sorts[key]; has {
				return Order[K]{Key: key, Descending: descending}, true
			}
		}
	}
	if spec.Fallback == nil {
		return Order[K]{}, false
	}
	if _, has := spec.Sorts[spec.Fallback.Key]; !has {
		return Order[K]{}, false
	}
	return *spec.Fallback, true
}

// Filter returns the records where term is a case-insensitive substring of
// at least one of the search fields. The result is always a new slice.
func Filter[T any](items []T, term string, fields func(T) []string) []T {
	out := make([]T, 0, len(items))
	if term == "" || fields == nil {
		return append(out, items...)
	}

	needle := strings.ToLower(term)
	for _, it := range items {
		for _, f := range fields(it) {
			if strings.Contains(strings.ToLower(f), needle) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// Sort orders items in place. The sort is stable so equal records keep the
// input order.
func Sort[T any](items []T, less Less[T], descending bool) {
	if less == nil {
		return
	}
	slices.SortStableFunc(items, func(a, b T) int {
		if descending {
			return less(b, a)
		}
		return less(a, b)
	})
}

// Paginate cuts the window [(pageNumber-1)*pageSize, pageNumber*pageSize).
// Callers are expected to pass normalized values.
func Paginate[T any](items []T, pageNumber, pageSize int) Page[T] {
	total := len(items)
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	start := total
	if pageSize > 0 && pageNumber-1 <= total/pageSize {
		start = min((pageNumber-1)*pageSize, total)
	}
	end := min(start+pageSize, total)

	data := make([]T, 0, end-start)
	data = append(data, items[start:end]...)

	return Page[T]{
		Data:            data,
		TotalCount:      total,
		PageNumber:      pageNumber,
		PageSize:        pageSize,
		TotalPages:      totalPages,
		HasPreviousPage: pageNumber > 1,
		HasNextPage:     pageNumber < totalPages,
	}
}
