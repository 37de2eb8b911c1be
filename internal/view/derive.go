// Package view derives a filtered, sorted and paged view of a record set.
package view

import (
	"cmp"
	"errors"
	"slices"
)

// ErrInvalidPageSize is returned when a page size is not positive.
var ErrInvalidPageSize = errors.New("view: page size must be positive")

// DefaultPageSize is used until SetPage is called.
const DefaultPageSize = 25

// Direction is the sort direction.
type Direction int

const (
	None Direction = iota
	Asc
	Desc
)

// String returns the display name for the direction
func (d Direction) String() string {
	switch d {
	case None:
		return "none"
	case Asc:
		return "asc"
	case Desc:
		return "desc"
	default:
		return "unknown"
	}
}

// Compare orders two records like cmp.Compare.
type Compare[T any] func(a, b T) int

// By builds a Compare from a key extractor.
func By[T any, K cmp.Ordered](key func(T) K) Compare[T] {
	return func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	}
}

// Then breaks ties of c with next.
func (c Compare[T]) Then(next Compare[T]) Compare[T] {
	return func(a, b T) int {
		if r := c(a, b); r != 0 {
			return r
		}
		return next(a, b)
	}
}

// State holds the view parameters applied to a record set.
type State[T any] struct {
	Filter    func(T) bool // nil keeps everything
	Compare   Compare[T]   // nil disables sorting
	Direction Direction
	PageIndex int
	PageSize  int
}

// Result is one materialized page.
type Result[T any] struct {
	Items      []T
	TotalCount int // after filtering, before paging
	PageCount  int
	PageIndex  int // clamped
	PageSize   int
}

// HasNext reports whether a page follows this one.
func (r Result[T]) HasNext() bool {
	return r.PageIndex < r.PageCount-1
}

// HasPrev reports whether a page precedes this one.
func (r Result[T]) HasPrev() bool {
	return r.PageIndex > 0
}

// Derive filters, stably sorts and pages records. records is not modified
// and the returned Items never alias it.
func Derive[T any](records []T, s State[T]) (Result[T], error) {
	if s.PageSize <= 0 {
		return Result[T]{}, ErrInvalidPageSize
	}

	filtered := make([]T, 0, len(records))
	for _, r := range records {
		if s.Filter == nil || s.Filter(r) {
			filtered = append(filtered, r)
		}
	}

	if s.Direction != None && s.Compare != nil {
		compare := s.Compare
		if s.Direction == Desc {
			// Swap operands rather than reversing the output so equal keys
			// keep their filtered order.
			compare = func(a, b T) int { return s.Compare(b, a) }
		}
		slices.SortStableFunc(filtered, compare)
	}

	total := len(filtered)
	// Written so a page size near MaxInt cannot overflow.
	pageCount := total / s.PageSize
	if total%s.PageSize != 0 {
		pageCount++
	}
	index := clampIndex(s.PageIndex, pageCount)

	start := index * s.PageSize // index < pageCount, so start < total or 0
	end := start + min(s.PageSize, total-start)

	return Result[T]{
		Items:      append([]T{}, filtered[start:end]...),
		TotalCount: total,
		PageCount:  pageCount,
		PageIndex:  index,
		PageSize:   s.PageSize,
	}, nil
}

func clampIndex(index, pageCount int) int {
	if pageCount == 0 || index < 0 {
		return 0
	}
	if index > pageCount-1 {
		return pageCount - 1
	}
	return index
}
