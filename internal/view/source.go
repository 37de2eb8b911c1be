package view

import (
	"slices"
	"sync"
)

// Observer receives every recomputed view.
// Observers are invoked with the source locked and must not call back into
// it.
type Observer[T any] interface {
	OnView(Result[T])
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc[T any] func(Result[T])

// OnView calls f(r).
func (f ObserverFunc[T]) OnView(r Result[T]) { f(r) }

// Source holds a record set and its view state, and recomputes the view
// whenever either changes.
type Source[T any] struct {
	mu      sync.Mutex
	records []T
	state   State[T]
	result  Result[T]

	observers map[int]Observer[T]
	nextObsID int
}

// NewSource creates an empty source showing the first page of
// DefaultPageSize records, unfiltered and unsorted.
func NewSource[T any]() *Source[T] {
	s := &Source[T]{
		state:     State[T]{PageSize: DefaultPageSize},
		observers: make(map[int]Observer[T]),
	}
	s.result, _ = Derive(s.records, s.state)
	return s
}

// SetRecords replaces the record set. rows is copied; later changes to the
// caller's slice do not affect the source.
func (s *Source[T]) SetRecords(rows []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = slices.Clone(rows)
	s.recompute()
}

// SetFilter replaces the filter predicate. nil keeps every record.
func (s *Source[T]) SetFilter(keep func(T) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Filter = keep
	s.recompute()
}

// SetSort replaces the sort order. Direction None or a nil compare keeps the
// filtered order.
func (s *Source[T]) SetSort(compare Compare[T], dir Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Compare = compare
	s.state.Direction = dir
	s.recompute()
}

// SetPage selects a page. A non-positive size returns ErrInvalidPageSize and
// leaves the source untouched. index is clamped to the available pages.
func (s *Source[T]) SetPage(index, size int) error {
	if size <= 0 {
		return ErrInvalidPageSize
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.PageIndex = index
	s.state.PageSize = size
	s.recompute()
	return nil
}

// NextPage moves one page forward, stopping at the last page.
func (s *Source[T]) NextPage() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.PageIndex = s.result.PageIndex + 1
	s.recompute()
}

// PrevPage moves one page back, stopping at the first page.
func (s *Source[T]) PrevPage() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.PageIndex = s.result.PageIndex - 1
	s.recompute()
}

// View returns the current result.
func (s *Source[T]) View() Result[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Subscribe registers o for recomputed views and returns the current one
// along with a function that removes the subscription.
func (s *Source[T]) Subscribe(o Observer[T]) (current Result[T], unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = o

	return s.snapshot(), func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// recompute derives a new result and publishes it. Caller holds s.mu.
func (s *Source[T]) recompute() {
	result, err := Derive(s.records, s.state)
	if err != nil {
		// PageSize is validated by SetPage; keep the previous view.
		return
	}
	s.result = result
	// Remember the clamped index so paging resumes from what is shown.
	s.state.PageIndex = result.PageIndex

	for _, o := range s.observers {
		o.OnView(s.snapshot())
	}
}

// snapshot copies the current result so callers cannot mutate it. Caller
// holds s.mu.
func (s *Source[T]) snapshot() Result[T] {
	r := s.result
	r.Items = append([]T{}, s.result.Items...)
	return r
}
