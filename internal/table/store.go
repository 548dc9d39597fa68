// Package table owns the canonical pagination/sort/filter state of one list
// screen. The store is the single writer of truth during a user interaction:
// the rendering layer reads it, the navigation synchronizer subscribes to it,
// and nothing else mutates it.
package table

import (
	"sync"

	"github.com/simp-lee/consolekit/internal/domain"
)

// Update carries either a literal new value or a pure transform of the
// previous value. The transform form exists for interactions like "toggle
// sort direction" that must resolve against the last-committed state instead
// of a possibly stale snapshot held by the caller.
type Update[T any] struct {
	value T
	fn    func(T) T
}

// Value wraps a literal replacement value.
func Value[T any](v T) Update[T] {
	return Update[T]{value: v}
}

// Transform wraps a pure function of the previous value.
func Transform[T any](fn func(prev T) T) Update[T] {
	return Update[T]{fn: fn}
}

// resolve applies the update against the last-committed value.
func (u Update[T]) resolve(prev T) T {
	if u.fn != nil {
		return u.fn(prev)
	}
	return u.value
}

// Subscriber receives every committed state, exactly once per update.
type Subscriber func(domain.TableState)

// Store holds one screen's TableState and exposes the three update
// operations. All committed states satisfy the schema invariants: page index
// non-negative, page size positive, sort and filter fields restricted to the
// schema's permitted sets.
type Store struct {
	mu     sync.Mutex
	schema domain.Schema
	state  domain.TableState
	subs   []Subscriber
}

// New creates a Store starting from the schema's default state.
func New(schema domain.Schema) *Store {
	return &Store{
		schema: schema,
		state:  schema.DefaultState(),
	}
}

// Schema returns the screen schema the store sanitizes against.
func (s *Store) Schema() domain.Schema {
	return s.schema
}

// State returns a copy of the last-committed state.
func (s *Store) State() domain.TableState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn to run after every committed update with the new
// state. It returns an unsubscribe function.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	idx := len(s.subs) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs[idx] = nil
	}
}

// SetPagination commits a new page position.
func (s *Store) SetPagination(u Update[domain.Pagination]) {
	s.commit(func(state *domain.TableState) {
		state.Pagination = s.sanitizePagination(u.resolve(state.Pagination))
	})
}

// SetSort commits a new sort sequence and resets the page index to 0:
// changing the ordering invalidates the current page position.
func (s *Store) SetSort(u Update[[]domain.SortField]) {
	s.commit(func(state *domain.TableState) {
		state.Sort = s.sanitizeSort(u.resolve(state.Sort))
		state.Pagination.PageIndex = 0
	})
}

// SetFilters commits a new filter set and resets the page index to 0:
// changing the result set invalidates the current page position.
func (s *Store) SetFilters(u Update[domain.Filters]) {
	s.commit(func(state *domain.TableState) {
		state.Filters = s.sanitizeFilters(u.resolve(state.Filters))
		state.Pagination.PageIndex = 0
	})
}

// Replace commits an externally decoded state wholesale. Used by the
// navigation synchronizer when replaying inbound URL state; the state is
// sanitized like any other update.
func (s *Store) Replace(state domain.TableState) {
	s.commit(func(dst *domain.TableState) {
		dst.Pagination = s.sanitizePagination(state.Pagination)
		dst.Sort = s.sanitizeSort(state.Sort)
		dst.Filters = s.sanitizeFilters(state.Filters)
	})
}

// commit applies mutate under the lock and notifies subscribers outside it.
func (s *Store) commit(mutate func(*domain.TableState)) {
	s.mu.Lock()
	next := s.state.Clone()
	mutate(&next)
	s.state = next
	subs := append([]Subscriber(nil), s.subs...)
	s.mu.Unlock()

	snapshot := next.Clone()
	for _, fn := range subs {
		if fn != nil {
			fn(snapshot)
		}
	}
}

func (s *Store) sanitizePagination(p domain.Pagination) domain.Pagination {
	if p.PageIndex < 0 {
		p.PageIndex = 0
	}
	if p.PageSize < 1 {
		p.PageSize = s.schema.DefaultPageSize
	}
	return p
}

// sanitizeSort drops fields outside the schema's permitted set. An empty
// result falls back to the screen's default sort, so "no explicit sort"
// always round-trips through the URL as the absence of the sort key.
func (s *Store) sanitizeSort(sort []domain.SortField) []domain.SortField {
	out := make([]domain.SortField, 0, len(sort))
	for _, sf := range sort {
		if s.schema.AllowsSort(sf.Field) {
			out = append(out, sf)
		}
	}
	if len(out) == 0 {
		return append([]domain.SortField(nil), s.schema.DefaultSort...)
	}
	return out
}

// sanitizeFilters drops unknown fields, empty values, and values whose type
// disagrees with the field's declared kind. Every committed filter therefore
// has a wire form the codec decodes back unchanged.
func (s *Store) sanitizeFilters(filters domain.Filters) domain.Filters {
	out := make(domain.Filters, len(filters))
	for field, v := range filters {
		kind, ok := s.schema.FilterKindOf(field)
		if !ok {
			continue
		}
		if !domain.MatchesFilterKind(v, kind) {
			continue
		}
		if domain.IsEmptyFilterValue(v) {
			continue
		}
		out[field] = v
	}
	return out
}
