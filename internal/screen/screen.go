package screen

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/simp-lee/consolekit/internal/client"
	"github.com/simp-lee/consolekit/internal/domain"
	"github.com/simp-lee/consolekit/internal/navsync"
	"github.com/simp-lee/consolekit/internal/querykey"
	"github.com/simp-lee/consolekit/internal/remotecache"
	"github.com/simp-lee/consolekit/internal/session"
	"github.com/simp-lee/consolekit/internal/table"
)

// ScopeFunc supplies the external scope merged into every request for this
// screen's resource, typically derived from the session profile.
type ScopeFunc func() querykey.Scope

// Screen wires one resource's table together: the state store, the URL
// synchronizer, the query key builder, the cache-backed client, and the
// session guard. Hosts drive it with Mount, the Set* pass-throughs, Load,
// and Snapshot.
type Screen struct {
	resource string
	store    *table.Store
	sync     *navsync.Synchronizer
	client   *client.Client
	cache    *remotecache.Cache
	guard    *session.Guard
	scope    ScopeFunc

	schedOpts []navsync.Option

	mu   sync.RWMutex
	key  string
	page *domain.PageResult[json.RawMessage]
}

// Option configures a Screen.
type Option func(*Screen)

// WithGuard gates Mount behind the session guard.
func WithGuard(g *session.Guard) Option {
	return func(s *Screen) { s.guard = g }
}

// WithScope attaches an external scope source to every request.
func WithScope(fn ScopeFunc) Option {
	return func(s *Screen) { s.scope = fn }
}

// WithScheduler forwards a write scheduler to the URL synchronizer.
func WithScheduler(sched navsync.Scheduler) Option {
	return func(s *Screen) { s.schedOpts = append(s.schedOpts, navsync.WithScheduler(sched)) }
}

// New builds a Screen for resource with the given table schema and history.
func New(resource string, schema domain.Schema, hist navsync.History, cli *client.Client, cache *remotecache.Cache, opts ...Option) *Screen {
	s := &Screen{
		resource: resource,
		store:    table.New(schema),
		client:   cli,
		cache:    cache,
		scope:    func() querykey.Scope { return querykey.Scope{} },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sync = navsync.New(s.store, hist, s.schedOpts...)
	return s
}

// Mount gates entry through the session guard, adopts the URL's state, and
// loads the first page. A guard rejection aborts the mount before any state
// or URL is touched.
func (s *Screen) Mount(ctx context.Context) error {
	if s.guard != nil {
		if err := s.guard.Ensure(ctx); err != nil {
			return err
		}
	}
	s.sync.Start()
	_, err := s.Load(ctx)
	return err
}

// Unmount detaches the screen from the history.
func (s *Screen) Unmount() {
	s.sync.Stop()
}

// State returns the current table state.
func (s *Screen) State() domain.TableState {
	return s.store.State()
}

// SetPagination updates the page without touching sort or filters.
func (s *Screen) SetPagination(p table.Update[domain.Pagination]) {
	s.store.SetPagination(p)
}

// SetSort updates the sort and returns the table to the first page.
func (s *Screen) SetSort(sort table.Update[[]domain.SortField]) {
	s.store.SetSort(sort)
}

// SetFilters updates the filters and returns the table to the first page.
func (s *Screen) SetFilters(filters table.Update[domain.Filters]) {
	s.store.SetFilters(filters)
}

// Load fetches the page for the current state and scope, caching it under
// the canonical key, and records it as the current snapshot.
func (s *Screen) Load(ctx context.Context) (*domain.PageResult[json.RawMessage], error) {
	key, err := querykey.Build(s.resource, s.store.State(), s.scope())
	if err != nil {
		return nil, err
	}
	page, err := s.client.List(ctx, key)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.key = key.Canonical
	s.page = page
	s.mu.Unlock()
	return page, nil
}

// Refresh drops the cached page for the current key and refetches it.
func (s *Screen) Refresh(ctx context.Context) (*domain.PageResult[json.RawMessage], error) {
	key, err := querykey.Build(s.resource, s.store.State(), s.scope())
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(key.Canonical)
	return s.Load(ctx)
}

// Snapshot returns the loaded page only when it matches the key for the
// current state. After a state change and before the next Load it reports
// false rather than surfacing another key's rows.
func (s *Screen) Snapshot() (*domain.PageResult[json.RawMessage], bool) {
	key, err := querykey.Build(s.resource, s.store.State(), s.scope())
	if err != nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.page == nil || s.key != key.Canonical {
		return nil, false
	}
	return s.page, true
}
