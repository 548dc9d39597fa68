package session

import (
	"context"

	"github.com/simp-lee/consolekit/internal/domain"
	"github.com/simp-lee/consolekit/internal/querykey"
	"github.com/simp-lee/consolekit/internal/remotecache"
)

// ErrLoginRequired is returned by the guard when no authenticated session
// exists; the host redirects to the login screen and aborts the mount.
var ErrLoginRequired = domain.NewAppError(domain.TagUnauthorized, "login required", nil)

// Invalidator tears down the session and the remote cache together,
// synchronously, so a not-yet-settled fetch cannot repopulate authenticated
// data after logout. It is the session-side implementation of the
// dispatcher's SessionInvalidator.
type Invalidator struct {
	Store *Store
	Cache *remotecache.Cache
}

// InvalidateSession implements dispatch.SessionInvalidator.
func (iv *Invalidator) InvalidateSession() bool {
	if !iv.Store.Invalidate() {
		return false
	}
	iv.Cache.Clear()
	return true
}

// ProfileFetcher loads the operator profile from the remote API. The guard
// runs it through the cache under a fixed key, so any number of screens
// mounting concurrently share one request.
type ProfileFetcher func(ctx context.Context) (*domain.Profile, error)

// Guard is the route-entry gate for protected screens.
type Guard struct {
	store       *Store
	cache       *remotecache.Cache
	fetch       ProfileFetcher
	invalidator *Invalidator
}

// NewGuard creates a Guard over the shared session store and cache.
func NewGuard(store *Store, cache *remotecache.Cache, fetch ProfileFetcher) *Guard {
	return &Guard{
		store:       store,
		cache:       cache,
		fetch:       fetch,
		invalidator: &Invalidator{Store: store, Cache: cache},
	}
}

// Ensure gates one screen mount. It returns nil when the screen may render,
// ErrLoginRequired when there is no session, or the profile fetch's error
// after invalidating the session. A successful fetch with an unusable
// payload counts as a failure.
func (g *Guard) Ensure(ctx context.Context) error {
	state := g.store.State()
	if !state.IsAuthenticated {
		return ErrLoginRequired
	}
	if state.Profile.Valid() {
		return nil
	}

	key := querykey.ProfileKey()
	profile, err := remotecache.GetOrFetchAs(ctx, g.cache, key.Canonical, func(ctx context.Context) (*domain.Profile, error) {
		return g.fetch(ctx)
	})
	if err != nil {
		g.invalidator.InvalidateSession()
		return err
	}
	if !profile.Valid() {
		g.invalidator.InvalidateSession()
		return domain.NewAppError(domain.TagUnknownServer, "profile payload is empty", nil)
	}

	g.store.SetProfile(profile)
	return nil
}
