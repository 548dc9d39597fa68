// Package session owns the process-wide session state and the route-entry
// guard for protected screens. The state has exactly three writers: login,
// logout, and the error dispatcher's invalidation path; everyone else
// subscribes.
package session

import (
	"slices"
	"sync"

	"github.com/simp-lee/consolekit/internal/domain"
)

// State is a snapshot of the session. Only IsAuthenticated survives a
// process restart (via Persistence); the profile is always re-fetched.
type State struct {
	IsAuthenticated bool
	Profile         *domain.Profile
	Token           string
}

// Persistence stores the authenticated flag across restarts. Implementations
// must never persist the profile or the token.
type Persistence interface {
	LoadAuthenticated() bool
	SaveAuthenticated(bool)
}

// Store is the single-writer session state holder.
type Store struct {
	mu      sync.Mutex
	state   State
	persist Persistence
	subs    []func(State)
}

// NewStore creates a Store. With a non-nil persistence the authenticated
// flag is restored, leaving the profile empty for the guard to fetch.
func NewStore(persist Persistence) *Store {
	s := &Store{persist: persist}
	if persist != nil {
		s.state.IsAuthenticated = persist.LoadAuthenticated()
	}
	return s
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns the current auth token, empty when signed out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// Subscribe registers fn to run on every state change.
func (s *Store) Subscribe(fn func(State)) func() {
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

// Login marks the session authenticated with the given token.
func (s *Store) Login(token string) {
	s.mu.Lock()
	s.state = State{IsAuthenticated: true, Token: token}
	if s.persist != nil {
		s.persist.SaveAuthenticated(true)
	}
	subs := slices.Clone(s.subs)
	state := s.state
	s.mu.Unlock()

	notify(subs, state)
}

// SetProfile records the guard's fetched profile.
func (s *Store) SetProfile(p *domain.Profile) {
	s.mu.Lock()
	s.state.Profile = p
	subs := slices.Clone(s.subs)
	state := s.state
	s.mu.Unlock()

	notify(subs, state)
}

// Invalidate resets the session and reports whether there was a session to
// reset. The second concurrent invalidation is a no-op.
func (s *Store) Invalidate() bool {
	s.mu.Lock()
	if !s.state.IsAuthenticated {
		s.mu.Unlock()
		return false
	}
	s.state = State{}
	if s.persist != nil {
		s.persist.SaveAuthenticated(false)
	}
	subs := slices.Clone(s.subs)
	state := s.state
	s.mu.Unlock()

	notify(subs, state)
	return true
}

func notify(subs []func(State), state State) {
	for _, fn := range subs {
		if fn != nil {
			fn(state)
		}
	}
}
