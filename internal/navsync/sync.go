// Package navsync glues a table store to the host's navigation layer: it
// replays inbound URL state into the store on mount and on back/forward
// events, and pushes store updates back out to the URL without re-triggering
// itself.
package navsync

import (
	"net/url"
	"sync"

	"github.com/simp-lee/consolekit/internal/domain"
	"github.com/simp-lee/consolekit/internal/table"
	"github.com/simp-lee/consolekit/internal/urlstate"
)

// History is the navigation layer the host must provide: current query
// string, replace-without-history-entry, push-with-history-entry, and
// back/forward (pop) event subscription.
type History interface {
	Query() url.Values
	Replace(q url.Values)
	Push(q url.Values)
	Subscribe(onPop func()) (unsubscribe func())
}

// Scheduler defers a flush to the end of the current tick. The default runs
// synchronously; event-loop hosts supply their own so that several store
// updates issued in one tick coalesce into exactly one URL write.
type Scheduler func(flush func())

// Synchronizer is a two-state machine: Idle, where committed store updates
// are encoded and written to the URL, and Applying-Inbound, where updates
// caused by replaying a URL into the store are suppressed. Without the
// suppression every back/forward navigation would immediately overwrite
// itself with a fresh URL write, making history unusable.
type Synchronizer struct {
	store *table.Store
	hist  History
	sched Scheduler

	mu       sync.Mutex
	applying bool
	pending  bool

	unsubStore func()
	unsubHist  func()
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithScheduler replaces the synchronous default flush scheduler.
func WithScheduler(s Scheduler) Option {
	return func(y *Synchronizer) { y.sched = s }
}

// New wires a synchronizer between store and hist. Call Start to mount.
func New(store *table.Store, hist History, opts ...Option) *Synchronizer {
	y := &Synchronizer{
		store: store,
		hist:  hist,
		sched: func(flush func()) { flush() },
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Start performs the mount sequence: apply the current URL into the store,
// then subscribe to store commits and to back/forward events.
func (y *Synchronizer) Start() {
	y.applyInbound()
	y.unsubStore = y.store.Subscribe(y.onStoreUpdate)
	y.unsubHist = y.hist.Subscribe(y.applyInbound)
}

// Stop detaches the synchronizer from both sides. In-flight fetches keyed on
// the old state need no cancellation; their results land under keys no
// mounted screen reads.
func (y *Synchronizer) Stop() {
	if y.unsubStore != nil {
		y.unsubStore()
		y.unsubStore = nil
	}
	if y.unsubHist != nil {
		y.unsubHist()
		y.unsubHist = nil
	}
}

// applyInbound decodes the current URL and replays it into the store while
// in the Applying-Inbound state. The transition back to Idle is synchronous:
// by the time applyInbound returns, store updates write URLs again.
func (y *Synchronizer) applyInbound() {
	y.mu.Lock()
	y.applying = true
	// An inbound navigation supersedes any flush scheduled for outbound
	// writes; the state about to be committed came from the URL itself.
	y.pending = false
	y.mu.Unlock()

	state := urlstate.Decode(y.hist.Query(), y.store.Schema())
	y.store.Replace(state)

	y.mu.Lock()
	y.applying = false
	y.mu.Unlock()
}

// onStoreUpdate schedules one coalesced URL write for all updates committed
// in the same tick, unless the update was itself caused by an inbound apply.
func (y *Synchronizer) onStoreUpdate(_ domain.TableState) {
	y.mu.Lock()
	if y.applying || y.pending {
		y.mu.Unlock()
		return
	}
	y.pending = true
	y.mu.Unlock()

	y.sched(y.flush)
}

// flush encodes the latest committed state over the current query and
// replaces the URL. Replace, never Push: routine paging, sorting, and
// filtering must not create history entries.
func (y *Synchronizer) flush() {
	y.mu.Lock()
	if !y.pending {
		y.mu.Unlock()
		return
	}
	y.pending = false
	y.mu.Unlock()

	next := urlstate.Encode(y.store.State(), y.hist.Query(), y.store.Schema())
	y.hist.Replace(next)
}
