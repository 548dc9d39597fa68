package navsync

import (
	"net/url"
	"slices"
	"sync"
)

// MemoryHistory is an in-process History backed by a history stack. Hosts
// without a real address bar (tests, terminal frontends) use it directly;
// Back and Forward simulate the browser's pop events.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []url.Values
	pos     int
	onPop   []func()
}

// NewMemoryHistory creates a history whose current entry is initial.
// A nil initial starts from an empty query.
func NewMemoryHistory(initial url.Values) *MemoryHistory {
	if initial == nil {
		initial = url.Values{}
	}
	return &MemoryHistory{entries: []url.Values{cloneValues(initial)}}
}

// Query returns a copy of the current entry's query.
func (h *MemoryHistory) Query() url.Values {
	h.mu.Lock()
	defer h.mu.Unlock()
	return cloneValues(h.entries[h.pos])
}

// Replace overwrites the current entry without growing the stack.
func (h *MemoryHistory) Replace(q url.Values) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.pos] = cloneValues(q)
}

// Push appends a new entry, discarding any forward entries.
func (h *MemoryHistory) Push(q url.Values) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.pos+1], cloneValues(q))
	h.pos = len(h.entries) - 1
}

// Subscribe registers a pop listener and returns an unsubscribe function.
func (h *MemoryHistory) Subscribe(onPop func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onPop = append(h.onPop, onPop)
	idx := len(h.onPop) - 1
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.onPop[idx] = nil
	}
}

// Back moves one entry backwards and fires pop listeners. It reports whether
// a move happened.
func (h *MemoryHistory) Back() bool {
	h.mu.Lock()
	if h.pos == 0 {
		h.mu.Unlock()
		return false
	}
	h.pos--
	listeners := slices.Clone(h.onPop)
	h.mu.Unlock()

	firePop(listeners)
	return true
}

// Forward moves one entry forwards and fires pop listeners.
func (h *MemoryHistory) Forward() bool {
	h.mu.Lock()
	if h.pos == len(h.entries)-1 {
		h.mu.Unlock()
		return false
	}
	h.pos++
	listeners := slices.Clone(h.onPop)
	h.mu.Unlock()

	firePop(listeners)
	return true
}

// Len returns the number of history entries.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func firePop(listeners []func()) {
	for _, fn := range listeners {
		if fn != nil {
			fn()
		}
	}
}

func cloneValues(q url.Values) url.Values {
	out := url.Values{}
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
