// Package events fans per-frame updates out to any number of listeners, either as
// callbacks or as non-blocking channel sends.
package events

import "sync"

type entry[L any] struct {
	id       uint64
	listener L
}

// registry is the listener bookkeeping shared by both event flavours.
// Listeners are kept in registration order so fan-out is deterministic.
type registry[T, L any] struct {
	mu      sync.RWMutex
	entries []entry[L]
	nextID  uint64
	replay  bool // remember the last value for late listeners
	last    T
	hasLast bool
}

// add registers l and reports the value to replay to it, if any
func (r *registry[T, L]) add(l L) (id uint64, last T, replay bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id = r.nextID
	r.nextID++
	r.entries = append(r.entries, entry[L]{id: id, listener: l})
	return id, r.last, r.replay && r.hasLast
}

// remove drops the listener with id; unknown ids are ignored so removal is idempotent
func (r *registry[T, L]) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}

// publish records v as the last value and returns a snapshot of the listeners.
// Listeners are invoked by the caller outside the lock, so they may (un)register.
func (r *registry[T, L]) publish(v T) []L {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.replay {
		r.last = v
		r.hasLast = true
	}
	out := make([]L, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.listener
	}
	return out
}

func (r *registry[T, L]) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
