package events

import "sync/atomic"

// ChannelEvent delivers each value to registered channels without blocking.
// A listener whose buffer is full misses that value; Dropped counts the misses.
type ChannelEvent[T any] struct {
	reg     registry[T, chan<- T]
	dropped atomic.Uint64
}

// NewChannelEvent creates a ChannelEvent.
// With replayLast set, a channel registered after the first Notify immediately
// receives the most recent value (if it has room).
func NewChannelEvent[T any](replayLast bool) *ChannelEvent[T] {
	e := &ChannelEvent[T]{}
	e.reg.replay = replayLast
	return e
}

// Listen registers ch and returns a function that removes it again.
// The event never closes ch.
func (e *ChannelEvent[T]) Listen(ch chan<- T) func() {
	if ch == nil {
		panic("ChannelEvent: channel cannot be nil")
	}

	id, last, replay := e.reg.add(ch)
	if replay {
		e.send(ch, last)
	}
	return func() { e.reg.remove(id) }
}

// Notify offers value to every registered channel
func (e *ChannelEvent[T]) Notify(value T) {
	for _, ch := range e.reg.publish(value) {
		e.send(ch, value)
	}
}

func (e *ChannelEvent[T]) send(ch chan<- T, value T) {
	select {
	case ch <- value:
	default:
		e.dropped.Add(1)
	}
}

// ListenerCount returns the number of registered channels
func (e *ChannelEvent[T]) ListenerCount() int {
	return e.reg.count()
}

// Dropped returns how many sends were skipped because a listener was full
func (e *ChannelEvent[T]) Dropped() uint64 {
	return e.dropped.Load()
}
