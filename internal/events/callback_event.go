package events

// CallbackEvent delivers each value synchronously to registered callbacks, in the
// order they were registered
type CallbackEvent[T any] struct {
	reg registry[T, func(T)]
}

// NewCallbackEvent creates a CallbackEvent.
// With replayLast set, a listener registered after the first Notify is called
// straight away with the most recent value.
func NewCallbackEvent[T any](replayLast bool) *CallbackEvent[T] {
	e := &CallbackEvent[T]{}
	e.reg.replay = replayLast
	return e
}

// Listen registers callback and returns a function that removes it again
func (e *CallbackEvent[T]) Listen(callback func(T)) func() {
	if callback == nil {
		panic("CallbackEvent: callback cannot be nil")
	}

	id, last, replay := e.reg.add(callback)
	if replay {
		callback(last)
	}
	return func() { e.reg.remove(id) }
}

// Notify calls every listener with value on the calling goroutine
func (e *CallbackEvent[T]) Notify(value T) {
	for _, callback := range e.reg.publish(value) {
		callback(value)
	}
}

// ListenerCount returns the number of registered listeners
func (e *CallbackEvent[T]) ListenerCount() int {
	return e.reg.count()
}
