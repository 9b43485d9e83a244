// Package smoothing keeps a short moving-average history per joint so that a single
// noisy pose estimate does not flip the rep state machine.
package smoothing

import (
	"gonum.org/v1/gonum/stat"
)

// DefaultWindow is the number of recent readings averaged per joint
const DefaultWindow = 5

// Buffer is a fixed-capacity FIFO of float64 readings.
// Pushing into a full buffer evicts the oldest reading.
type Buffer struct {
	values []float64 // ring storage, len == cap once full
	next   int       // index the next push writes to once full
	cap    int
}

// NewBuffer creates an empty buffer holding at most capacity readings
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		panic("Buffer: capacity must be at least 1")
	}
	return &Buffer{
		values: make([]float64, 0, capacity),
		cap:    capacity,
	}
}

// Push appends v, evicting the oldest reading when the buffer is full
func (b *Buffer) Push(v float64) {
	if len(b.values) < b.cap {
		b.values = append(b.values, v)
		return
	}
	b.values[b.next] = v
	b.next = (b.next + 1) % b.cap
}

// Len returns the number of readings held
func (b *Buffer) Len() int {
	return len(b.values)
}

// Cap returns the buffer capacity
func (b *Buffer) Cap() int {
	return b.cap
}

// Mean returns the arithmetic mean of the held readings.
// ok is false when the buffer is empty.
func (b *Buffer) Mean() (mean float64, ok bool) {
	if len(b.values) == 0 {
		return 0, false
	}
	return stat.Mean(b.values, nil), true
}

// Values returns the held readings oldest first
func (b *Buffer) Values() []float64 {
	out := make([]float64, 0, len(b.values))
	out = append(out, b.values[b.next:]...)
	out = append(out, b.values[:b.next]...)
	return out
}

// Reset drops all readings
func (b *Buffer) Reset() {
	b.values = b.values[:0]
	b.next = 0
}
