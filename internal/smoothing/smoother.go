package smoothing

import (
	"github.com/lowaak/smart-trainer/rep-counter/internal/angles"
)

// Smoother keeps one Buffer per joint and exposes the moving average of each.
// Absent readings are skipped: they neither enter the average nor evict older
// readings, so a joint that drops out keeps reporting its last known average.
type Smoother struct {
	window  int
	buffers map[angles.Joint]*Buffer
}

// New creates a Smoother averaging the last window readings of every joint
func New(window int) *Smoother {
	if window < 1 {
		panic("Smoother: window must be at least 1")
	}
	s := &Smoother{
		window:  window,
		buffers: make(map[angles.Joint]*Buffer, len(angles.AllJoints)),
	}
	for _, j := range angles.AllJoints {
		s.buffers[j] = NewBuffer(window)
	}
	return s
}

// Window returns the number of readings averaged per joint
func (s *Smoother) Window() int {
	return s.window
}

// Ingest records one reading for joint j. present=false is a no-op, as is a
// non-finite value or a joint outside angles.AllJoints.
func (s *Smoother) Ingest(j angles.Joint, degrees float64, present bool) {
	if !present || !angles.Valid(degrees) {
		return
	}
	buf, ok := s.buffers[j]
	if !ok {
		return
	}
	buf.Push(degrees)
}

// Update ingests every joint of a frame
func (s *Smoother) Update(frame angles.Frame) {
	for _, j := range angles.AllJoints {
		v, ok := frame.Angle(j)
		s.Ingest(j, v, ok)
	}
}

// Angle returns the smoothed angle of j, absent while its buffer is empty
func (s *Smoother) Angle(j angles.Joint) (float64, bool) {
	buf, ok := s.buffers[j]
	if !ok {
		return 0, false
	}
	return buf.Mean()
}

// Snapshot returns the smoothed angle of every joint that has one
func (s *Smoother) Snapshot() angles.Frame {
	out := make(angles.Frame, len(s.buffers))
	for _, j := range angles.AllJoints {
		if v, ok := s.Angle(j); ok {
			out[j] = v
		}
	}
	return out
}

// Reset empties every buffer
func (s *Smoother) Reset() {
	for _, buf := range s.buffers {
		buf.Reset()
	}
}
