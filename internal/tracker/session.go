package tracker

import (
	"log"

	"github.com/lowaak/smart-trainer/rep-counter/internal/angles"
	"github.com/lowaak/smart-trainer/rep-counter/internal/exercise"
	"github.com/lowaak/smart-trainer/rep-counter/internal/timeutil"
)

// Session is one live tracking session of a single exercise. It owns the tracker
// state plus the running counter and stage, and is driven by exactly one frame loop.
type Session struct {
	exerciseType string
	tracker      *Tracker
	counter      int
	stage        exercise.Stage
	last         FrameResult
	frames       int
}

// NewSession creates a session for exerciseType. An unrecognised type is accepted
// and simply never counts; callers that want to reject it should use exercise.Lookup.
func NewSession(exerciseType string, opts Options, clock timeutil.Clock, logger *log.Logger) *Session {
	return &Session{
		exerciseType: exerciseType,
		tracker:      New(opts, clock, logger),
	}
}

// Process ingests one frame of raw angles and returns that frame's result
func (s *Session) Process(frame angles.Frame) (FrameResult, error) {
	s.tracker.UpdateAngles(frame)
	res, err := s.tracker.CalculateExercise(s.exerciseType, s.counter, s.stage)
	if err != nil {
		return FrameResult{}, err
	}
	s.counter = res.Counter
	s.stage = res.Stage
	s.last = res
	s.frames++
	return res, nil
}

// Counter returns the reps counted so far
func (s *Session) Counter() int {
	return s.counter
}

// Stage returns the current stage
func (s *Session) Stage() exercise.Stage {
	return s.stage
}

// Last returns the result of the most recent frame
func (s *Session) Last() FrameResult {
	return s.last
}

// Frames returns how many frames have been processed
func (s *Session) Frames() int {
	return s.frames
}

// SmoothedAngles returns the current smoothed angles for display
func (s *Session) SmoothedAngles() angles.Frame {
	return s.tracker.SmoothedAngles()
}
