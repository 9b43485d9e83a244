// Package tracker turns smoothed joint angles into a rep count, a stage label, a posture
// flag and a progress fraction, one frame at a time.
package tracker

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lowaak/smart-trainer/rep-counter/internal/angles"
	"github.com/lowaak/smart-trainer/rep-counter/internal/exercise"
	"github.com/lowaak/smart-trainer/rep-counter/internal/smoothing"
	"github.com/lowaak/smart-trainer/rep-counter/internal/timeutil"
)

var (
	// ErrNegativeCounter is returned when a caller passes a negative prior rep count
	ErrNegativeCounter = errors.New("counter must not be negative")

	// ErrInvalidStage is returned when a caller passes a stage outside the Stage constants
	ErrInvalidStage = errors.New("invalid stage")
)

// FrameResult is the per-frame output of the tracker
type FrameResult struct {
	Counter   int
	Stage     exercise.Stage
	PostureOK bool
	Progress  float64 // in [0,1]
}

// repState holds the stability counters of one variant
type repState struct {
	transitionStable int       // consecutive frames past the opposite stage's threshold
	postureStable    int       // consecutive good-posture frames, capped at StableFrames
	lastRep          time.Time // zero until the first counted rep
}

// reset clears the counters for a new session
func (s *repState) reset() {
	*s = repState{}
}

// Tracker owns the smoothing buffers and per-variant stability state.
// It is not safe for concurrent use; each session needs its own Tracker.
type Tracker struct {
	opts     Options
	smoother *smoothing.Smoother
	states   map[string]*repState
	clock    timeutil.Clock
	logger   *log.Logger
}

// New creates a Tracker
func New(opts Options, clock timeutil.Clock, logger *log.Logger) *Tracker {
	if logger == nil {
		panic("Tracker: logger cannot be nil")
	}
	if clock == nil {
		panic("Tracker: clock cannot be nil")
	}
	if err := opts.Validate(); err != nil {
		panic("Tracker: " + err.Error())
	}

	states := make(map[string]*repState, len(exercise.AllVariants))
	for _, v := range exercise.AllVariants {
		states[v.Name()] = &repState{}
	}

	return &Tracker{
		opts:     opts,
		smoother: smoothing.New(opts.SmoothWindow),
		states:   states,
		clock:    clock,
		logger:   logger,
	}
}

// UpdateAngles feeds one frame of raw angles into the smoothing buffers.
// A frame without a detected pose is an empty (or nil) Frame.
func (t *Tracker) UpdateAngles(frame angles.Frame) {
	t.smoother.Update(frame)
}

// SmoothedAngles returns the current smoothed angle of every joint that has one
func (t *Tracker) SmoothedAngles() angles.Frame {
	return t.smoother.Snapshot()
}

// Reset clears smoothing buffers and stability counters
func (t *Tracker) Reset() {
	t.smoother.Reset()
	for _, st := range t.states {
		st.reset()
	}
}

// CalculateExercise advances the rep state machine of exerciseType by one frame,
// given the caller's counter and stage from the previous frame.
//
// exerciseType is matched case-insensitively. An unknown type returns the inputs
// unchanged with posture false and progress 0; it is not an error.
func (t *Tracker) CalculateExercise(exerciseType string, counter int, stage exercise.Stage) (FrameResult, error) {
	if counter < 0 {
		return FrameResult{}, fmt.Errorf("%w: %d", ErrNegativeCounter, counter)
	}
	if stage != exercise.StageUnset && stage != exercise.StageUp && stage != exercise.StageDown {
		return FrameResult{}, fmt.Errorf("%w: %d", ErrInvalidStage, int(stage))
	}

	variant, ok := exercise.Lookup(exerciseType)
	if !ok {
		return FrameResult{Counter: counter, Stage: stage}, nil
	}
	return t.step(variant, t.states[variant.Name()], counter, stage), nil
}

// step runs the hysteresis state machine for one frame
func (t *Tracker) step(v exercise.Variant, st *repState, counter int, stage exercise.Stage) FrameResult {
	angle, ok := v.DrivingAngle(t.smoother)
	if !ok {
		return FrameResult{Counter: counter, Stage: stage}
	}

	th := v.Thresholds()
	if stage == exercise.StageUnset {
		stage = th.InitialStage(angle)
	}

	target := stage.Opposite()
	if th.Reached(angle, target) {
		st.transitionStable++
		if st.transitionStable >= t.opts.StableFrames {
			if target == th.CompletesOn() {
				if t.qualifies(v, st) {
					counter++
					t.logger.Printf("Tracker: %s rep counted (total %d)", v.Name(), counter)
				}
				st.postureStable = 0
			}
			stage = target
			st.transitionStable = 0
		}
	} else {
		st.transitionStable = 0
	}

	postureOK := v.PostureOK(t.smoother)
	if postureOK {
		st.postureStable = min(st.postureStable+1, t.opts.StableFrames)
	} else {
		st.postureStable = 0
	}

	return FrameResult{
		Counter:   counter,
		Stage:     stage,
		PostureOK: postureOK,
		Progress:  th.Progress(angle),
	}
}

// qualifies decides whether a completion transition counts as a rep.
// Posture must already have been stable going into the transition, and the
// debounce interval must have elapsed since the last counted rep.
func (t *Tracker) qualifies(v exercise.Variant, st *repState) bool {
	if !v.PostureOK(t.smoother) || st.postureStable < t.opts.StableFrames {
		t.logger.Printf("Tracker: %s rep not counted, posture not stable (%d/%d frames)",
			v.Name(), st.postureStable, t.opts.StableFrames)
		return false
	}

	now := t.clock.Now()
	if !st.lastRep.IsZero() {
		if elapsed := now.Sub(st.lastRep); elapsed < t.opts.MinRepInterval {
			t.logger.Printf("Tracker: %s rep not counted, only %v since last rep", v.Name(), elapsed)
			return false
		}
	}
	st.lastRep = now
	return true
}
