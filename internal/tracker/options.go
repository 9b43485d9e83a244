package tracker

import (
	"fmt"
	"time"

	"github.com/lowaak/smart-trainer/rep-counter/internal/smoothing"
)

// Defaults
const (
	DefaultStableFrames   = 3
	DefaultMinRepInterval = 600 * time.Millisecond
)

// Options tune smoothing and rep debouncing
type Options struct {
	SmoothWindow   int           // readings averaged per joint
	StableFrames   int           // consecutive frames a transition (and posture) must hold
	MinRepInterval time.Duration // minimum wall-clock time between two counted reps
}

// DefaultOptions returns the calibrated defaults
func DefaultOptions() Options {
	return Options{
		SmoothWindow:   smoothing.DefaultWindow,
		StableFrames:   DefaultStableFrames,
		MinRepInterval: DefaultMinRepInterval,
	}
}

// Validate checks the options are usable
func (o Options) Validate() error {
	if o.SmoothWindow < 1 {
		return fmt.Errorf("smooth window must be at least 1, got %d", o.SmoothWindow)
	}
	if o.StableFrames < 1 {
		return fmt.Errorf("stable frames must be at least 1, got %d", o.StableFrames)
	}
	if o.MinRepInterval < 0 {
		return fmt.Errorf("min rep interval must not be negative, got %v", o.MinRepInterval)
	}
	return nil
}
