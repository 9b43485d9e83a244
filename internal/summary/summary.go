// Package summary builds the end-of-session workout report.
package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lowaak/smart-trainer/rep-counter/internal/tracker"
)

// Report is what the user sees when a session ends. It is printed, not stored.
type Report struct {
	SessionID  uuid.UUID
	Exercise   string
	Reps       int
	Duration   time.Duration // first to last observed frame
	Frames     int
	GoodFrames int     // frames with good posture
	Accuracy   float64 // GoodFrames / Frames as a percentage, 0 without frames
}

// String renders the report as a short block of text
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session:   %s\n", r.SessionID)
	fmt.Fprintf(&b, "Exercise:  %s\n", r.Exercise)
	fmt.Fprintf(&b, "Total reps: %d\n", r.Reps)
	fmt.Fprintf(&b, "Duration:  %.1f seconds\n", r.Duration.Seconds())
	fmt.Fprintf(&b, "Frames:    %d (%d good posture)\n", r.Frames, r.GoodFrames)
	fmt.Fprintf(&b, "Accuracy:  %.2f%%\n", r.Accuracy)
	return b.String()
}

// Accumulator collects per-frame results into a Report
type Accumulator struct {
	id       uuid.UUID
	exercise string
	reps     int
	first    time.Time
	last     time.Time
	frames   int
	good     int
}

// NewAccumulator starts a report for a new session of exercise
func NewAccumulator(exercise string) *Accumulator {
	return &Accumulator{id: uuid.New(), exercise: exercise}
}

// SessionID identifies the session in logs and in the report
func (a *Accumulator) SessionID() uuid.UUID {
	return a.id
}

// Observe records the result of the frame processed at ts
func (a *Accumulator) Observe(ts time.Time, res tracker.FrameResult) {
	if a.frames == 0 {
		a.first = ts
	}
	a.last = ts
	a.reps = res.Counter
	a.frames++
	if res.PostureOK {
		a.good++
	}
}

// Report returns the report for everything observed so far
func (a *Accumulator) Report() Report {
	r := Report{
		SessionID:  a.id,
		Exercise:   a.exercise,
		Reps:       a.reps,
		Frames:     a.frames,
		GoodFrames: a.good,
	}
	if r.Frames == 0 {
		return r
	}

	r.Duration = a.last.Sub(a.first)
	r.Accuracy = float64(a.good) / float64(a.frames) * 100
	return r
}
