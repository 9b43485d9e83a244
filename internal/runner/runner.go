// Package runner drives a tracking session from a recorded angle stream: it pulls
// frames, steps the session on the recording's own timeline, and fans the results
// out to listeners.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/lowaak/smart-trainer/rep-counter/internal/angles"
	"github.com/lowaak/smart-trainer/rep-counter/internal/events"
	"github.com/lowaak/smart-trainer/rep-counter/internal/exercise"
	"github.com/lowaak/smart-trainer/rep-counter/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/rep-counter/internal/source"
	"github.com/lowaak/smart-trainer/rep-counter/internal/summary"
	"github.com/lowaak/smart-trainer/rep-counter/internal/timeutil"
	"github.com/lowaak/smart-trainer/rep-counter/internal/tracker"
)

// DefaultFPS is assumed for recordings without timestamps
const DefaultFPS = 30.0

// Update is published once per processed frame
type Update struct {
	Index     int
	Timestamp time.Time
	Exercise  string
	Result    tracker.FrameResult
	Smoothed  angles.Frame
	Joints    []angles.Joint // the joints worth displaying for this exercise
}

// Options configure a Runner
type Options struct {
	Tracker tracker.Options
	FPS     float64 // frame rate used when frames carry no timestamp
	Pace    bool    // replay in real time instead of as fast as possible
}

// DefaultOptions returns the defaults for a run
func DefaultOptions() Options {
	return Options{Tracker: tracker.DefaultOptions(), FPS: DefaultFPS}
}

// Validate checks the options are usable
func (o Options) Validate() error {
	if o.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %v", o.FPS)
	}
	return o.Tracker.Validate()
}

// Result is what an asynchronous run delivers when it finishes
type Result struct {
	Report summary.Report
	Err    error
}

// Runner replays one recording through one session. Use it once.
type Runner struct {
	src      source.Source
	exercise string
	joints   []angles.Joint
	opts     Options
	wall     timeutil.Clock
	logger   *log.Logger

	// session time follows the recording, so debounce is independent of replay speed
	clock   *timeutil.ManualClock
	session *tracker.Session
	acc     *summary.Accumulator

	frames *events.ChannelEvent[Update]
	reps   *events.CallbackEvent[Update]
}

// New creates a Runner reading from src. wall supplies the session start time and
// the reference for paced playback.
func New(src source.Source, exerciseType string, opts Options, wall timeutil.Clock, logger *log.Logger) *Runner {
	if logger == nil {
		panic("Runner: logger cannot be nil")
	}
	if src == nil {
		panic("Runner: source cannot be nil")
	}
	if wall == nil {
		panic("Runner: clock cannot be nil")
	}
	if err := opts.Validate(); err != nil {
		panic("Runner: " + err.Error())
	}

	var joints []angles.Joint
	if v, ok := exercise.Lookup(exerciseType); ok {
		joints = v.DebugJoints()
	}

	clock := timeutil.NewManualClock(wall.Now())
	return &Runner{
		src:      src,
		exercise: exerciseType,
		joints:   joints,
		opts:     opts,
		wall:     wall,
		logger:   logger,
		clock:    clock,
		session:  tracker.NewSession(exerciseType, opts.Tracker, clock, logger),
		acc:      summary.NewAccumulator(exerciseType),
		frames:   events.NewChannelEvent[Update](true),
		reps:     events.NewCallbackEvent[Update](false),
	}
}

// Frames publishes every processed frame. Slow listeners miss frames rather than
// stall the run; a new listener first receives the latest frame.
func (r *Runner) Frames() *events.ChannelEvent[Update] {
	return r.frames
}

// Reps calls its listeners synchronously whenever the rep counter goes up
func (r *Runner) Reps() *events.CallbackEvent[Update] {
	return r.reps
}

// Start runs the session on its own goroutine. The returned channel delivers
// exactly one Result and is then closed.
func (r *Runner) Start(ctx context.Context) <-chan Result {
	done := make(chan Result, 1)
	go_func_utils.SafeGo(r.logger, "runner", func() {
		defer close(done)
		report, err := r.Run(ctx)
		done <- Result{Report: report, Err: err}
	})
	return done
}

// Run processes frames until the source is exhausted, a frame fails, or ctx is
// cancelled. The report covers every frame processed before Run returned.
func (r *Runner) Run(ctx context.Context) (summary.Report, error) {
	defer r.src.Close()

	start := r.clock.Now()
	wallStart := r.wall.Now()
	interval := time.Duration(float64(time.Second) / r.opts.FPS)

	r.logger.Printf("Runner: session %s started, exercise %q", r.acc.SessionID(), r.exercise)

	var offset time.Duration
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			r.logger.Printf("Runner: stopped after %d frames: %v", n, err)
			return r.acc.Report(), err
		}

		frame, err := r.src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			r.logger.Printf("Runner: input error after %d frames: %v", n, err)
			return r.acc.Report(), fmt.Errorf("reading frame %d: %w", n, err)
		}

		switch {
		case frame.HasTime:
			offset = frame.Offset
		case n > 0:
			offset += interval
		}

		if r.opts.Pace {
			if err := r.waitUntil(ctx, wallStart.Add(offset)); err != nil {
				r.logger.Printf("Runner: stopped after %d frames: %v", n, err)
				return r.acc.Report(), err
			}
		}

		if err := r.step(n, start.Add(offset), frame.Angles); err != nil {
			return r.acc.Report(), err
		}
	}

	report := r.acc.Report()
	r.logger.Printf("Runner: session %s finished, %d reps over %d frames (%d dropped by listeners)",
		report.SessionID, report.Reps, report.Frames, r.frames.Dropped())
	return report, nil
}

func (r *Runner) step(index int, ts time.Time, frame angles.Frame) error {
	prev := r.session.Counter()

	r.clock.Set(ts)
	res, err := r.session.Process(frame)
	if err != nil {
		return fmt.Errorf("processing frame %d: %w", index, err)
	}
	r.acc.Observe(ts, res)

	u := Update{
		Index:     index,
		Timestamp: ts,
		Exercise:  r.exercise,
		Result:    res,
		Smoothed:  r.session.SmoothedAngles(),
		Joints:    r.joints,
	}
	r.frames.Notify(u)
	if res.Counter > prev {
		r.reps.Notify(u)
	}
	return nil
}

// waitUntil blocks until the wall clock reaches deadline or ctx is done
func (r *Runner) waitUntil(ctx context.Context, deadline time.Time) error {
	d := deadline.Sub(r.wall.Now())
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
