package tracker

import (
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/smart-trainer/rep-counter/internal/angles"
	"github.com/lowaak/smart-trainer/rep-counter/internal/exercise"
	"github.com/lowaak/smart-trainer/rep-counter/internal/timeutil"
)

var testStart = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func concat(parts ...[]float64) []float64 {
	var out []float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func kneeFrames(seq []float64) []angles.Frame {
	frames := make([]angles.Frame, len(seq))
	for i, v := range seq {
		frames[i] = angles.Frame{angles.LeftKnee: v, angles.RightKnee: v}
	}
	return frames
}

func elbowFrames(seq []float64, abdomen float64) []angles.Frame {
	frames := make([]angles.Frame, len(seq))
	for i, v := range seq {
		frames[i] = angles.Frame{angles.LeftElbow: v, angles.RightElbow: v, angles.Abdomen: abdomen}
	}
	return frames
}

// feed runs frames through a session, advancing the clock by spacing before each frame
func feed(t *testing.T, s *Session, clock *timeutil.ManualClock, spacing time.Duration, frames []angles.Frame) []FrameResult {
	t.Helper()
	results := make([]FrameResult, 0, len(frames))
	for _, f := range frames {
		clock.Advance(spacing)
		res, err := s.Process(f)
		require.NoError(t, err)
		results = append(results, res)
	}
	return results
}

func newTestSession(exerciseType string, opts Options) (*Session, *timeutil.ManualClock) {
	clock := timeutil.NewManualClock(testStart)
	return NewSession(exerciseType, opts, clock, testLogger()), clock
}

func assertMonotonic(t *testing.T, results []FrameResult) {
	t.Helper()
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i].Counter, results[i-1].Counter, "frame %d", i)
	}
}

func TestNew_PanicsOnBadArguments(t *testing.T) {
	clock := timeutil.NewManualClock(testStart)
	assert.Panics(t, func() { New(DefaultOptions(), clock, nil) })
	assert.Panics(t, func() { New(DefaultOptions(), nil, testLogger()) })

	bad := DefaultOptions()
	bad.StableFrames = 0
	assert.Panics(t, func() { New(bad, clock, testLogger()) })
}

func TestOptions_Validate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	o := DefaultOptions()
	o.SmoothWindow = 0
	assert.Error(t, o.Validate())

	o = DefaultOptions()
	o.MinRepInterval = -time.Second
	assert.Error(t, o.Validate())

	o = DefaultOptions()
	o.MinRepInterval = 0
	assert.NoError(t, o.Validate())
}

func TestSession_SquatScenario(t *testing.T) {
	s, clock := newTestSession("squat", DefaultOptions())
	seq := concat(repeat(170, 8), repeat(60, 8), repeat(170, 8))

	results := feed(t, s, clock, time.Second, kneeFrames(seq))

	last := results[len(results)-1]
	assert.Equal(t, 1, last.Counter)
	assert.Equal(t, exercise.StageUp, last.Stage)
	assert.True(t, last.PostureOK)
	assert.Equal(t, 1.0, last.Progress)

	// committed to DOWN on the 15th frame, back UP (and counted) on the 23rd
	assert.Equal(t, exercise.StageUp, results[13].Stage)
	assert.Equal(t, exercise.StageDown, results[14].Stage)
	assert.Equal(t, 0, results[21].Counter)
	assert.Equal(t, 1, results[22].Counter)
	assertMonotonic(t, results)

	assert.Equal(t, 1, s.Counter())
	assert.Equal(t, exercise.StageUp, s.Stage())
	assert.Equal(t, len(seq), s.Frames())
	assert.Equal(t, last, s.Last())
}

func TestSession_SingleCountPerTransition(t *testing.T) {
	s, clock := newTestSession("squat", DefaultOptions())
	seq := concat(repeat(170, 8), repeat(60, 8), repeat(170, 40))

	results := feed(t, s, clock, time.Second, kneeFrames(seq))

	for _, r := range results[22:] {
		assert.Equal(t, 1, r.Counter)
		assert.Equal(t, exercise.StageUp, r.Stage)
	}
}

func TestSession_PullUpCountsOnFlexion(t *testing.T) {
	s, clock := newTestSession("pull-up", DefaultOptions())
	seq := concat(repeat(160, 8), repeat(75, 8), repeat(160, 8))

	results := feed(t, s, clock, time.Second, elbowFrames(seq, 170))

	assert.Equal(t, exercise.StageUp, results[0].Stage, "extended start is UP")
	assert.Equal(t, 0, results[13].Counter)
	assert.Equal(t, 1, results[14].Counter, "counted on reaching the flexed position")
	assert.Equal(t, exercise.StageDown, results[14].Stage)
	assert.Equal(t, 1.0, results[14].Progress)

	last := results[len(results)-1]
	assert.Equal(t, 1, last.Counter, "returning to extension must not count")
	assert.Equal(t, exercise.StageUp, last.Stage)
	assert.Equal(t, 0.0, last.Progress)
}

func TestSession_PushUp(t *testing.T) {
	seq := concat(repeat(170, 8), repeat(60, 8), repeat(170, 8))

	s, clock := newTestSession("push-up", DefaultOptions())
	results := feed(t, s, clock, time.Second, elbowFrames(seq, 170))
	assert.Equal(t, 1, results[len(results)-1].Counter)

	// sagging hips: the angle cycle completes but posture never qualifies
	s, clock = newTestSession("push-up", DefaultOptions())
	results = feed(t, s, clock, time.Second, elbowFrames(seq, 140))
	last := results[len(results)-1]
	assert.Equal(t, 0, last.Counter)
	assert.Equal(t, exercise.StageUp, last.Stage)
	assert.False(t, last.PostureOK)
}

func TestSession_SitUp(t *testing.T) {
	s, clock := newTestSession("sit-up", DefaultOptions())
	seq := concat(repeat(130, 8), repeat(60, 8), repeat(130, 8))
	frames := make([]angles.Frame, len(seq))
	for i, v := range seq {
		frames[i] = angles.Frame{angles.Abdomen: v, angles.Neck: 20}
	}

	results := feed(t, s, clock, time.Second, frames)
	assert.Equal(t, 0, results[21].Counter)
	assert.Equal(t, 1, results[22].Counter)
}

func TestSession_PostureGating(t *testing.T) {
	// Without smoothing the knees jump straight from 60 to 170, so good posture has
	// only held for two frames when the UP transition commits on the third.
	opts := DefaultOptions()
	opts.SmoothWindow = 1
	s, clock := newTestSession("squat", opts)
	seq := concat(repeat(170, 3), repeat(60, 3), repeat(170, 3))

	results := feed(t, s, clock, time.Second, kneeFrames(seq))

	assert.Equal(t, exercise.StageDown, results[5].Stage)
	for _, r := range results[:6] {
		if r.Stage == exercise.StageDown {
			assert.False(t, r.PostureOK)
		}
	}
	last := results[len(results)-1]
	assert.Equal(t, exercise.StageUp, last.Stage, "hysteresis cycle completed")
	assert.Equal(t, 0, last.Counter, "rep rejected because posture was not yet stable")
}

func TestSession_PostureStableCountResetsAfterTransition(t *testing.T) {
	opts := DefaultOptions()
	opts.SmoothWindow = 1
	s, clock := newTestSession("squat", opts)

	feed(t, s, clock, time.Second, kneeFrames(concat(repeat(170, 3), repeat(60, 3), repeat(170, 3))))
	st := s.tracker.states[exercise.NameSquat]
	// reset at the commit, then incremented once by the same frame's posture update
	assert.Equal(t, 1, st.postureStable)
	assert.Equal(t, 0, st.transitionStable)
}

func TestSession_Debounce(t *testing.T) {
	seq := concat(repeat(170, 8), repeat(60, 8), repeat(170, 8), repeat(60, 8), repeat(170, 8))

	// commits are 16 frames apart: 160ms at 10ms spacing, 1.6s at 100ms spacing
	s, clock := newTestSession("squat", DefaultOptions())
	results := feed(t, s, clock, 10*time.Millisecond, kneeFrames(seq))
	assert.Equal(t, 1, results[len(results)-1].Counter)
	assertMonotonic(t, results)

	s, clock = newTestSession("squat", DefaultOptions())
	results = feed(t, s, clock, 100*time.Millisecond, kneeFrames(seq))
	assert.Equal(t, 2, results[len(results)-1].Counter)
	assertMonotonic(t, results)
}

func TestSession_DebounceDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.MinRepInterval = 0
	seq := concat(repeat(170, 8), repeat(60, 8), repeat(170, 8), repeat(60, 8), repeat(170, 8))

	s, clock := newTestSession("squat", opts)
	results := feed(t, s, clock, 0, kneeFrames(seq))
	assert.Equal(t, 2, results[len(results)-1].Counter)
}

func TestSession_AbsentInput(t *testing.T) {
	for _, name := range exercise.Names() {
		t.Run(name, func(t *testing.T) {
			s, clock := newTestSession(name, DefaultOptions())
			frames := make([]angles.Frame, 30)
			for i := range frames {
				if i%2 == 0 {
					frames[i] = angles.Frame{}
				}
			}

			for _, r := range feed(t, s, clock, 33*time.Millisecond, frames) {
				assert.Equal(t, FrameResult{Counter: 0, Stage: exercise.StageUnset}, r)
			}
			assert.Empty(t, s.SmoothedAngles())
		})
	}
}

func TestTracker_AbsentDrivingAngleLeavesStateUntouched(t *testing.T) {
	clock := timeutil.NewManualClock(testStart)
	tr := New(DefaultOptions(), clock, testLogger())
	st := tr.states[exercise.NameSitUp]

	// sit-up follows the abdomen; feeding only knees leaves it absent
	tr.UpdateAngles(angles.Frame{angles.LeftKnee: 30})
	st.transitionStable = 2
	st.postureStable = 1

	res, err := tr.CalculateExercise("sit-up", 4, exercise.StageDown)
	require.NoError(t, err)
	assert.Equal(t, FrameResult{Counter: 4, Stage: exercise.StageDown}, res)
	assert.Equal(t, 2, st.transitionStable)
	assert.Equal(t, 1, st.postureStable)
}

func TestTracker_CalculateExercise_CaseInsensitive(t *testing.T) {
	clock := timeutil.NewManualClock(testStart)
	tr := New(DefaultOptions(), clock, testLogger())
	tr.UpdateAngles(angles.Frame{angles.LeftKnee: 170, angles.RightKnee: 170})

	res, err := tr.CalculateExercise("SQUAT", 0, exercise.StageUnset)
	require.NoError(t, err)
	assert.Equal(t, exercise.StageUp, res.Stage)
	assert.True(t, res.PostureOK)
	assert.Equal(t, 1.0, res.Progress)
}

func TestTracker_CalculateExercise_UnknownType(t *testing.T) {
	clock := timeutil.NewManualClock(testStart)
	tr := New(DefaultOptions(), clock, testLogger())
	tr.UpdateAngles(angles.Frame{angles.LeftKnee: 170, angles.RightKnee: 170})

	res, err := tr.CalculateExercise("walk", 7, exercise.StageDown)
	require.NoError(t, err)
	assert.Equal(t, FrameResult{Counter: 7, Stage: exercise.StageDown}, res)
}

func TestTracker_CalculateExercise_RejectsMisuse(t *testing.T) {
	clock := timeutil.NewManualClock(testStart)
	tr := New(DefaultOptions(), clock, testLogger())
	tr.UpdateAngles(angles.Frame{angles.LeftKnee: 170, angles.RightKnee: 170})

	_, err := tr.CalculateExercise("squat", -1, exercise.StageUp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNegativeCounter))

	_, err = tr.CalculateExercise("squat", 0, exercise.Stage(42))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidStage))

	// rejected calls must not have initialised anything
	assert.Equal(t, repState{}, *tr.states[exercise.NameSquat])
}

func TestTracker_VariantsKeepSeparateState(t *testing.T) {
	clock := timeutil.NewManualClock(testStart)
	tr := New(DefaultOptions(), clock, testLogger())
	tr.UpdateAngles(angles.Frame{angles.LeftKnee: 60, angles.RightKnee: 60, angles.Abdomen: 170})

	_, err := tr.CalculateExercise("squat", 0, exercise.StageUp)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.states[exercise.NameSquat].transitionStable)
	assert.Equal(t, 0, tr.states[exercise.NamePushUp].transitionStable)

	tr.Reset()
	assert.Equal(t, repState{}, *tr.states[exercise.NameSquat])
	assert.Empty(t, tr.SmoothedAngles())
}
