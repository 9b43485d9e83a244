// Package exercise describes the supported exercise variants: which angle drives the
// rep count, the calibration thresholds, and the posture heuristics (side view).
package exercise

import (
	"math"
	"strings"

	"github.com/lowaak/smart-trainer/rep-counter/internal/angles"
)

// Variant is everything the rep state machine needs to know about one exercise
type Variant interface {
	// Name is the canonical lower-case exercise identifier
	Name() string

	// DrivingAngle is the smoothed angle the rep cycle follows
	DrivingAngle(r angles.Reader) (float64, bool)

	// Thresholds returns the calibration angles for the driving angle
	Thresholds() Thresholds

	// PostureOK evaluates the posture heuristic against smoothed angles
	PostureOK(r angles.Reader) bool

	// DebugJoints lists the joints worth showing next to the live count
	DebugJoints() []angles.Joint
}

// Exercise identifiers
const (
	NameSquat  = "squat"
	NamePushUp = "push-up"
	NamePullUp = "pull-up"
	NameSitUp  = "sit-up"
)

// Posture limits, degrees
const (
	squatMinKnee       = 90.0
	pushUpMinAbdomen   = 150.0
	pushUpMaxElbowDiff = 30.0
	sitUpMinAbdomen    = 100.0
	sitUpMaxNeck       = 40.0
	pullUpMinAbdomen   = 100.0
)

type squat struct{}

func (squat) Name() string { return NameSquat }

func (squat) DrivingAngle(r angles.Reader) (float64, bool) {
	return angles.Mean(r, angles.LeftKnee, angles.RightKnee)
}

func (squat) Thresholds() Thresholds { return Thresholds{Down: 70, Up: 160} }

// PostureOK: the knees never close below 90 degrees
func (squat) PostureOK(r angles.Reader) bool {
	knee, ok := angles.Mean(r, angles.LeftKnee, angles.RightKnee)
	return ok && knee >= squatMinKnee
}

func (squat) DebugJoints() []angles.Joint {
	return []angles.Joint{angles.LeftKnee, angles.RightKnee}
}

type pushUp struct{}

func (pushUp) Name() string { return NamePushUp }

func (pushUp) DrivingAngle(r angles.Reader) (float64, bool) {
	return angles.Mean(r, angles.LeftElbow, angles.RightElbow)
}

func (pushUp) Thresholds() Thresholds { return Thresholds{Down: 70, Up: 160} }

// PostureOK: a straight plank, and both arms bending together when both are visible
func (pushUp) PostureOK(r angles.Reader) bool {
	abdomen, ok := r.Angle(angles.Abdomen)
	if !ok || abdomen < pushUpMinAbdomen {
		return false
	}
	left, lok := r.Angle(angles.LeftElbow)
	right, rok := r.Angle(angles.RightElbow)
	if lok && rok && math.Abs(left-right) > pushUpMaxElbowDiff {
		return false
	}
	return true
}

func (pushUp) DebugJoints() []angles.Joint {
	return []angles.Joint{angles.LeftElbow, angles.RightElbow}
}

type pullUp struct{}

func (pullUp) Name() string { return NamePullUp }

func (pullUp) DrivingAngle(r angles.Reader) (float64, bool) {
	return angles.Mean(r, angles.LeftElbow, angles.RightElbow)
}

// Thresholds: extended below the bar at 150, chin over the bar at 80
func (pullUp) Thresholds() Thresholds { return Thresholds{Down: 150, Up: 80, Inverted: true} }

func (pullUp) PostureOK(r angles.Reader) bool {
	abdomen, ok := r.Angle(angles.Abdomen)
	if !ok {
		return false
	}
	if _, ok := angles.Mean(r, angles.LeftElbow, angles.RightElbow); !ok {
		return false
	}
	return abdomen >= pullUpMinAbdomen
}

func (pullUp) DebugJoints() []angles.Joint {
	return []angles.Joint{angles.LeftElbow, angles.RightElbow}
}

type sitUp struct{}

func (sitUp) Name() string { return NameSitUp }

func (sitUp) DrivingAngle(r angles.Reader) (float64, bool) {
	return r.Angle(angles.Abdomen)
}

func (sitUp) Thresholds() Thresholds { return Thresholds{Down: 70, Up: 120} }

// PostureOK: torso open enough, and the chin not pulled into the chest
func (sitUp) PostureOK(r angles.Reader) bool {
	abdomen, ok := r.Angle(angles.Abdomen)
	if !ok || abdomen < sitUpMinAbdomen {
		return false
	}
	if neck, ok := r.Angle(angles.Neck); ok && neck > sitUpMaxNeck {
		return false
	}
	return true
}

func (sitUp) DebugJoints() []angles.Joint {
	return []angles.Joint{angles.Abdomen}
}

// Squat, PushUp, PullUp and SitUp are the supported variants
var (
	Squat  Variant = squat{}
	PushUp Variant = pushUp{}
	PullUp Variant = pullUp{}
	SitUp  Variant = sitUp{}
)

// AllVariants is the registry of supported variants, in menu order
var AllVariants = []Variant{Squat, PushUp, PullUp, SitUp}

// Lookup finds a variant by name, ignoring case and surrounding whitespace
func Lookup(name string) (Variant, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, v := range AllVariants {
		if v.Name() == key {
			return v, true
		}
	}
	return nil, false
}

// Names returns the identifiers of all variants
func Names() []string {
	names := make([]string, 0, len(AllVariants))
	for _, v := range AllVariants {
		names = append(names, v.Name())
	}
	return names
}
