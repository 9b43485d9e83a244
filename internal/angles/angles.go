// Package angles defines the tracked joints and the per-frame joint angles
// read by the counting engine. Absent angles are reported comma-ok.
package angles

import (
	"math"
	"strings"
)

// Joint identifies one of the joint angles supplied per frame by the pose estimator
type Joint string

const (
	LeftElbow  Joint = "left_elbow"
	RightElbow Joint = "right_elbow"
	LeftKnee   Joint = "left_knee"
	RightKnee  Joint = "right_knee"
	Abdomen    Joint = "abdomen"
	Neck       Joint = "neck"
)

// AllJoints is the fixed set of joints, in display order
var AllJoints = []Joint{
	LeftElbow,
	RightElbow,
	LeftKnee,
	RightKnee,
	Abdomen,
	Neck,
}

// ParseJoint returns the joint with the given name, ignoring case and surrounding space
func ParseJoint(name string) (Joint, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, j := range AllJoints {
		if string(j) == name {
			return j, true
		}
	}
	return "", false
}

// Reader gives comma-ok access to joint angles in degrees.
// ok is false when the angle is absent for the current frame.
type Reader interface {
	Angle(j Joint) (degrees float64, ok bool)
}

// Frame holds the angles of one frame. A joint with no entry is absent.
type Frame map[Joint]float64

// Angle returns the angle for j. Non-finite values count as absent.
func (f Frame) Angle(j Joint) (float64, bool) {
	v, ok := f[j]
	if !ok || !Valid(v) {
		return 0, false
	}
	return v, true
}

// Joints returns the joints present in the frame, in AllJoints order
func (f Frame) Joints() []Joint {
	result := make([]Joint, 0, len(f))
	for _, j := range AllJoints {
		if _, ok := f.Angle(j); ok {
			result = append(result, j)
		}
	}
	return result
}

// Valid reports whether v can be used as an angle reading
func Valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Mean averages whichever of the given joints are present.
// ok is false when none of them are.
func Mean(r Reader, joints ...Joint) (float64, bool) {
	var sum float64
	var n int
	for _, j := range joints {
		if v, ok := r.Angle(j); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
