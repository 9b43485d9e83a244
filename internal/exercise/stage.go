package exercise

// Stage is the coarse phase of a rep cycle.
// StageUp is the extended position and StageDown the flexed one for every variant.
type Stage int

const (
	StageUnset Stage = iota // no reading seen yet
	StageUp
	StageDown
)

// String returns the display label of the stage
func (s Stage) String() string {
	switch s {
	case StageUp:
		return "UP"
	case StageDown:
		return "DOWN"
	default:
		return "UNSET"
	}
}

// Opposite returns the stage a transition from s leads to.
// StageUnset has no opposite and is returned unchanged.
func (s Stage) Opposite() Stage {
	switch s {
	case StageUp:
		return StageDown
	case StageDown:
		return StageUp
	default:
		return StageUnset
	}
}

// ParseStage is the inverse of String
func ParseStage(label string) (Stage, bool) {
	switch label {
	case "UP":
		return StageUp, true
	case "DOWN":
		return StageDown, true
	case "UNSET", "":
		return StageUnset, true
	}
	return StageUnset, false
}
