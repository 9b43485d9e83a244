package exercise

// Thresholds are the two calibration angles of a variant.
//
// For a normal variant Down < Up: the driving angle shrinks as the body flexes.
// Inverted variants (pull-up) have Down > Up, and the flexed top position has the
// smaller angle, so Down bounds the extended side and Up the flexed side.
type Thresholds struct {
	Down     float64
	Up       float64
	Inverted bool
}

// extended is the angle the driving angle must exceed to be in StageUp
func (t Thresholds) extended() float64 {
	if t.Inverted {
		return t.Down
	}
	return t.Up
}

// flexed is the angle the driving angle must drop below to be in StageDown
func (t Thresholds) flexed() float64 {
	if t.Inverted {
		return t.Up
	}
	return t.Down
}

// InitialStage picks the stage for the first reading of a session
func (t Thresholds) InitialStage(angle float64) Stage {
	if angle > t.extended() {
		return StageUp
	}
	return StageDown
}

// Reached reports whether angle lies past the threshold that leads into target
func (t Thresholds) Reached(angle float64, target Stage) bool {
	switch target {
	case StageUp:
		return angle > t.extended()
	case StageDown:
		return angle < t.flexed()
	}
	return false
}

// CompletesOn is the stage whose entry completes a rep: returning to the extended
// position for normal variants, reaching the flexed top position for inverted ones.
func (t Thresholds) CompletesOn() Stage {
	if t.Inverted {
		return StageDown
	}
	return StageUp
}

// Progress maps angle into [0,1] between the two thresholds
func (t Thresholds) Progress(angle float64) float64 {
	return Progress(angle, t.Down, t.Up, t.Inverted)
}

// Progress returns how far angle has travelled from down towards up, clamped to [0,1].
// With inverted set, down > up and the travel runs towards smaller angles.
func Progress(angle, down, up float64, inverted bool) float64 {
	if !inverted {
		if angle <= down {
			return 0
		}
		if angle >= up {
			return 1
		}
		return (angle - down) / (up - down)
	}
	if angle >= down {
		return 0
	}
	if angle <= up {
		return 1
	}
	return (down - angle) / (down - up)
}
