package dashboard

import (
	"fmt"
	"math"
	"strings"

	"github.com/rivo/tview"

	"github.com/lowaak/smart-trainer/rep-counter/internal/exercise"
	"github.com/lowaak/smart-trainer/rep-counter/internal/runner"
)

const progressWidth = 20

func formatWaiting() string {
	return "\n  [gray]Waiting for frames...[white]"
}

// progressBar renders p in [0,1] as a bar of width cells
func progressBar(p float64, width int) string {
	if math.IsNaN(p) || p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	filled := int(math.Round(p * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func formatStage(s exercise.Stage) string {
	switch s {
	case exercise.StageUp:
		return "[green]UP[white]"
	case exercise.StageDown:
		return "[blue]DOWN[white]"
	default:
		return "[gray]--[white]"
	}
}

func formatPosture(ok bool) string {
	if ok {
		return "[green]Good[white]"
	}
	return "[red]Bad[white]"
}

func formatMetrics(u runner.Update) string {
	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Reps:      [yellow]%d[white]\n\n", u.Result.Counter)
	fmt.Fprintf(&b, "  Stage:     %s\n\n", formatStage(u.Result.Stage))
	fmt.Fprintf(&b, "  Posture:   %s\n\n", formatPosture(u.Result.PostureOK))
	fmt.Fprintf(&b, "  Progress:  %s %3.0f%%\n\n", progressBar(u.Result.Progress, progressWidth), u.Result.Progress*100)
	fmt.Fprintf(&b, "  [gray]frame %d[white]", u.Index)
	return b.String()
}

// formatAngles lists the exercise's joints, or every smoothed joint when it has none
func formatAngles(u runner.Update) string {
	joints := u.Joints
	if len(joints) == 0 {
		joints = u.Smoothed.Joints()
	}
	if len(joints) == 0 {
		return "\n  [gray]No angles for this exercise[white]"
	}
	var b strings.Builder
	for _, j := range joints {
		if v, ok := u.Smoothed.Angle(j); ok {
			fmt.Fprintf(&b, "  %-12s [yellow]%6.1f°[white]\n", j, v)
		} else {
			fmt.Fprintf(&b, "  %-12s [gray]    --[white]\n", j)
		}
	}
	return b.String()
}

func formatResult(res runner.Result) string {
	text := res.Report.String()
	if res.Err != nil {
		text += fmt.Sprintf("\n[red]Stopped: %s[white]", tview.Escape(res.Err.Error()))
	}
	return text + "\n[gray]Press Esc to exit[white]"
}
