// Package source reads recorded joint-angle streams, one frame at a time.
package source

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lowaak/smart-trainer/rep-counter/internal/angles"
)

var (
	// ErrUnknownJoint is returned for a joint name outside angles.AllJoints
	ErrUnknownJoint = errors.New("unknown joint")

	// ErrTimestamp is returned for negative, decreasing or out-of-range frame timestamps
	ErrTimestamp = errors.New("bad timestamp")
)

// Frame is one recorded frame
type Frame struct {
	Index   int           // 0-based position in the stream
	Offset  time.Duration // time since the start of the recording, valid when HasTime
	HasTime bool
	Angles  angles.Frame // empty when no pose was detected
}

// Source yields frames in order. Next returns io.EOF after the last frame.
type Source interface {
	Next() (Frame, error)
	Close() error
}

// Format of a recorded stream
type Format string

const (
	FormatAuto  Format = "auto"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatAuto, FormatJSONL, FormatCSV:
		return f, nil
	case "":
		return FormatAuto, nil
	default:
		return "", fmt.Errorf("unknown input format %q (want auto, jsonl or csv)", name)
	}
}

// DetectFormat picks a format from the file extension, defaulting to JSON Lines
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	default:
		return FormatJSONL
	}
}

// Open opens the recording at path; "-" reads standard input
func Open(path string, format Format) (Source, error) {
	if format == FormatAuto {
		format = DetectFormat(path)
	}

	var rc io.ReadCloser
	if path == "-" {
		rc = io.NopCloser(os.Stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening input: %w", err)
		}
		rc = f
	}

	switch format {
	case FormatJSONL:
		return NewJSONL(rc), nil
	case FormatCSV:
		return NewCSV(rc), nil
	default:
		rc.Close()
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
}

// maxSeconds is the largest timestamp representable as a time.Duration
const maxSeconds = float64(math.MaxInt64) / float64(time.Second)

// clock tracks the last timestamp seen so readers can reject time travel
type clock struct {
	last    time.Duration
	hasLast bool
}

// stamp converts seconds since the start of the recording to a duration
func (c *clock) stamp(seconds float64) (time.Duration, error) {
	if seconds < 0 || math.IsNaN(seconds) || seconds >= maxSeconds {
		return 0, fmt.Errorf("%w: t=%v", ErrTimestamp, seconds)
	}
	d := time.Duration(seconds * float64(time.Second))
	if c.hasLast && d < c.last {
		return 0, fmt.Errorf("%w: t=%v goes back in time", ErrTimestamp, seconds)
	}
	c.last, c.hasLast = d, true
	return d, nil
}
