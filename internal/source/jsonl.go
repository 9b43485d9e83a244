package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/lowaak/smart-trainer/rep-counter/internal/angles"
)

const maxLineBytes = 1 << 20

type jsonlRecord struct {
	T      *float64            `json:"t"`
	Angles map[string]*float64 `json:"angles"`
}

// JSONL reads one JSON object per line:
//
//	{"t": 0.033, "angles": {"left_knee": 171.2, "right_knee": 169.8, "neck": null}}
//
// Missing and null angles are absent. Blank lines are skipped.
type JSONL struct {
	rc      io.ReadCloser
	scanner *bufio.Scanner
	line    int
	index   int
	clock   clock
}

// NewJSONL wraps rc; Close closes it
func NewJSONL(rc io.ReadCloser) *JSONL {
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &JSONL{rc: rc, scanner: scanner}
}

func (s *JSONL) Next() (Frame, error) {
	for s.scanner.Scan() {
		s.line++
		raw := bytes.TrimSpace(s.scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		frame, err := s.decode(raw)
		if err != nil {
			return Frame{}, fmt.Errorf("line %d: %w", s.line, err)
		}
		s.index++
		return frame, nil
	}
	if err := s.scanner.Err(); err != nil {
		return Frame{}, fmt.Errorf("line %d: %w", s.line+1, err)
	}
	return Frame{}, io.EOF
}

func (s *JSONL) decode(raw []byte) (Frame, error) {
	var rec jsonlRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Frame{}, fmt.Errorf("decoding frame: %w", err)
	}

	frame := Frame{Index: s.index, Angles: make(angles.Frame, len(rec.Angles))}
	for name, v := range rec.Angles {
		j, ok := angles.ParseJoint(name)
		if !ok {
			return Frame{}, fmt.Errorf("%w %q", ErrUnknownJoint, name)
		}
		if v != nil {
			frame.Angles[j] = *v
		}
	}

	if rec.T != nil {
		d, err := s.clock.stamp(*rec.T)
		if err != nil {
			return Frame{}, err
		}
		frame.Offset, frame.HasTime = d, true
	}
	return frame, nil
}

func (s *JSONL) Close() error {
	return s.rc.Close()
}
