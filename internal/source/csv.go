package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lowaak/smart-trainer/rep-counter/internal/angles"
)

const timeColumn = "t"

// CSV reads a header row naming the columns, then one frame per row:
//
//	t,left_knee,right_knee
//	0.000,171.2,169.8
//	0.033,,168.0
//
// The t column is optional and columns may come in any order. Empty cells are absent.
// Lines starting with # are comments.
type CSV struct {
	rc      io.ReadCloser
	reader  *csv.Reader
	columns []angles.Joint // "" for the time column
	timeCol int            // -1 without one
	index   int
	clock   clock
}

// NewCSV wraps rc; Close closes it
func NewCSV(rc io.ReadCloser) *CSV {
	r := csv.NewReader(rc)
	r.Comment = '#'
	r.TrimLeadingSpace = true
	return &CSV{rc: rc, reader: r, timeCol: -1}
}

func (s *CSV) Next() (Frame, error) {
	if s.columns == nil {
		if err := s.readHeader(); err != nil {
			return Frame{}, err
		}
	}

	record, err := s.reader.Read()
	if err == io.EOF {
		return Frame{}, io.EOF
	}
	if err != nil {
		return Frame{}, fmt.Errorf("reading csv: %w", err)
	}

	line, _ := s.reader.FieldPos(0)
	frame := Frame{Index: s.index, Angles: make(angles.Frame, len(record))}
	for i, cell := range record {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return Frame{}, fmt.Errorf("line %d column %d: parsing %q: %w", line, i+1, cell, err)
		}
		if i == s.timeCol {
			d, err := s.clock.stamp(v)
			if err != nil {
				return Frame{}, fmt.Errorf("line %d: %w", line, err)
			}
			frame.Offset, frame.HasTime = d, true
			continue
		}
		frame.Angles[s.columns[i]] = v
	}
	s.index++
	return frame, nil
}

func (s *CSV) readHeader() error {
	header, err := s.reader.Read()
	if err == io.EOF {
		return io.EOF
	}
	if err != nil {
		return fmt.Errorf("reading csv header: %w", err)
	}

	line, _ := s.reader.FieldPos(0)
	columns := make([]angles.Joint, len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if seen[name] {
			return fmt.Errorf("line %d: duplicate column %q", line, name)
		}
		seen[name] = true

		if name == timeColumn {
			s.timeCol = i
			continue
		}
		j, ok := angles.ParseJoint(name)
		if !ok {
			return fmt.Errorf("line %d: %w %q", line, ErrUnknownJoint, name)
		}
		columns[i] = j
	}
	s.columns = columns
	return nil
}

func (s *CSV) Close() error {
	return s.rc.Close()
}
