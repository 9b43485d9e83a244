// Package logging builds the *log.Logger shared by every component.
package logging

import (
	"io"
	"log"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const logSuffix = ".log"

// stdout is swapped in tests
var stdout io.Writer = os.Stdout

type Options struct {
	File   string      // rotating log file; ".log" is appended when missing, empty disables
	Stdout bool        // also write to stdout
	Extra  []io.Writer // further sinks, e.g. the dashboard log panel
}

// New returns a logger writing to every sink in opts. Close the returned Closer on
// exit to flush the log file. With no sink at all, output is discarded.
func New(opts Options) (*log.Logger, io.Closer) {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		name := opts.File
		if !strings.HasSuffix(name, logSuffix) {
			name += logSuffix
		}
		file := &lumberjack.Logger{
			Filename:  name,
			MaxSize:   50, // megabytes
			LocalTime: false,
			Compress:  true,
		}
		writers = append(writers, file)
		closer = file
	}
	if opts.Stdout {
		writers = append(writers, stdout)
	}
	writers = append(writers, opts.Extra...)

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}
	return log.New(out, "", log.LstdFlags|log.Lmicroseconds), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// LineWriter forwards each written log line to a channel without blocking.
// Lines are dropped while the reader is behind.
type LineWriter struct {
	lines chan<- string
}

func NewLineWriter(lines chan<- string) *LineWriter {
	if lines == nil {
		panic("LineWriter: channel cannot be nil")
	}
	return &LineWriter{lines: lines}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	// log.Logger makes exactly one Write per entry
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		select {
		case w.lines <- line:
		default:
		}
	}
	return len(p), nil
}
