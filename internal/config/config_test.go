package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/smart-trainer/rep-counter/internal/source"
)

func parse(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("rep-counter", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(parse(t, "--exercise", "Squat"))
	require.NoError(t, err)

	assert.Equal(t, "squat", cfg.Exercise)
	assert.Equal(t, "-", cfg.Input.Path)
	assert.Equal(t, source.FormatAuto, cfg.Format())
	assert.Equal(t, 30.0, cfg.Input.FPS)
	assert.False(t, cfg.Input.Pace)
	assert.Equal(t, 5, cfg.Counting.Window)
	assert.Equal(t, 3, cfg.Counting.StableFrames)
	assert.Equal(t, 600*time.Millisecond, cfg.Counting.MinRepInterval)
	assert.False(t, cfg.UI)
	assert.Equal(t, DefaultLogFile, cfg.Log.File)

	opts := cfg.RunnerOptions()
	assert.Equal(t, 5, opts.Tracker.SmoothWindow)
	assert.Equal(t, 600*time.Millisecond, opts.Tracker.MinRepInterval)
}

func TestLoad_Flags(t *testing.T) {
	cfg, err := Load(parse(t,
		"-e", "pull-up", "-i", "session.csv", "--format", "csv", "--fps", "60", "--pace",
		"--window", "3", "--stable-frames", "2", "--min-rep-interval", "1s", "--ui", "--log-file", "",
	))
	require.NoError(t, err)

	assert.Equal(t, "pull-up", cfg.Exercise)
	assert.Equal(t, "session.csv", cfg.Input.Path)
	assert.Equal(t, source.FormatCSV, cfg.Format())
	assert.Equal(t, 60.0, cfg.Input.FPS)
	assert.True(t, cfg.Input.Pace)
	assert.Equal(t, 3, cfg.Counting.Window)
	assert.Equal(t, 2, cfg.Counting.StableFrames)
	assert.Equal(t, time.Second, cfg.Counting.MinRepInterval)
	assert.True(t, cfg.UI)
	assert.Empty(t, cfg.Log.File)
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rep-counter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
exercise: sit-up
input:
  fps: 25
counting:
  window: 7
  stable_frames: 4
  min_rep_interval: 800ms
`), 0o644))

	t.Setenv("REPCOUNTER_COUNTING_STABLE_FRAMES", "6")
	t.Setenv("REPCOUNTER_COUNTING_WINDOW", "9")

	cfg, err := Load(parse(t, "--config", path, "--window", "2"))
	require.NoError(t, err)

	assert.Equal(t, "sit-up", cfg.Exercise, "file over default")
	assert.Equal(t, 25.0, cfg.Input.FPS, "file over default")
	assert.Equal(t, 800*time.Millisecond, cfg.Counting.MinRepInterval, "file over default")
	assert.Equal(t, 6, cfg.Counting.StableFrames, "env over file")
	assert.Equal(t, 2, cfg.Counting.Window, "flag over env")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"missing exercise", nil, "exercise is required"},
		{"unknown exercise", []string{"-e", "burpee"}, "unknown exercise"},
		{"bad format", []string{"-e", "squat", "--format", "xml"}, "unknown input format"},
		{"zero window", []string{"-e", "squat", "--window", "0"}, "smooth window"},
		{"zero stable frames", []string{"-e", "squat", "--stable-frames", "0"}, "stable frames"},
		{"negative interval", []string{"-e", "squat", "--min-rep-interval", "-1s"}, "min rep interval"},
		{"zero fps", []string{"-e", "squat", "--fps", "0"}, "fps"},
		{"empty input", []string{"-e", "squat", "-i", ""}, "input.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(parse(t, tt.args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(parse(t, "-e", "squat", "--config", filepath.Join(t.TempDir(), "nope.yaml")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}
