// Package config loads command-line flags, an optional config file and
// REPCOUNTER_* environment variables into a Config.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lowaak/smart-trainer/rep-counter/internal/exercise"
	"github.com/lowaak/smart-trainer/rep-counter/internal/runner"
	"github.com/lowaak/smart-trainer/rep-counter/internal/smoothing"
	"github.com/lowaak/smart-trainer/rep-counter/internal/source"
	"github.com/lowaak/smart-trainer/rep-counter/internal/tracker"
)

// EnvPrefix prefixes every environment override, e.g. REPCOUNTER_COUNTING_STABLE_FRAMES
const EnvPrefix = "REPCOUNTER"

// DefaultLogFile is the rotating log written when no --log-file is given
const DefaultLogFile = "rep-counter.log"

// Config is the run configuration after all sources are merged
type Config struct {
	Exercise string         `mapstructure:"exercise"`
	Input    InputConfig    `mapstructure:"input"`
	Counting CountingConfig `mapstructure:"counting"`
	UI       bool           `mapstructure:"ui"`
	Log      LogConfig      `mapstructure:"log"`
}

// InputConfig selects the recorded angle stream and how it is replayed
type InputConfig struct {
	Path   string  `mapstructure:"path"`
	Format string  `mapstructure:"format"`
	FPS    float64 `mapstructure:"fps"`
	Pace   bool    `mapstructure:"pace"`
}

// CountingConfig overrides the tracker tuning
type CountingConfig struct {
	Window         int           `mapstructure:"window"`
	StableFrames   int           `mapstructure:"stable_frames"`
	MinRepInterval time.Duration `mapstructure:"min_rep_interval"`
}

// LogConfig controls where log output goes
type LogConfig struct {
	File   string `mapstructure:"file"`
	Stdout bool   `mapstructure:"stdout"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"exercise":         "exercise",
	"input":            "input.path",
	"format":           "input.format",
	"fps":              "input.fps",
	"pace":             "input.pace",
	"window":           "counting.window",
	"stable-frames":    "counting.stable_frames",
	"min-rep-interval": "counting.min_rep_interval",
	"ui":               "ui",
	"log-file":         "log.file",
	"log-stdout":       "log.stdout",
}

// BindFlags defines the command-line flags on fs
func BindFlags(fs *pflag.FlagSet) {
	fs.StringP("exercise", "e", "", "exercise to count: "+strings.Join(exercise.Names(), ", "))
	fs.StringP("input", "i", "-", "recorded angle stream, - for stdin")
	fs.String("format", string(source.FormatAuto), "input format: auto, jsonl or csv")
	fs.Float64("fps", runner.DefaultFPS, "frame rate assumed for frames without a timestamp")
	fs.Bool("pace", false, "replay the recording in real time")
	fs.Int("window", smoothing.DefaultWindow, "readings averaged per joint")
	fs.Int("stable-frames", tracker.DefaultStableFrames, "consecutive frames a transition must hold")
	fs.Duration("min-rep-interval", tracker.DefaultMinRepInterval, "minimum time between two counted reps")
	fs.Bool("ui", false, "show the live terminal dashboard")
	fs.String("log-file", DefaultLogFile, "log file, empty to disable")
	fs.Bool("log-stdout", false, "also log to stdout (ignored with --ui)")
	fs.StringP("config", "c", "", "config file (yaml, json or toml)")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("exercise", "")
	v.SetDefault("input.path", "-")
	v.SetDefault("input.format", string(source.FormatAuto))
	v.SetDefault("input.fps", runner.DefaultFPS)
	v.SetDefault("input.pace", false)
	v.SetDefault("counting.window", smoothing.DefaultWindow)
	v.SetDefault("counting.stable_frames", tracker.DefaultStableFrames)
	v.SetDefault("counting.min_rep_interval", tracker.DefaultMinRepInterval)
	v.SetDefault("ui", false)
	v.SetDefault("log.file", DefaultLogFile)
	v.SetDefault("log.stdout", false)
}

// Load resolves the configuration from fs (already parsed), the config file it
// names and the environment. Precedence: flag, env, file, default.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag --%s: %w", name, err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.Exercise = strings.ToLower(strings.TrimSpace(c.Exercise))
	if c.Exercise == "" {
		return fmt.Errorf("exercise is required")
	}
	if _, ok := exercise.Lookup(c.Exercise); !ok {
		return fmt.Errorf("unknown exercise %q (want one of %s)", c.Exercise, strings.Join(exercise.Names(), ", "))
	}
	if c.Input.Path == "" {
		return fmt.Errorf("input.path is required")
	}
	if _, err := source.ParseFormat(c.Input.Format); err != nil {
		return err
	}
	if err := c.RunnerOptions().Validate(); err != nil {
		return err
	}
	return nil
}

// Format returns the parsed input format
func (c *Config) Format() source.Format {
	f, _ := source.ParseFormat(c.Input.Format)
	return f
}

// RunnerOptions maps the config onto runner options
func (c *Config) RunnerOptions() runner.Options {
	return runner.Options{
		Tracker: tracker.Options{
			SmoothWindow:   c.Counting.Window,
			StableFrames:   c.Counting.StableFrames,
			MinRepInterval: c.Counting.MinRepInterval,
		},
		FPS:  c.Input.FPS,
		Pace: c.Input.Pace,
	}
}
