package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/lowaak/smart-trainer/rep-counter/internal/config"
	"github.com/lowaak/smart-trainer/rep-counter/internal/dashboard"
	"github.com/lowaak/smart-trainer/rep-counter/internal/logging"
	"github.com/lowaak/smart-trainer/rep-counter/internal/runner"
	"github.com/lowaak/smart-trainer/rep-counter/internal/source"
	"github.com/lowaak/smart-trainer/rep-counter/internal/timeutil"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "rep-counter: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("rep-counter", pflag.ContinueOnError)
	config.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}

	// the dashboard owns the terminal, so its log panel replaces stdout
	logOpts := logging.Options{File: cfg.Log.File, Stdout: cfg.Log.Stdout && !cfg.UI}
	var logLines chan string
	if cfg.UI {
		logLines = make(chan string, 64)
		logOpts.Extra = []io.Writer{logging.NewLineWriter(logLines)}
	}
	logger, closer := logging.New(logOpts)
	defer closer.Close()

	src, err := source.Open(cfg.Input.Path, cfg.Format())
	if err != nil {
		return err
	}
	r := runner.New(src, cfg.Exercise, cfg.RunnerOptions(), timeutil.RealClock{}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var res runner.Result
	if cfg.UI {
		res, err = runDashboard(ctx, r, cfg.Exercise, logger, logLines)
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
	} else {
		r.Reps().Listen(func(u runner.Update) {
			fmt.Printf("rep %d at %s\n", u.Result.Counter, u.Timestamp.Format("15:04:05.000"))
		})
		res.Report, res.Err = r.Run(ctx)
	}

	fmt.Print(res.Report.String())
	if errors.Is(res.Err, context.Canceled) {
		return nil
	}
	return res.Err
}

func runDashboard(ctx context.Context, r *runner.Runner, exercise string, logger *log.Logger, logLines <-chan string) (runner.Result, error) {
	frames := make(chan runner.Update, 1)
	off := r.Frames().Listen(frames)
	defer off()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := r.Start(runCtx)

	res, finished, err := dashboard.New(logger, exercise).Run(ctx, frames, logLines, done)
	if !finished {
		cancel()
		res = <-done
	}
	return res, err
}
