// Package dashboard is the live terminal view of a session: reps, stage, posture,
// a progress bar, the smoothed angles that drive the count, and the log tail.
package dashboard

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/smart-trainer/rep-counter/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/rep-counter/internal/runner"
)

const (
	maxLogLines     = 200
	refreshInterval = 50 * time.Millisecond
)

// Dashboard owns the terminal while it runs
type Dashboard struct {
	logger   *log.Logger
	app      *tview.Application
	exercise string

	metricsPanel *tview.TextView
	anglesPanel  *tview.TextView
	reportPanel  *tview.TextView
	logView      *tview.TextView
	root         *tview.Flex

	mu       sync.Mutex
	latest   *runner.Update
	dirty    bool
	logLines []string
	result   *runner.Result
}

// New builds the widgets for a session of exercise
func New(logger *log.Logger, exercise string) *Dashboard {
	if logger == nil {
		panic("Dashboard: logger cannot be nil")
	}

	d := &Dashboard{
		logger:   logger,
		app:      tview.NewApplication(),
		exercise: exercise,
	}

	// widgets are redrawn by the refresh loop, not through SetChangedFunc
	d.metricsPanel = tview.NewTextView().SetDynamicColors(true)
	d.metricsPanel.SetBorder(true).SetTitle(" " + strings.ToUpper(exercise) + " ")
	d.metricsPanel.SetText(formatWaiting())

	d.anglesPanel = tview.NewTextView().SetDynamicColors(true)
	d.anglesPanel.SetBorder(true).SetTitle(" Angles ")

	d.reportPanel = tview.NewTextView().SetDynamicColors(true)
	d.reportPanel.SetBorder(true).SetTitle(" Report ")
	d.reportPanel.SetText(" [gray]Session running...[white]")

	d.logView = tview.NewTextView().SetDynamicColors(false).SetScrollable(true)
	d.logView.SetBorder(true).SetTitle(" Logs ")

	help := tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)
	help.SetText("[yellow]Esc[white]/[yellow]q[white] Quit")

	left := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(help, 1, 0, false).
		AddItem(d.metricsPanel, 0, 2, false).
		AddItem(d.anglesPanel, 0, 1, false).
		AddItem(d.reportPanel, 0, 2, false)

	d.root = tview.NewFlex().
		AddItem(left, 0, 1, false).
		AddItem(d.logView, 0, 1, false)

	d.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || (event.Key() == tcell.KeyRune && event.Rune() == 'q') {
			d.logger.Println("Dashboard: quit requested")
			d.app.Stop()
			return nil
		}
		return event
	})

	return d
}

// Run shows the dashboard until the user quits or ctx is cancelled. It consumes
// frame updates, log lines and the run result while it is up. The result is
// returned when the run finished before the dashboard closed; ok is false otherwise.
func (d *Dashboard) Run(ctx context.Context, frames <-chan runner.Update, logs <-chan string, results <-chan runner.Result) (result runner.Result, ok bool, err error) {
	if ctx.Err() != nil {
		return runner.Result{}, false, nil
	}

	pumpCtx, stop := context.WithCancel(ctx)
	exited := make(chan struct{})
	var wg sync.WaitGroup
	go_func_utils.SafeGoWait(&wg, d.logger, "dashboard pump", func() {
		d.pump(pumpCtx, frames, logs, results)
	})
	go_func_utils.SafeGoWait(&wg, d.logger, "dashboard refresh", func() {
		d.refreshLoop(pumpCtx)
	})
	go_func_utils.SafeGoWait(&wg, d.logger, "dashboard stop", func() {
		d.stopOnCancel(ctx, exited)
	})

	err = d.app.SetRoot(d.root, true).Run()

	close(exited)
	stop()
	wg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.result == nil {
		return runner.Result{}, false, err
	}
	return *d.result, true, err
}

// stopOnCancel stops the application once ctx is done. Stop is a no-op until
// Run has a screen, so it is retried until the application has exited.
func (d *Dashboard) stopOnCancel(ctx context.Context, exited <-chan struct{}) {
	select {
	case <-exited:
		return
	case <-ctx.Done():
	}

	d.logger.Println("Dashboard: context cancelled, closing")
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		d.app.Stop()
		select {
		case <-exited:
			return
		case <-ticker.C:
		}
	}
}

func (d *Dashboard) pump(ctx context.Context, frames <-chan runner.Update, logs <-chan string, results <-chan runner.Result) {
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-frames:
			d.mu.Lock()
			d.latest = &u
			d.dirty = true
			d.mu.Unlock()
		case line := <-logs:
			d.mu.Lock()
			d.logLines = appendLogLine(d.logLines, line)
			d.dirty = true
			d.mu.Unlock()
		case res, open := <-results:
			if !open {
				results = nil
				continue
			}
			d.mu.Lock()
			d.result = &res
			d.dirty = true
			d.mu.Unlock()
			results = nil
		}
	}
}

// refreshLoop renders pending changes at a bounded rate. Widgets are safe to
// update from this goroutine; Draw is a no-op once the app has stopped.
func (d *Dashboard) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if d.render() {
				d.app.Draw()
			}
		}
	}
}

// render copies the pending state into the widgets and reports whether anything changed
func (d *Dashboard) render() bool {
	d.mu.Lock()
	if !d.dirty {
		d.mu.Unlock()
		return false
	}
	d.dirty = false
	latest := d.latest
	logText := strings.Join(d.logLines, "\n")
	result := d.result
	d.mu.Unlock()

	if latest != nil {
		d.metricsPanel.SetText(formatMetrics(*latest))
		d.anglesPanel.SetText(formatAngles(*latest))
	}
	if result != nil {
		d.reportPanel.SetText(formatResult(*result))
	}
	d.logView.SetText(logText)
	d.logView.ScrollToEnd()
	return true
}

func appendLogLine(lines []string, line string) []string {
	lines = append(lines, line)
	if len(lines) > maxLogLines {
		lines = lines[len(lines)-maxLogLines:]
	}
	return lines
}
