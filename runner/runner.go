// Package runner drives a best-effort sequential pass over a batch of files.
// Each file is handled and released before the next one is opened; a failing
// file is reported and counted, never fatal to the batch.
package runner

import (
	"log/slog"
	"time"

	"github.com/dhcgn/eml-tools/progress"
	"github.com/dhcgn/eml-tools/stats"
)

type HandlerFunc func(path string) error

type Runner struct {
	logger    *slog.Logger
	collector *stats.Collector
	bar       *progress.Bar
	started   time.Time
}

// New creates a Runner. bar may be nil when no progress display is wanted.
func New(logger *slog.Logger, bar *progress.Bar) *Runner {
	return &Runner{
		logger:    logger,
		collector: stats.NewCollector(),
		bar:       bar,
		started:   time.Now(),
	}
}

// Emit records one event with the collector and the progress bar. Errors are
// logged here unless an active bar prints them itself.
func (r *Runner) Emit(evt stats.Event) {
	r.collector.Apply(evt)
	if r.bar != nil {
		r.bar.Update(evt)
	}
	if evt.Type == stats.EventTypeError && evt.Err != nil && (r.bar == nil || !r.bar.Enabled()) {
		r.logger.Error("file failed", "path", evt.Path, "err", evt.Err)
	}
}

// Run hands every path to fn in order and returns the final summary.
func (r *Runner) Run(paths []string, fn HandlerFunc) stats.Summary {
	for _, path := range paths {
		r.Emit(stats.Event{Type: stats.EventTypeScanned, Path: path})
		if err := fn(path); err != nil {
			r.Emit(stats.Event{Type: stats.EventTypeError, Path: path, Err: err})
		}
	}
	return r.Finish()
}

// Finish stops the progress bar, logs the summary and returns it. Callers
// that feed the runner themselves (mbox mode) call it directly.
func (r *Runner) Finish() stats.Summary {
	if r.bar != nil {
		r.bar.Stop()
	}

	summary := r.collector.Snapshot()
	attrs := append(summary.LogAttrs(), "duration", time.Since(r.started))
	r.logger.Info("batch completed", attrs...)
	return summary
}
