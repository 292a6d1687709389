// Package progress renders a progress bar for long rename batches.
package progress

import (
	"path/filepath"

	"github.com/pterm/pterm"

	"github.com/dhcgn/eml-tools/stats"
)

// Bar wraps a pterm progress bar driven by stats events.
type Bar struct {
	pb      *pterm.ProgressbarPrinter
	total   int
	enabled bool
}

// New creates a progress bar. It is only shown at the info log level and for
// batches of more than one file; otherwise all methods are no-ops.
func New(total int, title, logLevel string) *Bar {
	bar := &Bar{
		total:   total,
		enabled: logLevel == "info" && total > 1,
	}

	if bar.enabled {
		pb, _ := pterm.DefaultProgressbar.
			WithTotal(total).
			WithTitle(title).
			Start()
		bar.pb = pb
	}

	return bar
}

// Enabled reports whether the bar is actually rendering.
func (b *Bar) Enabled() bool {
	return b.enabled
}

// Update advances the bar for each scanned file and prints errors above it.
func (b *Bar) Update(evt stats.Event) {
	if !b.enabled || b.pb == nil {
		return
	}

	switch evt.Type {
	case stats.EventTypeScanned:
		b.pb.Increment()
		if evt.Path != "" {
			name := filepath.Base(evt.Path)
			if len(name) > 40 {
				name = name[:37] + "..."
			}
			b.pb.UpdateTitle("Processing: " + name)
		}
	case stats.EventTypeError:
		if evt.Err != nil {
			pterm.Error.Printf("Error: %v\n", evt.Err)
		}
	}
}

// Stop finalizes the bar.
func (b *Bar) Stop() {
	if !b.enabled || b.pb == nil {
		return
	}

	if b.pb.Current < b.total {
		b.pb.Current = b.total
	}
	b.pb.Stop()
}
