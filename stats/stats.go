// Package stats counts what happened to each file of a batch and renders the
// final summary.
package stats

import (
	"sync"
)

type EventType string

const (
	EventTypeScanned EventType = "scanned"
	EventTypeMatched EventType = "matched"
	EventTypeCopied  EventType = "copied"
	EventTypeRenamed EventType = "renamed"
	EventTypeSkipped EventType = "skipped"
	EventTypeError   EventType = "error"
)

type Event struct {
	Type EventType
	Path string
	Err  error
}

type Summary struct {
	Scanned   int
	Matched   int
	Copied    int
	Renamed   int
	Skipped   int
	Errors    int
	LastError error
}

func (s Summary) LogAttrs() []any {
	attrs := []any{
		"scanned", s.Scanned,
		"matched", s.Matched,
		"copied", s.Copied,
		"renamed", s.Renamed,
		"skipped", s.Skipped,
		"errors", s.Errors,
	}
	if s.LastError != nil {
		attrs = append(attrs, "lastError", s.LastError.Error())
	}
	return attrs
}

type Collector struct {
	mu      sync.Mutex
	summary Summary
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Apply(evt Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch evt.Type {
	case EventTypeScanned:
		c.summary.Scanned++
	case EventTypeMatched:
		c.summary.Matched++
	case EventTypeCopied:
		c.summary.Copied++
	case EventTypeRenamed:
		c.summary.Renamed++
	case EventTypeSkipped:
		c.summary.Skipped++
	case EventTypeError:
		c.summary.Errors++
		if evt.Err != nil {
			c.summary.LastError = evt.Err
		}
	}
}

func (c *Collector) Snapshot() Summary {
	c.mu.Lock()
	summary := c.summary
	c.mu.Unlock()
	return summary
}
