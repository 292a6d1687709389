package eml

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

var ErrNoDate = errors.New("eml: no usable date")

// dateLayouts covers the non-standard Date formats seen in the wild when
// mail.ParseDate rejects the header.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05",
	time.RFC822Z,
	time.RFC822,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// ParseDate parses an RFC 5322 date header value, falling back to a list of
// common non-standard layouts.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrNoDate
	}

	if t, err := mail.ParseDate(raw); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", ErrNoDate, raw)
}

// ReceivedDate returns the delivery timestamp embedded after the final ";"
// of a Received header. The first (most recent) header is tried first.
func ReceivedDate(h HeaderTable) (time.Time, error) {
	received := h.Values("Received")
	if len(received) == 0 {
		return time.Time{}, fmt.Errorf("%w: no Received header", ErrNoDate)
	}

	for _, value := range received {
		idx := strings.LastIndex(value, ";")
		if idx < 0 {
			continue
		}
		if t, err := ParseDate(value[idx+1:]); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: no parseable Received date", ErrNoDate)
}
