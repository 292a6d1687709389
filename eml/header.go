package eml

import (
	"bytes"
	"strings"
)

// Field is one header line after unfolding.
type Field struct {
	Name  string
	Value string
}

// HeaderTable is an ordered sequence of header fields. Name lookups are
// case-insensitive; duplicate names are preserved in original order and Get
// returns the first occurrence. A HeaderTable is never modified after parsing.
type HeaderTable struct {
	fields []Field
}

// Get returns the value of the first field named name, or "".
func (h HeaderTable) Get(name string) string {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

// Values returns every value of name in original order.
func (h HeaderTable) Values(name string) []string {
	var values []string
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			values = append(values, f.Value)
		}
	}
	return values
}

// Has reports whether any field named name exists.
func (h HeaderTable) Has(name string) bool {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

// Fields returns all fields in original order.
func (h HeaderTable) Fields() []Field {
	return h.fields
}

// Len returns the number of fields.
func (h HeaderTable) Len() int {
	return len(h.fields)
}

// HasValueContaining reports whether any field value contains substr.
// Used for mass-mailer signature checks such as PHPMailer.
func (h HeaderTable) HasValueContaining(substr string) bool {
	for _, f := range h.fields {
		if strings.Contains(f.Value, substr) {
			return true
		}
	}
	return false
}

// splitRawMessage splits a raw message at the first blank line. Without one
// the entire content is treated as header section.
func splitRawMessage(raw []byte) (header, body []byte) {
	if len(raw) == 0 {
		return nil, nil
	}

	if idx := bytes.Index(raw, []byte("\r\n\r\n")); idx >= 0 {
		return raw[:idx], raw[idx+4:]
	}
	if idx := bytes.Index(raw, []byte("\n\n")); idx >= 0 {
		return raw[:idx], raw[idx+2:]
	}

	return raw, nil
}

// parseHeaderBlock unfolds and splits the header section into fields.
// Continuation lines join the preceding value with a single space; lines
// without a colon are skipped.
func parseHeaderBlock(raw []byte) HeaderTable {
	var fields []Field

	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		if line[0] == ' ' || line[0] == '\t' {
			// Folded continuation of the previous field.
			if len(fields) == 0 {
				continue
			}
			fields[len(fields)-1].Value += " " + strings.TrimSpace(line)
			continue
		}

		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}

		fields = append(fields, Field{
			Name:  strings.TrimSpace(line[:idx]),
			Value: strings.TrimSpace(line[idx+1:]),
		})
	}

	return HeaderTable{fields: fields}
}
