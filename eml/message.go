// Package eml parses single-message email files into an ordered header table
// and a decoded, attachment-free body text.
package eml

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
)

var ErrEmptyMessage = errors.New("eml: message is empty")

// Options configures a Parser.
type Options struct {
	Logger *slog.Logger

	// OnBodyDecode is invoked once per message whose body text actually gets
	// decoded. Header-only operations must never trigger it.
	OnBodyDecode func(path string)
}

// Parser turns raw message bytes into Messages. One Parser is built per run
// and shared by every file of the batch; it holds no per-message state.
type Parser struct {
	logger       *slog.Logger
	onBodyDecode func(path string)
	words        *mime.WordDecoder
}

func NewParser(opts Options) *Parser {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		logger:       logger,
		onBodyDecode: opts.OnBodyDecode,
		words: &mime.WordDecoder{
			CharsetReader: func(label string, input io.Reader) (io.Reader, error) {
				return charset.NewReaderLabel(label, input)
			},
		},
	}
}

// ParseFile reads path and parses its content.
func (p *Parser) ParseFile(path string) (*Message, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p.Parse(raw, path)
}

// Parse builds a Message from raw bytes. The body is not decoded here; it is
// computed on first use of Message.Body.
func (p *Parser) Parse(raw []byte, path string) (*Message, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyMessage)
	}

	header, body := splitRawMessage(raw)

	return &Message{
		Path:    path,
		Raw:     raw,
		Headers: parseHeaderBlock(header),

		headerBlock: string(header),
		rawBody:     body,
		parser:      p,
	}, nil
}

// decodeWords resolves RFC 2047 encoded-words in a header value. Undecodable
// input is returned as-is.
func (p *Parser) decodeWords(raw string) string {
	decoded, err := p.words.DecodeHeader(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Message is the in-memory representation of one file: header table plus a
// lazily decoded body. It lives for the duration of one file's handling.
type Message struct {
	Path    string
	Raw     []byte
	Headers HeaderTable

	headerBlock string
	rawBody     []byte
	parser      *Parser

	body     string
	bodyDone bool
}

// HeaderBlock returns the header section exactly as it appears on disk, so
// search patterns can anchor on real formatting.
func (m *Message) HeaderBlock() string {
	return m.headerBlock
}

// Body returns the decoded body text, computing and caching it on first use.
// Decoding is best effort: malformed boundaries, encodings or charsets
// degrade to whatever text could be extracted, never to an error.
func (m *Message) Body() string {
	if !m.bodyDone {
		if m.parser.onBodyDecode != nil {
			m.parser.onBodyDecode(m.Path)
		}
		m.parser.logger.Debug("decoding body", "path", m.Path)
		m.body = decodeBody(m.Headers, m.rawBody)
		m.bodyDone = true
	}
	return m.body
}

// Subject returns the RFC 2047 decoded Subject header.
func (m *Message) Subject() string {
	return strings.TrimSpace(m.parser.decodeWords(m.Headers.Get("Subject")))
}

// From returns the decoded From header.
func (m *Message) From() string {
	return strings.TrimSpace(m.parser.decodeWords(m.Headers.Get("From")))
}

// To returns the decoded To header.
func (m *Message) To() string {
	return strings.TrimSpace(m.parser.decodeWords(m.Headers.Get("To")))
}

// OriginatingIP returns the X-Originating-IP header with the surrounding
// brackets some mailers add stripped off.
func (m *Message) OriginatingIP() string {
	return strings.Trim(strings.TrimSpace(m.Headers.Get("X-Originating-IP")), "[]")
}
