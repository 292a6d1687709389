// Package search compiles a user regex once per run and evaluates it against
// the header block or the decoded body of parsed messages.
package search

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dhcgn/eml-tools/eml"
)

var ErrBadPattern = errors.New("search: invalid pattern")

// Scope selects which part of a message is searched.
type Scope string

const (
	ScopeHeader Scope = "header"
	ScopeBody   Scope = "body"
)

// Options captures the search configuration for one run.
type Options struct {
	Pattern    string
	Scope      Scope
	IgnoreCase bool
	MatchOnly  bool
}

// Engine holds the compiled pattern. Compilation happens once, before any
// file is opened, so a bad pattern fails the whole run up front.
type Engine struct {
	re        *regexp.Regexp
	scope     Scope
	matchOnly bool
}

// New compiles the pattern and validates the options.
func New(opts Options) (*Engine, error) {
	pattern := strings.TrimSpace(opts.Pattern)
	if pattern == "" {
		return nil, fmt.Errorf("%w: pattern is empty", ErrBadPattern)
	}
	if opts.IgnoreCase {
		pattern = "(?i)" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPattern, err)
	}

	scope := opts.Scope
	if scope == "" {
		scope = ScopeHeader
	}
	if scope != ScopeHeader && scope != ScopeBody {
		return nil, fmt.Errorf("invalid scope %q", scope)
	}

	return &Engine{re: re, scope: scope, matchOnly: opts.MatchOnly}, nil
}

// Scope returns the configured search scope.
func (e *Engine) Scope() Scope {
	return e.scope
}

// Result is the outcome of searching one message. Matches is populated only
// in match-only mode, in order of appearance, duplicates preserved.
type Result struct {
	Matched bool
	Matches []string
}

// Search evaluates the pattern against msg. Header scope searches the header
// block exactly as it appears on disk; body scope triggers the lazy body
// decode. Zero matches is a valid result, not an error.
func (e *Engine) Search(msg *eml.Message) Result {
	var text string
	if e.scope == ScopeBody {
		text = msg.Body()
	} else {
		text = msg.HeaderBlock()
	}

	if e.matchOnly {
		matches := e.re.FindAllString(text, -1)
		return Result{Matched: len(matches) > 0, Matches: matches}
	}

	return Result{Matched: e.re.MatchString(text)}
}
