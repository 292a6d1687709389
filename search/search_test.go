package search

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dhcgn/eml-tools/eml"
)

func parseMessage(t *testing.T, parser *eml.Parser, raw string) *eml.Message {
	t.Helper()
	msg, err := parser.Parse([]byte(raw), "test.eml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return msg
}

func TestSearch_HeaderScope(t *testing.T) {
	parser := eml.NewParser(eml.Options{})
	msg := parseMessage(t, parser, "From: alice@example.com\r\nSubject: quarterly report\r\n\r\nnothing here\r\n")

	tests := []struct {
		name    string
		opts    Options
		matched bool
	}{
		{
			name:    "match on real formatting",
			opts:    Options{Pattern: `From: .*@example\.com`, Scope: ScopeHeader},
			matched: true,
		},
		{
			name:    "no match",
			opts:    Options{Pattern: `X-Spam-Flag`, Scope: ScopeHeader},
			matched: false,
		},
		{
			name:    "body text not visible in header scope",
			opts:    Options{Pattern: `nothing here`, Scope: ScopeHeader},
			matched: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := New(tt.opts)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := engine.Search(msg).Matched; got != tt.matched {
				t.Errorf("Search().Matched = %v, want %v", got, tt.matched)
			}
		})
	}
}

func TestSearch_BodyScope(t *testing.T) {
	parser := eml.NewParser(eml.Options{})
	msg := parseMessage(t, parser, "Subject: hi\r\nContent-Transfer-Encoding: base64\r\n\r\naGlkZGVuIHRyZWFzdXJl\r\n")

	engine, err := New(Options{Pattern: "hidden treasure", Scope: ScopeBody})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !engine.Search(msg).Matched {
		t.Error("expected match against the decoded body, got none")
	}
}

func TestSearch_IgnoreCase(t *testing.T) {
	parser := eml.NewParser(eml.Options{})
	msg := parseMessage(t, parser, "Subject: URGENT Invoice\r\n\r\nbody\r\n")

	strict, err := New(Options{Pattern: "urgent", Scope: ScopeHeader})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if strict.Search(msg).Matched {
		t.Error("case-sensitive search matched, want no match")
	}

	folded, err := New(Options{Pattern: "urgent", Scope: ScopeHeader, IgnoreCase: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !folded.Search(msg).Matched {
		t.Error("case-insensitive search did not match")
	}
}

func TestSearch_MatchOnly(t *testing.T) {
	parser := eml.NewParser(eml.Options{})
	msg := parseMessage(t, parser, "Subject: links\r\n\r\nvisit http://a.p-e.kr/x and http://b.o-r.kr/y\r\n")

	engine, err := New(Options{
		Pattern:   `https?://[^\s]*(?:o-r\.kr|p-e\.kr)[^\s]*`,
		Scope:     ScopeBody,
		MatchOnly: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result := engine.Search(msg)
	want := []string{"http://a.p-e.kr/x", "http://b.o-r.kr/y"}
	if !result.Matched {
		t.Fatal("Search().Matched = false, want true")
	}
	if !reflect.DeepEqual(result.Matches, want) {
		t.Errorf("Search().Matches = %v, want %v", result.Matches, want)
	}
}

func TestSearch_MatchOnlyNoHits(t *testing.T) {
	parser := eml.NewParser(eml.Options{})
	msg := parseMessage(t, parser, "Subject: quiet\r\n\r\nnothing of interest\r\n")

	engine, err := New(Options{Pattern: `https?://\S+`, Scope: ScopeBody, MatchOnly: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result := engine.Search(msg)
	if result.Matched {
		t.Error("Search().Matched = true, want false")
	}
	if len(result.Matches) != 0 {
		t.Errorf("Search().Matches = %v, want empty", result.Matches)
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
	}{
		{name: "unbalanced paren", pattern: "(unclosed"},
		{name: "empty", pattern: ""},
		{name: "blank", pattern: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Options{Pattern: tt.pattern, Scope: ScopeHeader})
			if !errors.Is(err, ErrBadPattern) {
				t.Errorf("New(%q) error = %v, want ErrBadPattern", tt.pattern, err)
			}
		})
	}
}

func TestSearch_HeaderScopeNeverDecodesBody(t *testing.T) {
	decodes := 0
	parser := eml.NewParser(eml.Options{OnBodyDecode: func(string) { decodes++ }})
	msg := parseMessage(t, parser, "From: alice@example.com\r\n\r\nbig body that must not be decoded\r\n")

	engine, err := New(Options{Pattern: "alice", Scope: ScopeHeader})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !engine.Search(msg).Matched {
		t.Fatal("expected a header match")
	}
	if decodes != 0 {
		t.Errorf("body decoded %d time(s) during header-scope search, want 0", decodes)
	}
}
