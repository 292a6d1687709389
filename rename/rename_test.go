package rename

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dhcgn/eml-tools/eml"
)

func parseMessage(t *testing.T, raw string) *eml.Message {
	t.Helper()
	msg, err := eml.NewParser(eml.Options{}).Parse([]byte(raw), "test.eml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return msg
}

func TestGenerator_Base_SentMode(t *testing.T) {
	gen, err := NewGenerator(ModeSent, UniqNone)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	msg := parseMessage(t, "Date: Mon, 1 Jan 2024 12:00:00 +0000\r\nSubject: Test\r\n\r\nbody\r\n")
	base, err := gen.Base(msg)
	if err != nil {
		t.Fatalf("Base() error = %v", err)
	}
	if want := "2024-01-01 120000 Test.eml"; base != want {
		t.Errorf("Base() = %q, want %q", base, want)
	}
}

func TestGenerator_Base_ReceivedMode(t *testing.T) {
	gen, err := NewGenerator(ModeReceived, UniqNone)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	msg := parseMessage(t, "Received: from mx by mail; Mon, 1 Jan 2024 11:58:00 +0000\r\n"+
		"Date: Mon, 1 Jan 2024 11:55:00 +0000\r\nSubject: Delivery\r\n\r\nbody\r\n")
	base, err := gen.Base(msg)
	if err != nil {
		t.Fatalf("Base() error = %v", err)
	}
	if want := "2024-01-01 115800 Delivery.eml"; base != want {
		t.Errorf("Base() = %q, want %q", base, want)
	}
}

func TestGenerator_Base_HashDeterministic(t *testing.T) {
	gen, err := NewGenerator(ModeSent, UniqHash)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	raw := "Date: Mon, 1 Jan 2024 12:00:00 +0000\r\nSubject: Test\r\n\r\nbody\r\n"
	first, err := gen.Base(parseMessage(t, raw))
	if err != nil {
		t.Fatalf("Base() error = %v", err)
	}
	second, err := gen.Base(parseMessage(t, raw))
	if err != nil {
		t.Fatalf("Base() error = %v", err)
	}

	if first != second {
		t.Errorf("same content produced different names: %q vs %q", first, second)
	}
	if len(first) != len("2024-01-01 120000 Test_xxxxxxxx.eml") {
		t.Errorf("unexpected name shape: %q", first)
	}

	other, err := gen.Base(parseMessage(t, raw+"extra\r\n"))
	if err != nil {
		t.Fatalf("Base() error = %v", err)
	}
	if other == first {
		t.Errorf("different content produced the same name: %q", other)
	}
}

func TestGenerator_Base_DecodesSubject(t *testing.T) {
	gen, err := NewGenerator(ModeSent, UniqNone)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	msg := parseMessage(t, "Date: Mon, 1 Jan 2024 12:00:00 +0000\r\n"+
		"Subject: =?UTF-8?Q?Caf=C3=A9_menu?=\r\n\r\nbody\r\n")
	base, err := gen.Base(msg)
	if err != nil {
		t.Fatalf("Base() error = %v", err)
	}
	if want := "2024-01-01 120000 Café menu.eml"; base != want {
		t.Errorf("Base() = %q, want %q", base, want)
	}
}

func TestGenerator_Base_MissingDate(t *testing.T) {
	gen, err := NewGenerator(ModeSent, UniqHash)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	msg := parseMessage(t, "Subject: undated\r\n\r\nbody\r\n")
	if _, err := gen.Base(msg); !errors.Is(err, ErrMissingDate) {
		t.Errorf("Base() error = %v, want ErrMissingDate", err)
	}
}

func TestNewGenerator_InvalidOptions(t *testing.T) {
	if _, err := NewGenerator(Mode("later"), UniqHash); err == nil {
		t.Error("expected error for invalid mode")
	}
	if _, err := NewGenerator(ModeSent, Uniq("uuid")); err == nil {
		t.Error("expected error for invalid uniq")
	}
}

func TestSanitizeSubject(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		want    string
	}{
		{
			name:    "illegal characters replaced",
			subject: "Re: foo/bar: baz?",
			want:    "Re foo bar baz",
		},
		{
			name:    "whitespace collapsed",
			subject: "too    many   spaces",
			want:    "too many spaces",
		},
		{
			name:    "newlines removed",
			subject: "line one\r\nline two",
			want:    "line one line two",
		},
		{
			name:    "empty falls back",
			subject: "",
			want:    "untitled",
		},
		{
			name:    "only illegal characters falls back",
			subject: `\/:*?"<>|`,
			want:    "untitled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeSubject(tt.subject); got != tt.want {
				t.Errorf("SanitizeSubject(%q) = %q, want %q", tt.subject, got, tt.want)
			}
		})
	}
}

func TestSanitizeSubject_CapsLength(t *testing.T) {
	long := ""
	for i := 0; i < 200; i++ {
		long += "a"
	}
	got := SanitizeSubject(long)
	if len([]rune(got)) != maxSubjectLen {
		t.Errorf("len = %d, want %d", len([]rune(got)), maxSubjectLen)
	}
}

func TestResolve_Suffix(t *testing.T) {
	dir := t.TempDir()
	base := "2024-01-01 120000 Test.eml"

	touch(t, filepath.Join(dir, base))

	cand, err := Resolve(base, dir, OnDupSuffix)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want := "2024-01-01 120000 Test (1).eml"; cand.Final != want {
		t.Errorf("Resolve() = %q, want %q", cand.Final, want)
	}

	touch(t, filepath.Join(dir, cand.Final))

	cand, err = Resolve(base, dir, OnDupSuffix)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want := "2024-01-01 120000 Test (2).eml"; cand.Final != want {
		t.Errorf("Resolve() = %q, want %q", cand.Final, want)
	}
}

func TestResolve_Skip(t *testing.T) {
	dir := t.TempDir()
	base := "2024-01-01 120000 Test.eml"

	cand, err := Resolve(base, dir, OnDupSkip)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cand.Skipped || cand.Final != base {
		t.Errorf("Resolve() with free name = %+v, want Final=%q", cand, base)
	}

	touch(t, filepath.Join(dir, base))

	cand, err = Resolve(base, dir, OnDupSkip)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !cand.Skipped {
		t.Error("Resolve() with taken name: Skipped = false, want true")
	}
	if cand.Final != "" {
		t.Errorf("Resolve() skipped candidate has Final = %q, want empty", cand.Final)
	}
}

func TestResolve_Overwrite(t *testing.T) {
	dir := t.TempDir()
	base := "2024-01-01 120000 Test.eml"

	touch(t, filepath.Join(dir, base))

	cand, err := Resolve(base, dir, OnDupOverwrite)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cand.Final != base {
		t.Errorf("Resolve() = %q, want the unchanged base name", cand.Final)
	}
	if !cand.Overwrite {
		t.Error("Resolve() Overwrite = false, want true")
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}
