package mbox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhcgn/eml-tools/eml"
)

const testMbox = "From alice@example.com Mon Jan  1 12:00:00 2024\r\n" +
	"From: alice@example.com\r\n" +
	"Subject: first message\r\n" +
	"\r\n" +
	"hello one\r\n" +
	"\r\n" +
	"From bob@example.com Mon Jan  1 12:01:00 2024\r\n" +
	"From: bob@example.com\r\n" +
	"Subject: second message\r\n" +
	"\r\n" +
	"hello two\r\n"

func writeTestMbox(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inbox.mbox")
	if err := os.WriteFile(path, []byte(testMbox), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRead(t *testing.T) {
	path := writeTestMbox(t)

	parser := eml.NewParser(eml.Options{})
	var subjects []string
	err := Read(path, func(idx int, raw []byte) error {
		msg, err := parser.Parse(raw, EntryPath(path, idx))
		if err != nil {
			return err
		}
		subjects = append(subjects, msg.Headers.Get("Subject"))
		return nil
	})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if len(subjects) != 2 {
		t.Fatalf("Read() visited %d messages, want 2", len(subjects))
	}
	if subjects[0] != "first message" || subjects[1] != "second message" {
		t.Errorf("subjects = %v, want messages in archive order", subjects)
	}
}

func TestCountMessages(t *testing.T) {
	path := writeTestMbox(t)

	count, err := CountMessages(path)
	if err != nil {
		t.Fatalf("CountMessages() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountMessages() = %d, want 2", count)
	}
}

func TestRead_MissingFile(t *testing.T) {
	err := Read(filepath.Join(t.TempDir(), "nope.mbox"), func(int, []byte) error { return nil })
	if err == nil {
		t.Error("Read() on a missing file did not fail")
	}
}

func TestEntryPath(t *testing.T) {
	got := EntryPath("inbox.mbox", 12)
	if got != "inbox.mbox#12" {
		t.Errorf("EntryPath() = %q, want inbox.mbox#12", got)
	}
	if !strings.HasPrefix(got, "inbox.mbox") {
		t.Errorf("EntryPath() lost the archive path: %q", got)
	}
}
