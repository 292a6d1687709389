// Package rename derives canonical file names from a message's date and
// subject and resolves collisions inside a target directory. It never moves
// files itself; collision checks are read-only stats.
package rename

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dhcgn/eml-tools/eml"
)

var ErrMissingDate = errors.New("rename: message date missing or unparseable")

// Mode selects the date source for the generated name.
type Mode string

const (
	ModeReceived Mode = "received"
	ModeSent     Mode = "sent"
)

// Uniq selects whether a short content hash is appended.
type Uniq string

const (
	UniqHash Uniq = "hash"
	UniqNone Uniq = "none"
)

// OnDup selects the duplicate policy applied during Resolve.
type OnDup string

const (
	OnDupSuffix    OnDup = "suffix"
	OnDupSkip      OnDup = "skip"
	OnDupOverwrite OnDup = "overwrite"
)

const (
	maxSubjectLen = 120
	maxSuffix     = 10000
)

var (
	invalidChars = regexp.MustCompile(`[\\/:*?"<>|\r\n]+`)
	multiSpace   = regexp.MustCompile(`\s{2,}`)
)

// Generator produces base names for messages under a fixed mode and
// uniqueness policy.
type Generator struct {
	mode Mode
	uniq Uniq
}

func NewGenerator(mode Mode, uniq Uniq) (*Generator, error) {
	switch mode {
	case ModeReceived, ModeSent:
	default:
		return nil, fmt.Errorf("invalid mode %q", mode)
	}
	switch uniq {
	case UniqHash, UniqNone:
	default:
		return nil, fmt.Errorf("invalid uniq %q", uniq)
	}
	return &Generator{mode: mode, uniq: uniq}, nil
}

// Base derives the canonical name "yyyy-mm-dd HHMMSS <subject>[_hash8].eml"
// for msg. The hash suffix is deterministic over the raw file content, so
// true duplicates collapse to the same candidate name.
func (g *Generator) Base(msg *eml.Message) (string, error) {
	var (
		t   time.Time
		err error
	)
	switch g.mode {
	case ModeReceived:
		t, err = eml.ReceivedDate(msg.Headers)
	default:
		t, err = eml.ParseDate(msg.Headers.Get("Date"))
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", msg.Path, ErrMissingDate)
	}

	name := t.Format("2006-01-02 150405") + " " + SanitizeSubject(msg.Subject())
	if g.uniq == UniqHash {
		name += "_" + shortHash(msg.Raw)
	}
	return name + ".eml", nil
}

// SanitizeSubject strips characters illegal in file names, collapses
// whitespace and caps the length. An empty subject becomes "untitled".
func SanitizeSubject(subject string) string {
	cleaned := strings.TrimSpace(invalidChars.ReplaceAllString(subject, " "))
	cleaned = multiSpace.ReplaceAllString(cleaned, " ")

	if runes := []rune(cleaned); len(runes) > maxSubjectLen {
		cleaned = strings.TrimRight(string(runes[:maxSubjectLen]), " ")
	}
	if cleaned == "" {
		return "untitled"
	}
	return cleaned
}

func shortHash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:8]
}

// Candidate is a proposed name after collision handling.
type Candidate struct {
	Base      string
	Final     string // resolved name, empty when Skipped
	Skipped   bool
	Overwrite bool // Final exists and will be replaced by the caller
}

// Resolve decides the final name for base inside dir under the duplicate
// policy. Suffix mode appends " (n)" with the lowest free index winning.
func Resolve(base, dir string, onDup OnDup) (Candidate, error) {
	cand := Candidate{Base: base}

	taken, err := exists(filepath.Join(dir, base))
	if err != nil {
		return cand, err
	}
	if !taken {
		cand.Final = base
		return cand, nil
	}

	switch onDup {
	case OnDupSkip:
		cand.Skipped = true
		return cand, nil
	case OnDupOverwrite:
		cand.Final = base
		cand.Overwrite = true
		return cand, nil
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; i < maxSuffix; i++ {
		name := fmt.Sprintf("%s (%d)%s", stem, i, ext)
		taken, err := exists(filepath.Join(dir, name))
		if err != nil {
			return cand, err
		}
		if !taken {
			cand.Final = name
			return cand, nil
		}
	}

	return cand, fmt.Errorf("too many duplicates of %q in %s", base, dir)
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
