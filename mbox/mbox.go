// Package mbox feeds the messages of an mbox archive through the same
// per-message pipeline used for individual .eml files.
package mbox

import (
	"errors"
	"fmt"
	"io"
	"os"

	mboxlib "github.com/emersion/go-mbox"
)

// Read opens an mbox file and calls fn with the raw bytes of each message in
// order. fn returning an error stops the iteration.
func Read(path string, fn func(idx int, raw []byte) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	reader := mboxlib.NewReader(file)
	for idx := 0; ; idx++ {
		msgReader, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("message %d: %w", idx, err)
		}

		raw, err := io.ReadAll(msgReader)
		if err != nil {
			return fmt.Errorf("message %d read: %w", idx, err)
		}

		if err := fn(idx, raw); err != nil {
			return err
		}
	}
}

// CountMessages counts the messages in an mbox file without parsing them.
func CountMessages(path string) (int, error) {
	count := 0
	err := Read(path, func(int, []byte) error {
		count++
		return nil
	})
	return count, err
}

// EntryPath names one message of an archive for display and logs,
// e.g. "inbox.mbox#12".
func EntryPath(path string, idx int) string {
	return fmt.Sprintf("%s#%d", path, idx)
}
