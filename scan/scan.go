// Package scan gathers the .eml files a command operates on.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// IsEML reports whether path has a .eml extension, case-insensitively.
func IsEML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".eml")
}

// Gather returns the .eml files under input in a deterministic order.
// Input may be a single file or a directory; recursive descends into
// subdirectories.
func Gather(input string, recursive bool) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}

	if !info.IsDir() {
		if !IsEML(input) {
			return nil, fmt.Errorf("%s is not an .eml file", input)
		}
		return []string{input}, nil
	}

	var paths []string
	if recursive {
		err := filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && IsEML(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", input, err)
		}
		return paths, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", input, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && IsEML(entry.Name()) {
			paths = append(paths, filepath.Join(input, entry.Name()))
		}
	}
	return paths, nil
}
