package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhcgn/eml-tools/config"
	"github.com/dhcgn/eml-tools/eml"
	"github.com/dhcgn/eml-tools/mbox"
	"github.com/dhcgn/eml-tools/runner"
	"github.com/dhcgn/eml-tools/scan"
	"github.com/dhcgn/eml-tools/search"
	"github.com/dhcgn/eml-tools/stats"
)

func newGrepCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "grep",
		Short: "Search message headers or decoded bodies by regular expression",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadGrep(cmd)
			if err != nil {
				return err
			}

			logger, cleanup, err := setupLogger(cfg.LogLevel, cfg.LogDir)
			if err != nil {
				return err
			}
			defer func() {
				_ = cleanup()
			}()

			return runGrep(cfg, logger)
		},
	}

	if err := config.RegisterGrepFlags(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

func runGrep(cfg config.Grep, logger *slog.Logger) error {
	scope := search.ScopeHeader
	if cfg.Body {
		scope = search.ScopeBody
	}

	// The pattern is compiled before any file is opened; a bad pattern fails
	// the whole run up front.
	engine, err := search.New(search.Options{
		Pattern:    cfg.Pattern,
		Scope:      scope,
		IgnoreCase: cfg.IgnoreCase,
		MatchOnly:  cfg.MatchOnly,
	})
	if err != nil {
		return err
	}

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	parser := eml.NewParser(eml.Options{Logger: logger})
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	r := runner.New(logger, nil)
	handle := func(msg *eml.Message, destName string) error {
		result := engine.Search(msg)
		if !result.Matched {
			return nil
		}
		r.Emit(stats.Event{Type: stats.EventTypeMatched, Path: msg.Path})

		if cfg.MatchOnly {
			for _, m := range result.Matches {
				fmt.Fprintln(out, m)
			}
			return nil
		}

		if cfg.OutputDir != "" {
			dest := filepath.Join(cfg.OutputDir, destName)
			if err := os.WriteFile(dest, msg.Raw, 0o644); err != nil {
				return fmt.Errorf("copy to %s: %w", dest, err)
			}
			r.Emit(stats.Event{Type: stats.EventTypeCopied, Path: msg.Path})
			logger.Info("copied", "from", msg.Path, "to", dest)
			return nil
		}

		fmt.Fprintln(out, msg.Path)
		return nil
	}

	var summary stats.Summary
	if cfg.MboxPath != "" {
		stem := strings.TrimSuffix(filepath.Base(cfg.MboxPath), filepath.Ext(cfg.MboxPath))
		err := mbox.Read(cfg.MboxPath, func(idx int, raw []byte) error {
			entry := mbox.EntryPath(cfg.MboxPath, idx)
			r.Emit(stats.Event{Type: stats.EventTypeScanned, Path: entry})
			msg, err := parser.Parse(raw, entry)
			if err != nil {
				r.Emit(stats.Event{Type: stats.EventTypeError, Path: entry, Err: err})
				return nil
			}
			return handle(msg, fmt.Sprintf("%s-%05d.eml", stem, idx))
		})
		if err != nil {
			return err
		}
		summary = r.Finish()
	} else {
		paths, err := scan.Gather(cfg.Input, cfg.Recursive)
		if err != nil {
			return err
		}
		summary = r.Run(paths, func(path string) error {
			msg, err := parser.ParseFile(path)
			if err != nil {
				return err
			}
			return handle(msg, filepath.Base(path))
		})
	}

	if summary.Errors > 0 {
		return fmt.Errorf("%d message(s) failed", summary.Errors)
	}
	return nil
}
