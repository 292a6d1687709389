package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dhcgn/eml-tools/config"
	"github.com/dhcgn/eml-tools/eml"
	"github.com/dhcgn/eml-tools/progress"
	"github.com/dhcgn/eml-tools/rename"
	"github.com/dhcgn/eml-tools/runner"
	"github.com/dhcgn/eml-tools/scan"
	"github.com/dhcgn/eml-tools/stats"
)

func newRenameCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Rename messages to 'yyyy-mm-dd HHMMSS <subject>[_hash].eml'",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadRename(cmd)
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

			return runRename(cfg, logger)
		},
	}

	if err := config.RegisterRenameFlags(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

func runRename(cfg config.Rename, logger *slog.Logger) error {
	gen, err := rename.NewGenerator(rename.Mode(cfg.Mode), rename.Uniq(cfg.Uniq))
	if err != nil {
		return err
	}

	paths, err := scan.Gather(cfg.Input, cfg.Recursive)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no .eml files under %s", cfg.Input)
	}

	parser := eml.NewParser(eml.Options{Logger: logger})

	var bar *progress.Bar
	if !cfg.DryRun && !cfg.Verbose {
		bar = progress.New(len(paths), "Renaming messages", cfg.LogLevel)
	}

	r := runner.New(logger, bar)
	summary := r.Run(paths, func(path string) error {
		msg, err := parser.ParseFile(path)
		if err != nil {
			return err
		}

		base, err := gen.Base(msg)
		if err != nil {
			if errors.Is(err, rename.ErrMissingDate) {
				// The batch keeps going; the file just keeps its name.
				logger.Warn("skipped, no usable date", "path", path)
				r.Emit(stats.Event{Type: stats.EventTypeSkipped, Path: path})
				return nil
			}
			return err
		}

		if filepath.Base(path) == base {
			logger.Debug("already named", "path", path)
			r.Emit(stats.Event{Type: stats.EventTypeSkipped, Path: path})
			return nil
		}

		dir := filepath.Dir(path)
		cand, err := rename.Resolve(base, dir, rename.OnDup(cfg.OnDup))
		if err != nil {
			return err
		}
		if cand.Skipped {
			logger.Info("skipped, name taken", "path", path, "name", cand.Base)
			r.Emit(stats.Event{Type: stats.EventTypeSkipped, Path: path})
			return nil
		}

		if cfg.DryRun || cfg.Verbose {
			logger.Info("rename",
				"from", filepath.Base(path),
				"to", cand.Final,
				"overwrite", cand.Overwrite,
				"dryRun", cfg.DryRun)
		}
		if cfg.DryRun {
			return nil
		}

		if err := os.Rename(path, filepath.Join(dir, cand.Final)); err != nil {
			return fmt.Errorf("rename %s: %w", path, err)
		}
		r.Emit(stats.Event{Type: stats.EventTypeRenamed, Path: path})
		return nil
	})

	if summary.Errors > 0 {
		return fmt.Errorf("%d message(s) failed", summary.Errors)
	}
	return nil
}
