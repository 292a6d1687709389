package main

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhcgn/eml-tools/config"
	"github.com/dhcgn/eml-tools/eml"
	"github.com/dhcgn/eml-tools/mbox"
	"github.com/dhcgn/eml-tools/runner"
	"github.com/dhcgn/eml-tools/scan"
	"github.com/dhcgn/eml-tools/stats"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Emit a CSV table of header metadata for each message",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadList(cmd)
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

			return runList(cfg, logger)
		},
	}

	config.RegisterListFlags(cmd)
	return cmd
}

var listColumns = []string{"File", "Subject", "From", "To", "Date", "X-Originating-IP", "PHPMailer"}

func runList(cfg config.List, logger *slog.Logger) error {
	parser := eml.NewParser(eml.Options{Logger: logger})

	writer := csv.NewWriter(os.Stdout)
	if err := writer.Write(listColumns); err != nil {
		return err
	}

	r := runner.New(logger, nil)
	handle := func(msg *eml.Message) error {
		return writer.Write(listRecord(msg))
	}

	var summary stats.Summary
	if cfg.MboxPath != "" {
		err := mbox.Read(cfg.MboxPath, func(idx int, raw []byte) error {
			entry := mbox.EntryPath(cfg.MboxPath, idx)
			r.Emit(stats.Event{Type: stats.EventTypeScanned, Path: entry})
			msg, err := parser.Parse(raw, entry)
			if err != nil {
				r.Emit(stats.Event{Type: stats.EventTypeError, Path: entry, Err: err})
				return nil
			}
			return handle(msg)
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
			return handle(msg)
		})
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	if summary.Errors > 0 {
		return fmt.Errorf("%d message(s) failed", summary.Errors)
	}
	return nil
}

// listRecord renders one CSV row. The Date column is normalized to
// "yyyy-mm-dd hh:mm:ss ±hhmm"; unparseable dates pass through verbatim.
func listRecord(msg *eml.Message) []string {
	date := msg.Headers.Get("Date")
	if t, err := eml.ParseDate(date); err == nil {
		date = t.Format("2006-01-02 15:04:05 -0700")
	}

	mailerFlag := "No"
	if msg.Headers.HasValueContaining("PHPMailer") {
		mailerFlag = "Yes"
	}

	return []string{
		msg.Path,
		msg.Subject(),
		msg.From(),
		msg.To(),
		date,
		msg.OriginatingIP(),
		mailerFlag,
	}
}
