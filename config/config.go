// Package config holds the validated command-line options of each
// subcommand.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Common captures the options shared by every subcommand.
type Common struct {
	Input     string
	MboxPath  string
	Recursive bool
	LogLevel  string
	LogDir    string
}

// List captures the options of the list subcommand.
type List struct {
	Common
}

// Grep captures the options of the grep subcommand.
type Grep struct {
	Common
	Pattern    string
	IgnoreCase bool
	Body       bool
	MatchOnly  bool
	OutputDir  string
}

// Rename captures the options of the rename subcommand.
type Rename struct {
	Common
	Mode    string
	Uniq    string
	OnDup   string
	DryRun  bool
	Verbose bool
}

func registerCommonFlags(cmd *cobra.Command, withMbox bool) {
	flags := cmd.Flags()
	flags.StringP("input", "i", "", "Path to an .eml file or a directory of .eml files")
	flags.BoolP("recursive", "r", false, "Descend into subdirectories")
	if withMbox {
		flags.String("mbox", "", "Read messages out of an mbox archive instead of .eml files")
	}
	flags.String("log-level", "info", "Logging level: debug, info, warn, error")
	flags.String("log-dir", "", "Directory for log files (in addition to stdout)")
}

// RegisterListFlags attaches the list flags to the command.
func RegisterListFlags(cmd *cobra.Command) {
	registerCommonFlags(cmd, true)
}

// RegisterGrepFlags attaches the grep flags to the command.
func RegisterGrepFlags(cmd *cobra.Command) error {
	registerCommonFlags(cmd, true)

	flags := cmd.Flags()
	flags.StringP("pattern", "p", "", "Regular expression to search for")
	flags.Bool("ignore-case", false, "Case-insensitive matching")
	flags.BoolP("body", "b", false, "Search the decoded body instead of the header block")
	flags.BoolP("match-only", "m", false, "Print every matched substring instead of file paths")
	flags.StringP("output", "o", "", "Copy matched files into this directory")

	return cmd.MarkFlagRequired("pattern")
}

// RegisterRenameFlags attaches the rename flags to the command.
func RegisterRenameFlags(cmd *cobra.Command) error {
	registerCommonFlags(cmd, false)

	flags := cmd.Flags()
	flags.String("mode", "received", "Date source: received or sent")
	flags.String("uniq", "hash", "Name uniqueness: hash (short content hash) or none")
	flags.String("on-dup", "suffix", "Duplicate policy: suffix, skip or overwrite")
	flags.BoolP("dry-run", "n", false, "Print the renames without touching any file")
	flags.BoolP("verbose", "v", false, "Log every rename")

	return cmd.MarkFlagRequired("input")
}

func loadCommon(cmd *cobra.Command, withMbox bool) (Common, error) {
	flags := cmd.Flags()

	input, err := flags.GetString("input")
	if err != nil {
		return Common{}, err
	}
	recursive, err := flags.GetBool("recursive")
	if err != nil {
		return Common{}, err
	}
	var mboxPath string
	if withMbox {
		mboxPath, err = flags.GetString("mbox")
		if err != nil {
			return Common{}, err
		}
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return Common{}, err
	}
	logDir, err := flags.GetString("log-dir")
	if err != nil {
		return Common{}, err
	}

	logLevel = strings.ToLower(logLevel)
	if logLevel == "warning" {
		logLevel = "warn"
	}

	cfg := Common{
		Input:     input,
		MboxPath:  mboxPath,
		Recursive: recursive,
		LogLevel:  logLevel,
		LogDir:    logDir,
	}

	return cfg, validateCommon(cfg, withMbox)
}

// LoadList converts the parsed flags into a validated List config.
func LoadList(cmd *cobra.Command) (List, error) {
	common, err := loadCommon(cmd, true)
	if err != nil {
		return List{}, err
	}
	return List{Common: common}, nil
}

// LoadGrep converts the parsed flags into a validated Grep config.
func LoadGrep(cmd *cobra.Command) (Grep, error) {
	common, err := loadCommon(cmd, true)
	if err != nil {
		return Grep{}, err
	}

	flags := cmd.Flags()
	pattern, err := flags.GetString("pattern")
	if err != nil {
		return Grep{}, err
	}
	ignoreCase, err := flags.GetBool("ignore-case")
	if err != nil {
		return Grep{}, err
	}
	body, err := flags.GetBool("body")
	if err != nil {
		return Grep{}, err
	}
	matchOnly, err := flags.GetBool("match-only")
	if err != nil {
		return Grep{}, err
	}
	outputDir, err := flags.GetString("output")
	if err != nil {
		return Grep{}, err
	}

	cfg := Grep{
		Common:     common,
		Pattern:    pattern,
		IgnoreCase: ignoreCase,
		Body:       body,
		MatchOnly:  matchOnly,
		OutputDir:  outputDir,
	}

	if cfg.Pattern == "" {
		return Grep{}, fmt.Errorf("--pattern is required")
	}
	if cfg.MatchOnly && cfg.OutputDir != "" {
		return Grep{}, fmt.Errorf("--match-only and --output are mutually exclusive")
	}

	return cfg, nil
}

// LoadRename converts the parsed flags into a validated Rename config.
func LoadRename(cmd *cobra.Command) (Rename, error) {
	common, err := loadCommon(cmd, false)
	if err != nil {
		return Rename{}, err
	}

	flags := cmd.Flags()
	mode, err := flags.GetString("mode")
	if err != nil {
		return Rename{}, err
	}
	uniq, err := flags.GetString("uniq")
	if err != nil {
		return Rename{}, err
	}
	onDup, err := flags.GetString("on-dup")
	if err != nil {
		return Rename{}, err
	}
	dryRun, err := flags.GetBool("dry-run")
	if err != nil {
		return Rename{}, err
	}
	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return Rename{}, err
	}

	cfg := Rename{
		Common:  common,
		Mode:    strings.ToLower(mode),
		Uniq:    strings.ToLower(uniq),
		OnDup:   strings.ToLower(onDup),
		DryRun:  dryRun,
		Verbose: verbose,
	}

	switch cfg.Mode {
	case "received", "sent":
	default:
		return Rename{}, fmt.Errorf("invalid --mode: %s", cfg.Mode)
	}
	switch cfg.Uniq {
	case "hash", "none":
	default:
		return Rename{}, fmt.Errorf("invalid --uniq: %s", cfg.Uniq)
	}
	switch cfg.OnDup {
	case "suffix", "skip", "overwrite":
	default:
		return Rename{}, fmt.Errorf("invalid --on-dup: %s", cfg.OnDup)
	}

	return cfg, nil
}

func validateCommon(cfg Common, withMbox bool) error {
	if withMbox {
		if cfg.Input == "" && cfg.MboxPath == "" {
			return fmt.Errorf("either --input or --mbox is required")
		}
		if cfg.Input != "" && cfg.MboxPath != "" {
			return fmt.Errorf("--input and --mbox are mutually exclusive")
		}
	} else if cfg.Input == "" {
		return fmt.Errorf("--input is required")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid --log-level: %s", cfg.LogLevel)
	}

	return nil
}
