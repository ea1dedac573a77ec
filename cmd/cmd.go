package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
)

// ScriptExt is the extension of hatchtest scripts.
const ScriptExt = ".ht"

// Execute runs the hatchtest CLI with the given version string.
func Execute(version string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewApp(version).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// NewApp builds the command tree. Writers default to the process streams;
// tests replace them before calling Run.
func NewApp(version string) *cli.Command {
	return &cli.Command{
		Name:                   "hatchtest",
		Usage:                  "Convert plain-language test scripts to Cypress tests",
		Version:                version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file (default: ./hatchtest.yaml if present)",
			},
			&cli.StringFlag{
				Name:  "database",
				Usage: "Variables database path",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "auto, always or never",
			},
		},
		Before: setup,
		// Allow `hatchtest login.ht` as shorthand for `hatchtest convert login.ht`
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() > 0 && isScript(cmd.Args().First()) {
				return convertPaths(ctx, cmd, cmd.Args().Slice(), convertOptions{})
			}
			return cli.DefaultShowRootCommandHelp(cmd)
		},
		Commands: []*cli.Command{
			convertCommand(),
			lintCommand(),
			keywordsCommand(),
			varsCommand(),
			watchCommand(),
			promptCommand(),
			assistCommand(),
		},
	}
}

// isScript reports whether path names an existing hatchtest script.
func isScript(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ScriptExt) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// readInput reads path, or the command's reader when path is "-".
func readInput(s *session, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(s.in)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
