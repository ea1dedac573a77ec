package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/askvallejos/hatchtest/converter"
	"github.com/askvallejos/hatchtest/lint"
	"github.com/askvallejos/hatchtest/variables"
	"github.com/urfave/cli/v3"
)

// OutputExt is appended to the script name when writing converted tests.
const OutputExt = ".cy.js"

type convertOptions struct {
	output  string
	noVars  bool
	strict  bool
	noCheck bool
}

// SyntaxError is returned when a script has lint errors. Such scripts are
// not converted because the result would not be valid JavaScript.
type SyntaxError struct {
	Diagnostics lint.Diagnostics
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d syntax error(s), nothing converted:\n%s",
		len(e.Diagnostics), e.Diagnostics.Format())
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert scripts to Cypress code",
		ArgsUsage: "<file.ht|-> [file.ht...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the result to this file (single input only)",
			},
			&cli.BoolFlag{
				Name:  "no-vars",
				Usage: "Skip variable substitution",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Fail when a line is not recognized",
			},
			&cli.BoolFlag{
				Name:  "no-check",
				Usage: "Convert even when the script has syntax errors",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() < 1 {
				return fmt.Errorf("usage: hatchtest convert [-o output] <file.ht|->")
			}
			return convertPaths(ctx, cmd, cmd.Args().Slice(), convertOptions{
				output:  cmd.String("output"),
				noVars:  cmd.Bool("no-vars"),
				strict:  cmd.Bool("strict"),
				noCheck: cmd.Bool("no-check"),
			})
		},
	}
}

func convertPaths(ctx context.Context, cmd *cli.Command, paths []string, opts convertOptions) error {
	s := getSession(ctx, cmd)
	if opts.output != "" && len(paths) > 1 {
		return fmt.Errorf("--output needs a single input, got %d", len(paths))
	}

	var failed []string
	for _, path := range paths {
		src, err := readInput(s, path)
		if err != nil {
			return err
		}
		res, code, err := convertSource(ctx, s, src, !opts.noVars, !opts.noCheck)
		if err != nil {
			return fmt.Errorf("%s: %w", displayName(path), err)
		}
		reportUnrecognized(s, displayName(path), res)
		reportEmpty(s, displayName(path), res)
		if opts.strict && res.HasWarnings() {
			failed = append(failed, displayName(path))
		}

		dest := opts.output
		if dest == "" && path != "-" && s.cfg.OutDir != "" {
			dest = outputPath(s.cfg.OutDir, path)
		}
		if err := writeOutput(s, dest, code); err != nil {
			return err
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("unrecognized lines in %s", strings.Join(failed, ", "))
	}
	return nil
}

// convertSource converts src and substitutes stored variables. With check
// set, a script with lint errors fails with a *SyntaxError. Substitution
// failures are logged and leave the code unchanged.
func convertSource(ctx context.Context, s *session, src string, substitute, check bool) (*converter.Result, string, error) {
	if check {
		if errs := lint.Check(src).Errors(); len(errs) > 0 {
			return nil, "", &SyntaxError{Diagnostics: errs}
		}
	}
	res, err := converter.ConvertResult(src)
	if err != nil {
		return nil, "", err
	}
	s.logger.Debug("converted", "tokens", len(res.Tokens), "unrecognized", len(res.Unrecognized))

	code := res.Code
	if substitute && s.cfg.Substitute {
		vars, err := s.loadVariables(ctx)
		if err != nil {
			s.logger.Warn("variable substitution skipped", "error", err)
		} else {
			code = variables.Substitute(code, vars)
		}
	}
	return res, code, nil
}

func reportUnrecognized(s *session, name string, res *converter.Result) {
	if !res.HasWarnings() {
		return
	}
	fmt.Fprintf(s.errOut, "%s %s: %d line(s) not recognized\n",
		s.styles.Warning("⚠"), name, len(res.Unrecognized))
	for _, u := range res.Unrecognized {
		msg := fmt.Sprintf("  line %d: %s", u.LineNumber, u.Text)
		if kw := converter.Suggest(u.Text); kw != "" {
			msg += s.styles.Muted(fmt.Sprintf(" (did you mean %q?)", kw))
		}
		fmt.Fprintln(s.errOut, msg)
	}
}

// reportEmpty warns when a script converted to no code, such as one made
// only of end lines.
func reportEmpty(s *session, name string, res *converter.Result) {
	if strings.TrimSpace(res.Code) == "" {
		fmt.Fprintf(s.errOut, "%s %s: conversion produced no code\n", s.styles.Warning("⚠"), name)
	}
}

func writeOutput(s *session, dest, code string) error {
	if dest == "" || dest == "-" {
		_, err := fmt.Fprintln(s.out, code)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(dest, []byte(code+"\n"), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	fmt.Fprintf(s.errOut, "%s wrote %s\n", s.styles.Success("✓"), dest)
	return nil
}

// outputPath returns where the converted form of script is written: dir,
// or the script's own directory when dir is empty.
func outputPath(dir, script string) string {
	if dir == "" {
		dir = filepath.Dir(script)
	}
	base := filepath.Base(script)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+OutputExt)
}

func displayName(path string) string {
	if path == "-" {
		return "<stdin>"
	}
	return path
}

// isConversionError reports errors caused by the script rather than I/O.
func isConversionError(err error) bool {
	var syntaxErr *SyntaxError
	return errors.Is(err, converter.ErrEmptyInput) ||
		errors.Is(err, converter.ErrNoRecognizedCommands) ||
		errors.As(err, &syntaxErr)
}
