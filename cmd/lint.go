package cmd

import (
	"context"
	"fmt"

	"github.com/askvallejos/hatchtest/lint"
	"github.com/urfave/cli/v3"
)

func lintCommand() *cli.Command {
	return &cli.Command{
		Name:      "lint",
		Usage:     "Check scripts for problems before converting",
		ArgsUsage: "<file.ht|-> [file.ht...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "hints",
				Usage: "Also show hints",
			},
		},
		Action: lintAction,
	}
}

func lintAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: hatchtest lint <file.ht|->")
	}
	s := getSession(ctx, cmd)
	showHints := cmd.Bool("hints")

	errCount, warnCount := 0, 0
	for _, path := range cmd.Args().Slice() {
		src, err := readInput(s, path)
		if err != nil {
			return err
		}
		diags := lint.Check(src)
		errCount += len(diags.Errors())
		warnCount += len(diags.Warnings())
		for _, d := range diags {
			if d.Severity == lint.SeverityHint && !showHints {
				continue
			}
			printDiagnostic(s, displayName(path), d)
		}
	}

	if errCount > 0 {
		return fmt.Errorf("%d error(s), %d warning(s)", errCount, warnCount)
	}
	if warnCount > 0 {
		fmt.Fprintf(s.errOut, "%s\n", s.styles.Warning(fmt.Sprintf("%d warning(s)", warnCount)))
		return nil
	}
	fmt.Fprintf(s.errOut, "%s no problems found\n", s.styles.Success("✓"))
	return nil
}

func printDiagnostic(s *session, name string, d lint.Diagnostic) {
	fmt.Fprintf(s.out, "%s %s:%d: %s [%s]\n",
		s.styles.Severity(d.Severity, d.Severity.Symbol()), name, d.Line, d.Message, d.Code)
	if d.Suggestion != "" {
		fmt.Fprintf(s.out, "  %s %s\n", s.styles.Muted("suggestion:"), d.Suggestion)
	}
}
