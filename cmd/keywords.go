package cmd

import (
	"context"
	"strings"

	"github.com/askvallejos/hatchtest/converter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

// maxCompletions caps the suggestions shown for a prefix.
const maxCompletions = 12

type completion struct {
	kind  string // "keyword" or "variable"
	value string
}

// complete returns keywords then variable names starting with prefix,
// ignoring case, capped at maxCompletions.
func complete(prefix string, varNames []string) []completion {
	lower := strings.ToLower(strings.TrimSpace(prefix))
	if lower == "" {
		return nil
	}
	var out []completion
	for _, kw := range converter.CompleteKeyword(lower) {
		out = append(out, completion{kind: "keyword", value: kw})
	}
	for _, name := range varNames {
		if strings.HasPrefix(strings.ToLower(name), lower) {
			out = append(out, completion{kind: "variable", value: name})
		}
	}
	if len(out) > maxCompletions {
		out = out[:maxCompletions]
	}
	return out
}

func keywordsCommand() *cli.Command {
	return &cli.Command{
		Name:      "keywords",
		Usage:     "List script commands, or complete a prefix",
		ArgsUsage: "[prefix]",
		Action:    keywordsAction,
	}
}

func keywordsAction(ctx context.Context, cmd *cli.Command) error {
	s := getSession(ctx, cmd)

	t := table.NewWriter()
	t.SetOutputMirror(s.out)
	t.SetStyle(table.StyleLight)

	if cmd.NArg() == 0 {
		t.AppendHeader(table.Row{"Keyword", "Usage", "Description"})
		for _, c := range converter.Commands() {
			def := c.Def()
			t.AppendRow(table.Row{def.Keyword, def.Usage, def.Doc})
		}
		t.Render()
		return nil
	}

	vars, err := s.loadVariables(ctx)
	if err != nil {
		s.logger.Warn("variables unavailable for completion", "error", err)
	}
	names := make([]string, 0, len(vars))
	for _, v := range vars {
		names = append(names, v.Name)
	}

	matches := complete(strings.Join(cmd.Args().Slice(), " "), names)
	if len(matches) == 0 {
		return nil
	}
	t.AppendHeader(table.Row{"Kind", "Completion"})
	for _, m := range matches {
		t.AppendRow(table.Row{m.kind, m.value})
	}
	t.Render()
	return nil
}
