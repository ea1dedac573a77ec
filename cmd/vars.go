package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/askvallejos/hatchtest/variables"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

func varsCommand() *cli.Command {
	return &cli.Command{
		Name:  "vars",
		Usage: "Manage substitution variables",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List variables",
				Action: withStore(varsList),
			},
			{
				Name:      "add",
				Usage:     "Add a variable",
				ArgsUsage: "<name> <value...>",
				Action:    withStore(varsAdd),
			},
			{
				Name:      "set",
				Usage:     "Add or update a variable",
				ArgsUsage: "<name> <value...>",
				Action:    withStore(varsSet),
			},
			{
				Name:      "rename",
				Usage:     "Rename a variable",
				ArgsUsage: "<name> <new-name>",
				Action:    withStore(varsRename),
			},
			{
				Name:      "rm",
				Aliases:   []string{"remove"},
				Usage:     "Delete variables",
				ArgsUsage: "<name> [name...]",
				Action:    withStore(varsRemove),
			},
			{
				Name:      "import",
				Usage:     "Set variables from a name = value file",
				ArgsUsage: "<file>",
				Action:    withStore(varsImport),
			},
			{
				Name:      "export",
				Usage:     "Write variables as a name = value file",
				ArgsUsage: "[file]",
				Action:    withStore(varsExport),
			},
		},
	}
}

type storeAction func(ctx context.Context, cmd *cli.Command, s *session, store *variables.SQLiteStore) error

// withStore opens the variables database around a command action.
func withStore(fn storeAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		s := getSession(ctx, cmd)
		store, err := s.openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(ctx, cmd, s, store)
	}
}

func varsList(ctx context.Context, _ *cli.Command, s *session, store *variables.SQLiteStore) error {
	vars, err := store.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(vars) == 0 {
		fmt.Fprintln(s.errOut, "no variables")
		return nil
	}
	t := table.NewWriter()
	t.SetOutputMirror(s.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Value", "Updated"})
	for _, v := range vars {
		t.AppendRow(table.Row{v.Name, v.Value, v.UpdatedAt.Local().Format("2006-01-02 15:04")})
	}
	t.Render()
	return nil
}

// nameValue reads <name> <value...>; the value is the rest of the
// arguments joined by spaces.
func nameValue(cmd *cli.Command) (string, string, error) {
	if cmd.NArg() < 2 {
		return "", "", fmt.Errorf("usage: hatchtest vars %s <name> <value>", cmd.Name)
	}
	return cmd.Args().First(), strings.Join(cmd.Args().Tail(), " "), nil
}

func varsAdd(ctx context.Context, cmd *cli.Command, s *session, store *variables.SQLiteStore) error {
	name, value, err := nameValue(cmd)
	if err != nil {
		return err
	}
	v, err := store.Add(ctx, name, value)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.errOut, "%s added %s\n", s.styles.Success("✓"), v.Name)
	return nil
}

func varsSet(ctx context.Context, cmd *cli.Command, s *session, store *variables.SQLiteStore) error {
	name, value, err := nameValue(cmd)
	if err != nil {
		return err
	}
	v, created, err := store.Set(ctx, name, value)
	if err != nil {
		return err
	}
	verb := "updated"
	if created {
		verb = "added"
	}
	fmt.Fprintf(s.errOut, "%s %s %s\n", s.styles.Success("✓"), verb, v.Name)
	return nil
}

func varsRename(ctx context.Context, cmd *cli.Command, s *session, store *variables.SQLiteStore) error {
	if cmd.NArg() != 2 {
		return fmt.Errorf("usage: hatchtest vars rename <name> <new-name>")
	}
	v, err := store.GetByName(ctx, cmd.Args().Get(0))
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Args().Get(0), err)
	}
	renamed, err := store.Update(ctx, v.ID, cmd.Args().Get(1), "")
	if err != nil {
		return err
	}
	fmt.Fprintf(s.errOut, "%s renamed %s to %s\n", s.styles.Success("✓"), v.Name, renamed.Name)
	return nil
}

func varsRemove(ctx context.Context, cmd *cli.Command, s *session, store *variables.SQLiteStore) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: hatchtest vars rm <name> [name...]")
	}
	var errs []error
	for _, name := range cmd.Args().Slice() {
		v, err := store.GetByName(ctx, name)
		if err == nil {
			err = store.Delete(ctx, v.ID)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		fmt.Fprintf(s.errOut, "%s removed %s\n", s.styles.Success("✓"), name)
	}
	return errors.Join(errs...)
}

func varsImport(ctx context.Context, cmd *cli.Command, s *session, store *variables.SQLiteStore) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("usage: hatchtest vars import <file>")
	}
	var (
		entries []variables.FileEntry
		err     error
	)
	if path := cmd.Args().First(); path == "-" {
		entries, err = variables.Parse(s.in)
	} else {
		entries, err = variables.ReadFile(path)
	}
	if err != nil {
		return err
	}

	added, updated := 0, 0
	for _, e := range entries {
		_, created, err := store.Set(ctx, e.Name, e.Value)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}
		if created {
			added++
		} else {
			updated++
		}
	}
	s.logger.Info("imported variables", "added", added, "updated", updated)
	fmt.Fprintf(s.errOut, "%s %d added, %d updated\n", s.styles.Success("✓"), added, updated)
	return nil
}

func varsExport(ctx context.Context, cmd *cli.Command, s *session, store *variables.SQLiteStore) error {
	vars, err := store.GetAll(ctx)
	if err != nil {
		return err
	}
	if cmd.NArg() == 0 || cmd.Args().First() == "-" {
		_, err := fmt.Fprint(s.out, variables.Format(vars))
		return err
	}
	path := cmd.Args().First()
	if err := variables.WriteFile(path, vars); err != nil {
		return err
	}
	fmt.Fprintf(s.errOut, "%s wrote %d variable(s) to %s\n", s.styles.Success("✓"), len(vars), path)
	return nil
}
