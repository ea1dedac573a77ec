package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/askvallejos/hatchtest/assist"
	"github.com/askvallejos/hatchtest/variables"
	"github.com/urfave/cli/v3"
)

func promptCommand() *cli.Command {
	return &cli.Command{
		Name:      "prompt",
		Usage:     "Print the model prompt for a plain-English test description",
		ArgsUsage: "<description...>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s := getSession(ctx, cmd)
			p, err := assist.BuildPrompt(strings.Join(cmd.Args().Slice(), " "))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(s.out, p)
			return err
		},
	}
}

func assistCommand() *cli.Command {
	return &cli.Command{
		Name:  "assist",
		Usage: "Turn a model reply into Cypress code",
		Description: "Validates the description, reads the reply a model gave for its prompt " +
			"(see `hatchtest prompt`), strips markdown fences and substitutes variables.",
		ArgsUsage: "<description...>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "reply",
				Aliases: []string{"r"},
				Usage:   "File holding the model reply, - for stdin",
				Value:   "-",
			},
			&cli.BoolFlag{
				Name:  "no-vars",
				Usage: "Skip variable substitution",
			},
		},
		Action: assistAction,
	}
}

func assistAction(ctx context.Context, cmd *cli.Command) error {
	s := getSession(ctx, cmd)
	reply := cmd.String("reply")

	a := &assist.Assistant{
		Generator: assist.GeneratorFunc(func(context.Context, string) (string, error) {
			return readInput(s, reply)
		}),
		Logger: s.logger,
	}
	if s.cfg.Substitute && !cmd.Bool("no-vars") {
		a.Store = sessionStore{s}
	}

	code, err := a.Convert(ctx, strings.Join(cmd.Args().Slice(), " "))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(s.out, strings.TrimRight(code, "\n"))
	return err
}

// sessionStore lists variables from the session's database without creating
// it.
type sessionStore struct{ s *session }

func (st sessionStore) GetAll(ctx context.Context) ([]variables.Variable, error) {
	return st.s.loadVariables(ctx)
}
