package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/askvallejos/hatchtest/config"
	"github.com/askvallejos/hatchtest/variables"
	"github.com/urfave/cli/v3"
)

// session carries what every command needs once flags and config are
// resolved.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	errOut io.Writer
	in     io.Reader
	styles styles
}

type sessionKey struct{}

func withSession(ctx context.Context, s *session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// getSession returns the session installed by the root Before hook. Commands
// run without it (tests calling actions directly) get defaults that write to
// the command's writers.
func getSession(ctx context.Context, cmd *cli.Command) *session {
	if s, ok := ctx.Value(sessionKey{}).(*session); ok {
		return s
	}
	root := cmd.Root()
	return &session{
		cfg:    &config.Config{Substitute: true, Color: config.ColorNever, LogLevel: "warn"},
		logger: slog.New(slog.DiscardHandler),
		out:    root.Writer,
		errOut: root.ErrWriter,
		in:     root.Reader,
		styles: newStyles(root.ErrWriter, false),
	}
}

// setup is the root Before hook: it loads the config, builds the logger and
// the styles, and stores them in the context.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(config.Options{
		File:      cmd.String("config"),
		Overrides: flagOverrides(cmd),
	})
	if err != nil {
		return ctx, err
	}

	level, err := cfg.Level()
	if err != nil {
		return ctx, err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrWriter, &slog.HandlerOptions{Level: level}))
	if cfg.File != "" {
		logger.Debug("loaded config", "file", cfg.File)
	}

	s := &session{
		cfg:    cfg,
		logger: logger,
		out:    cmd.Writer,
		errOut: cmd.ErrWriter,
		in:     cmd.Reader,
		styles: newStyles(cmd.ErrWriter, colorEnabled(cfg.Color, cmd.ErrWriter)),
	}
	return withSession(ctx, s), nil
}

// flagOverrides maps root flags the user set to config keys.
func flagOverrides(cmd *cli.Command) map[string]interface{} {
	keys := map[string]string{
		"database":  "database",
		"log-level": "log_level",
		"color":     "color",
	}
	out := map[string]interface{}{}
	for flag, key := range keys {
		if cmd.IsSet(flag) {
			out[key] = cmd.String(flag)
		}
	}
	return out
}

// openStore opens the variables database and applies migrations.
func (s *session) openStore() (*variables.SQLiteStore, error) {
	store := variables.NewSQLiteStore()
	if err := store.Open(s.cfg.Database); err != nil {
		return nil, fmt.Errorf("opening variables database: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrating variables database: %w", err)
	}
	s.logger.Debug("opened variables database", "path", s.cfg.Database)
	return store, nil
}

// loadVariables returns the stored variables. A database that was never
// created holds no variables and is not created here.
func (s *session) loadVariables(ctx context.Context) ([]variables.Variable, error) {
	if _, err := os.Stat(s.cfg.Database); os.IsNotExist(err) {
		return nil, nil
	}
	store, err := s.openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.GetAll(ctx)
}
