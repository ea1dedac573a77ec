package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v3"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Convert scripts to .cy.js files whenever they change",
		ArgsUsage: "[dir|file.ht]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out-dir",
				Aliases: []string{"d"},
				Usage:   "Directory for .cy.js files (default: next to each script)",
			},
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Wait this long after the last change before converting",
			},
			&cli.BoolFlag{
				Name:  "no-vars",
				Usage: "Skip variable substitution",
			},
			&cli.BoolFlag{
				Name:  "no-check",
				Usage: "Convert even when a script has syntax errors",
			},
		},
		Action: watchAction,
	}
}

func watchAction(ctx context.Context, cmd *cli.Command) error {
	s := getSession(ctx, cmd)
	target := "."
	if cmd.NArg() > 0 {
		target = cmd.Args().First()
	}

	w := &scriptWatcher{
		s:          s,
		outDir:     s.cfg.OutDir,
		debounce:   s.cfg.Watch.Debounce,
		substitute: !cmd.Bool("no-vars"),
		check:      !cmd.Bool("no-check"),
		timers:     map[string]*time.Timer{},
	}
	if cmd.IsSet("out-dir") {
		w.outDir = cmd.String("out-dir")
	}
	if cmd.IsSet("debounce") {
		w.debounce = cmd.Duration("debounce")
	}
	if w.debounce <= 0 {
		return fmt.Errorf("debounce must be positive, got %s", w.debounce)
	}
	return w.run(ctx, target)
}

// scriptWatcher reconverts scripts under a directory, or a single script,
// as they change. Conversions run one at a time.
type scriptWatcher struct {
	s          *session
	outDir     string
	debounce   time.Duration
	substitute bool
	check      bool

	// only restricts events to one script when watching a file.
	only string

	mu     sync.Mutex
	timers map[string]*time.Timer
	convMu sync.Mutex
}

func (w *scriptWatcher) run(ctx context.Context, target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", target, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	var initial []string
	if info.IsDir() {
		initial, err = watchDirRecursive(watcher, target)
		if err != nil {
			return err
		}
	} else {
		w.only = filepath.Clean(target)
		if err := watcher.Add(filepath.Dir(target)); err != nil {
			return err
		}
		initial = []string{w.only}
	}

	w.s.logger.Info("watching", "target", target, "scripts", len(initial), "debounce", w.debounce)
	for _, path := range initial {
		w.convert(ctx, path)
	}

	defer w.stopTimers()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 && w.only == "" {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					scripts, err := watchDirRecursive(watcher, event.Name)
					if err != nil {
						w.s.logger.Error("failed to watch directory", "dir", event.Name, "error", err)
					}
					// Scripts written before the watch was added send no event.
					for _, p := range scripts {
						w.schedule(ctx, filepath.Clean(p))
					}
					continue
				}
			}
			if !w.wants(event.Name) {
				continue
			}
			w.schedule(ctx, filepath.Clean(event.Name))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.s.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *scriptWatcher) wants(path string) bool {
	if w.only != "" {
		return filepath.Clean(path) == w.only
	}
	return strings.EqualFold(filepath.Ext(path), ScriptExt)
}

// schedule converts path once no event for it arrived within the debounce
// interval.
func (w *scriptWatcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.s.logger.Debug("file changed, converting", "file", path)
		w.convert(ctx, path)
	})
}

func (w *scriptWatcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range w.timers {
		t.Stop()
	}
}

func (w *scriptWatcher) convert(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	w.convMu.Lock()
	defer w.convMu.Unlock()

	s := w.s
	src, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("read failed", "file", path, "error", err)
		return
	}
	res, code, err := convertSource(ctx, s, string(src), w.substitute, w.check)
	if err != nil {
		if isConversionError(err) {
			fmt.Fprintf(s.errOut, "%s %s: %v\n", s.styles.Error("✗"), path, err)
			return
		}
		s.logger.Error("convert failed", "file", path, "error", err)
		return
	}
	reportUnrecognized(s, path, res)
	reportEmpty(s, path, res)
	if err := writeOutput(s, outputPath(w.outDir, path), code); err != nil {
		s.logger.Error("write failed", "file", path, "error", err)
	}
}

// watchDirRecursive adds dir and all subdirectories to the watcher and
// returns the scripts found.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) ([]string, error) {
	var scripts []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		if strings.EqualFold(filepath.Ext(path), ScriptExt) {
			scripts = append(scripts, filepath.Clean(path))
		}
		return nil
	})
	return scripts, err
}
