package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/amirbrooks/duke/internal/config"
	"github.com/amirbrooks/duke/internal/logging"
	"github.com/amirbrooks/duke/internal/parser"
	"github.com/amirbrooks/duke/internal/store"
	"github.com/amirbrooks/duke/internal/tasklist"
	"github.com/amirbrooks/duke/internal/ui"
)

// app is one session: config, store, parser and the loaded list.
type app struct {
	gf     *GlobalFlags
	cfg    *config.Config
	log    *zap.Logger
	ws     *store.Workspace
	parser *parser.Parser
	render ui.Renderer
	list   *tasklist.List
	dirty  bool
}

func loadConfig(gf *GlobalFlags) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		Root:    store.ExpandHome(gf.Root),
		File:    gf.ConfigFile,
		DotEnv:  ".env",
		Environ: true,
	})
	if err != nil {
		return nil, usageErr(err)
	}
	return cfg, nil
}

func newLogger(gf *GlobalFlags, cfg *config.Config, w io.Writer) *zap.Logger {
	lc := logging.Config{Level: cfg.Log.Level, Encoding: cfg.Log.Encoding}
	switch {
	case gf.Verbose:
		lc.Level = "debug"
	case gf.Quiet:
		lc.Level = "error"
	}
	return logging.New(lc, w)
}

func openApp(gf *GlobalFlags, stderr io.Writer) (*app, error) {
	cfg, err := loadConfig(gf)
	if err != nil {
		return nil, err
	}
	log := newLogger(gf, cfg, stderr)
	root := store.ExpandHome(gf.Root)
	ws := store.Open(root, cfg.Path(root), log)
	list, report, err := ws.Load()
	if err != nil {
		log.Error("loading tasks failed", zap.String("path", ws.TaskFile()), zap.Error(err))
		return nil, internalErr(err)
	}
	if len(report.Skipped) > 0 && !gf.Quiet {
		fmt.Fprintf(stderr, "duke: skipped %d malformed line(s) in %s\n", len(report.Skipped), ws.TaskFile())
	}
	return &app{
		gf:  gf,
		cfg: cfg,
		log: log,
		ws:  ws,
		parser: parser.New(parser.Options{
			Strict:         cfg.Parser.Strict,
			MultiWordNames: cfg.Parser.MultiWordNames,
		}),
		render: ui.Renderer{DateLayout: cfg.Display.DateLayout},
		list:   list,
	}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}

func (a *app) save() error {
	if err := a.ws.Save(a.list); err != nil {
		a.log.Error("saving tasks failed", zap.String("path", a.ws.TaskFile()), zap.Error(err))
		return internalErr(err)
	}
	a.dirty = false
	return nil
}

// handle dispatches one line and writes the rendered result to out. Command
// errors are rendered and returned; the caller decides whether to go on.
func (a *app) handle(line string, out io.Writer) (parser.Outcome, error) {
	o, err := a.parser.Dispatch(line, a.list)
	if err != nil {
		a.log.Debug("command rejected", zap.String("line", line), zap.String("kind", parser.Kind(err)), zap.Error(err))
		if a.gf.JSON {
			fmt.Fprint(out, a.render.RenderErrorJSON(err))
		} else {
			fmt.Fprint(out, a.render.RenderError(err))
		}
		return o, err
	}
	a.log.Debug("command applied", zap.String("command", o.Command.String()), zap.Int("tasks", a.list.Len()))
	if a.gf.JSON {
		fmt.Fprint(out, a.render.RenderJSON(o, a.list))
	} else {
		fmt.Fprint(out, a.render.Render(o, a.list))
	}
	if o.Command.Mutates() {
		a.dirty = true
		if a.cfg.Storage.Autosave {
			if err := a.save(); err != nil {
				return o, err
			}
		}
	}
	return o, nil
}

// session reads lines until bye, EOF or cancellation. A rejected command
// never ends the session. Lines are read on a separate goroutine so that
// cancellation is seen while a read is still blocked.
func (a *app) session(ctx context.Context, in io.Reader, out io.Writer) error {
	if !a.gf.Quiet && !a.gf.JSON {
		fmt.Fprintln(out, ui.Welcome())
	}

	stop := make(chan struct{})
	defer close(stop)
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-stop:
				return
			}
		}
		readErr <- sc.Err()
	}()

loop:
	for {
		select {
		case <-ctx.Done():
			a.log.Debug("session interrupted", zap.Error(ctx.Err()))
			break loop
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return internalErr(err)
				}
				break loop
			}
			o, err := a.handle(line, out)
			if err != nil {
				if _, fatal := err.(*exitError); fatal {
					return err
				}
				continue
			}
			if o.Command == parser.CommandExit {
				break loop
			}
		}
	}
	if a.dirty {
		return a.save()
	}
	return nil
}
