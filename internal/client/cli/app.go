package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/nathanhfoster/turbo-sub002/internal/client/config"
	"github.com/nathanhfoster/turbo-sub002/internal/client/repositories/entries"
	"github.com/nathanhfoster/turbo-sub002/internal/client/repositories/metadata"
	"github.com/nathanhfoster/turbo-sub002/internal/client/services"
	"github.com/nathanhfoster/turbo-sub002/internal/client/store"
	"github.com/nathanhfoster/turbo-sub002/internal/client/transform"
	"github.com/nathanhfoster/turbo-sub002/internal/debounce"
	"github.com/nathanhfoster/turbo-sub002/internal/logging"
)

type App struct {
	config  *config.Config
	entries services.EntryService
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	// interactive enables prompts; off when stdin is not a terminal.
	interactive bool
	closeStore  func() error
	closed      bool
}

// NewApp opens the store described by c and wires the entry service on top
// of it. Logs go to stderr, user output to stdout.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(os.Stderr, c.LogLevel, c.LogFormat)
	p := transform.New(log)

	h := store.NewHandle(func(ctx context.Context) (*store.Gateway, error) {
		opts := []store.Option{store.WithOpTimeout(c.OpTimeout), store.WithLogger(log)}
		if c.SeedWelcomeEntry {
			opts = append(opts, store.WithSeed(store.EntriesCollection, services.WelcomeRecord(p, time.Now())))
		}
		return store.Open(ctx, c.DBPath, opts...)
	})
	g, err := h.Get(ctx)
	if err != nil {
		log.Error(ctx, "error opening database", "path", c.DBPath, "error", err)
		return nil, err
	}

	es := services.NewEntryService(
		entries.NewSQLiteRepository(g, p),
		metadata.NewSQLiteRepository(g.DB()),
		services.WithPipeline(p),
		services.WithLogger(log),
		services.WithVersioner(g),
		services.WithScheduler(debounce.New(c.SaveDebounce)),
	)
	if err := es.Load(ctx); err != nil {
		_ = h.Close()
		return nil, err
	}

	a := newApp(c, es, os.Stdin, os.Stdout, log)
	a.interactive = term.IsTerminal(int(os.Stdin.Fd()))
	a.closeStore = h.Close
	return a, nil
}

func newApp(c *config.Config, es services.EntryService, in io.Reader, out io.Writer, log logging.Logger) *App {
	if c == nil {
		c = &config.Config{}
		c.LoadDefaults()
	}
	return &App{
		config:  c,
		entries: es,
		log:     log,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	if a.interactive {
		fmt.Fprintln(a.out, "Diary shell (type 'help' for commands)")
	}
	runREPL(ctx, a, a.reader, a.out, a.prompt)
	return a.Close(ctx)
}

// Close saves pending edits and closes the store. Later calls do nothing.
func (a *App) Close(ctx context.Context) error {
	if a.closed {
		return nil
	}
	a.closed = true

	err := a.entries.Close(ctx)
	if a.closeStore != nil {
		err = errors.Join(err, a.closeStore())
	}
	if err != nil {
		a.log.Error(ctx, "error closing diary", "error", err)
	}
	return err
}

func (a *App) prompt() string {
	if !a.interactive {
		return ""
	}
	st, err := a.entries.Stats(context.Background())
	if err != nil || st.Dirty == 0 {
		return "diary> "
	}
	return fmt.Sprintf("diary (%d unsaved)> ", st.Dirty)
}
