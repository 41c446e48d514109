// Package app runs the roster tool: the interactive menu session and the
// non-interactive list, archive and history commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rorycl/roster/config"
	"github.com/rorycl/roster/db"
	"github.com/rorycl/roster/internal/logging"
	"github.com/rorycl/roster/internal/watch"
	"github.com/rorycl/roster/roster"
)

// Options are the command-line settings shared by every command. Empty
// values leave the configuration file (or default) setting in place.
type Options struct {
	ConfigPath   string
	DataFile     string
	LogLevel     string
	DatabasePath string
}

// App is the central orchestrator for the application's commands. It
// coordinates configuration, the roster data file and the archive.
type App struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

// New creates an App using the process's standard streams.
func New() *App {
	return NewWithIO(os.Stdin, os.Stdout, os.Stderr)
}

// NewWithIO creates an App reading operator input from stdin, writing
// operator output to stdout and diagnostics to stderr.
func NewWithIO(stdin io.Reader, stdout, stderr io.Writer) *App {
	return &App{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
	}
}

// setup loads the configuration, applies the command-line overrides and
// builds the logger.
func (a *App) setup(opts Options) (*config.Config, *slog.Logger, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		cfg, err = config.Load(opts.ConfigPath)
		if err != nil {
			return nil, nil, err
		}
	}
	if err := cfg.Override(opts.DataFile, opts.LogLevel, opts.DatabasePath); err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(a.stderr, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// Interactive runs the menu session on the configured data file.
func (a *App) Interactive(ctx context.Context, opts Options) error {
	cfg, logger, err := a.setup(opts)
	if err != nil {
		return err
	}

	sessionOpts := SessionOptions{
		DataFile: cfg.DataFile,
		Pause:    cfg.PauseAfterOperation(),
	}

	if cfg.WatchDataFile {
		stop, changed, err := a.watchDataFile(ctx, cfg.DataFile, logger)
		if err != nil {
			return err
		}
		defer stop()
		sessionOpts.ExternalChange = func() bool {
			stop()
			return changed()
		}
	}

	if cfg.Archive.OnExit {
		sessionOpts.OnSaved = func(ctx context.Context, employees []roster.Employee) error {
			_, err := a.archive(ctx, cfg, logger, employees)
			return err
		}
	}

	session := NewSession(a.stdin, a.stdout, logger, sessionOpts)
	return session.Run(ctx)
}

// watchDataFile starts watching path for changes by other programs. stop
// ends the watch and may be called more than once; changed reports whether a
// change was seen.
func (a *App) watchDataFile(ctx context.Context, path string, logger *slog.Logger) (stop func(), changed func() bool, err error) {
	fw, err := watch.NewFileWatcher(path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("could not watch data file: %w", err)
	}
	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := fw.Watch(watchCtx); err != nil {
			logger.Error("data file watch failed", "error", err)
		}
	}()
	stop = func() {
		cancel()
		<-done
	}
	return stop, fw.Changed, nil
}

// List prints the roster held in the data file.
func (a *App) List(ctx context.Context, opts Options) error {
	cfg, logger, err := a.setup(opts)
	if err != nil {
		return err
	}
	employees, err := roster.Load(cfg.DataFile, logger)
	if err != nil {
		return err
	}
	printRoster(a.stdout, employees)
	return nil
}

// Archive copies the roster held in the data file into the archive
// database as a new snapshot.
func (a *App) Archive(ctx context.Context, opts Options) error {
	cfg, logger, err := a.setup(opts)
	if err != nil {
		return err
	}
	employees, err := roster.Load(cfg.DataFile, logger)
	if err != nil {
		return err
	}
	id, err := a.archive(ctx, cfg, logger, employees)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Snapshot %d: %d funcionário(s) arquivado(s) em %s.\n", id, len(employees), cfg.Archive.DatabasePath)
	return nil
}

// openArchive connects to the configured archive database.
func openArchive(cfg *config.Config, logger *slog.Logger) (*db.DB, error) {
	level, err := logging.ParseLevel(cfg.ArchiveLogLevel())
	if err != nil {
		return nil, err
	}
	archiveDB, err := db.NewConnection(cfg.Archive.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	archiveDB.SetLogLevel(level)
	return archiveDB, nil
}

// archive saves employees as a new snapshot.
func (a *App) archive(ctx context.Context, cfg *config.Config, logger *slog.Logger, employees []roster.Employee) (int64, error) {
	archiveDB, err := openArchive(cfg, logger)
	if err != nil {
		return 0, err
	}
	defer archiveDB.Close()

	id, err := archiveDB.SaveSnapshot(ctx, cfg.DataFile, a.now(), employees)
	if err != nil {
		return 0, fmt.Errorf("failed to archive roster: %w", err)
	}
	return id, nil
}

// History lists the archived snapshots or, if snapshotID is not zero, the
// employees held in that snapshot.
func (a *App) History(ctx context.Context, opts Options, snapshotID int64) error {
	cfg, logger, err := a.setup(opts)
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.Archive.DatabasePath); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("archive %q does not exist", cfg.Archive.DatabasePath)
	}

	archiveDB, err := openArchive(cfg, logger)
	if err != nil {
		return err
	}
	defer archiveDB.Close()

	if snapshotID != 0 {
		employees, err := archiveDB.SnapshotEmployees(ctx, snapshotID)
		if err != nil {
			return err
		}
		printRoster(a.stdout, employees)
		return nil
	}

	snapshots, err := archiveDB.Snapshots(ctx)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Fprintln(a.stdout, "Nenhum snapshot arquivado.")
		return nil
	}
	for _, s := range snapshots {
		fmt.Fprintf(a.stdout, "%d. %s  %s  %d funcionário(s)\n",
			s.ID,
			s.TakenAt.Local().Format(time.DateTime),
			s.Source,
			s.EmployeeCount,
		)
	}
	return nil
}

// printRoster writes employees as a numbered list.
func printRoster(w io.Writer, employees []roster.Employee) {
	if len(employees) == 0 {
		fmt.Fprintln(w, msgNoEmployees)
		return
	}
	fmt.Fprintln(w, msgListHeader)
	for i, e := range employees {
		fmt.Fprintf(w, "%d. %s\n", i+1, e)
	}
}
