// Package watch reports changes made to a single file by other programs.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// defaultFlushDuration sets the time given to wait for multiple editor writes
const defaultFlushDuration time.Duration = 25 * time.Millisecond

// changeOps are the operations that alter the watched file's contents.
const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// FileWatcher watches one file for changes. The file need not exist yet, but
// its directory must.
type FileWatcher struct {
	dir           string
	base          string
	watcher       *fsnotify.Watcher
	flushDuration time.Duration
	changed       atomic.Bool
	log           *slog.Logger
}

// NewFileWatcher registers a watcher for path.
//
// fsnotify watches directories more reliably than single files, since
// editors commonly replace a file rather than write to it, so the file's
// directory is watched and events for other files are ignored.
func NewFileWatcher(path string, logger *slog.Logger) (*FileWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve %q: %w", path, err)
	}
	fw := &FileWatcher{
		dir:           filepath.Dir(abs),
		base:          filepath.Base(abs),
		flushDuration: defaultFlushDuration,
		log:           logger,
	}

	check, err := os.Stat(fw.dir)
	if err != nil {
		return nil, fmt.Errorf("dir %q not found: %w", fw.dir, err)
	}
	if !check.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", fw.dir)
	}

	fw.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify new watcher error: %w", err)
	}
	if err := fw.watcher.Add(fw.dir); err != nil {
		_ = fw.watcher.Close()
		return nil, fmt.Errorf("fsnotify add error for dir %q: %w", fw.dir, err)
	}
	return fw, nil
}

// Watch records changes to the file until ctx is cancelled, returning nil
// in that case. A change seen within the flush window before cancellation is
// still recorded. Watch blocks, so needs to be run in a goroutine. The
// underlying fsnotify watcher is closed on return.
func (fw *FileWatcher) Watch(ctx context.Context) error {

	// eventChan buffers bursts of writes from a single save.
	eventChan := make(chan struct{})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return errors.New("unexpected close from watcher.Errors")
				}
				return fmt.Errorf("unexpected notify error: %w", err)
			case e, ok := <-fw.watcher.Events:
				if !ok {
					return errors.New("unexpected close from watcher.Events")
				}
				if !e.Has(changeOps) || filepath.Base(e.Name) != fw.base {
					continue
				}
				select {
				case eventChan <- struct{}{}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	})

	// Writes within flushDuration of each other are reported once.
	g.Go(func() error {
		pending := false
		timer := time.NewTicker(fw.flushDuration)
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				if pending {
					fw.markChanged()
				}
				return ctx.Err()
			case <-eventChan:
				pending = true
				timer.Reset(fw.flushDuration)
			case <-timer.C:
				if pending {
					fw.markChanged()
					pending = false
				}
			}
		}
	})

	err := g.Wait()
	_ = fw.watcher.Close()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (fw *FileWatcher) markChanged() {
	fw.changed.Store(true)
	fw.log.Warn("data file changed on disk", "file", filepath.Join(fw.dir, fw.base))
}

// Changed reports whether the file has changed since the watcher started,
// including a change still settling when the watch was stopped.
func (fw *FileWatcher) Changed() bool {
	return fw.changed.Load()
}
