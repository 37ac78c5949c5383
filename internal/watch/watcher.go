// Package watch rebuilds a manuscript whenever its sources change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/Cyclone1070/preprint/internal/config"
	"github.com/fsnotify/fsnotify"
)

type dirFS interface {
	Stat(path string) (os.FileInfo, error)
	WalkDir(root string, fn fs.WalkDirFunc) error
}

// Watcher batches filesystem events under a root directory and runs a
// Handler once per quiet period.
type Watcher struct {
	fsw      *fsnotify.Watcher
	fs       dirFS
	root     string
	filter   *Filter
	handler  Handler
	reporter Reporter
	debounce time.Duration
	log      *slog.Logger
	dirs     int
	rebuild  chan struct{}
}

// NewWatcher registers root and every non-skipped directory below it.
func NewWatcher(fs dirFS, root string, filter *Filter, handler Handler, reporter Reporter, cfg *config.Config, log *slog.Logger) (*Watcher, error) {
	if fs == nil {
		panic("fs is required")
	}
	if filter == nil {
		panic("filter is required")
	}
	if handler == nil {
		panic("handler is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if reporter == nil {
		reporter = NewLogReporter(log)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		fs:       fs,
		root:     root,
		filter:   filter,
		handler:  handler,
		reporter: reporter,
		debounce: time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
		log:      log,
		rebuild:  make(chan struct{}, 1),
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and its descendants.
func (w *Watcher) addTree(dir string) error {
	return w.fs.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			w.log.Debug("skipping unreadable directory", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.filter.SkipDir(path) {
			return fs.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return err
		}
		w.dirs++
		return nil
	})
}

// Run processes events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	w.reporter.Watching(w.root, w.dirs)

	var (
		pending []string
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			path, relevant := w.inspect(ev)
			if !relevant {
				continue
			}
			if !slices.Contains(pending, path) {
				pending = append(pending, path)
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.reporter.WatchError(err)

		case <-w.rebuild:
			if timer != nil {
				timer.Stop()
			}
			fire = nil
			if !w.build(ctx, pending) {
				return nil
			}
			pending = nil

		case <-fire:
			fire = nil
			if !w.build(ctx, pending) {
				return nil
			}
			pending = nil
		}
	}
}

// build runs the handler once. It returns false when ctx was cancelled
// during the run.
func (w *Watcher) build(ctx context.Context, paths []string) bool {
	w.reporter.Triggered(paths)
	start := time.Now()
	err := w.handler.Handle(ctx)
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return false
	}
	w.reporter.Finished(w.handler.Name(), time.Since(start), err)
	return true
}

// Rebuild asks Run to invoke the handler now, whether or not anything
// changed. Requests made while one is already queued are merged.
func (w *Watcher) Rebuild() {
	select {
	case w.rebuild <- struct{}{}:
	default:
	}
}

// inspect registers new directories and reports whether ev is a relevant
// change to a regular file.
func (w *Watcher) inspect(ev fsnotify.Event) (string, bool) {
	if ev.Op == fsnotify.Chmod {
		return "", false
	}
	w.log.Debug("fs event", "op", ev.Op.String(), "path", ev.Name)

	if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
		info, err := w.fs.Stat(ev.Name)
		if err != nil {
			return "", false
		}
		if info.IsDir() {
			if ev.Has(fsnotify.Create) && !w.filter.SkipDir(ev.Name) {
				if err := w.addTree(ev.Name); err != nil {
					w.reporter.WatchError(err)
				}
			}
			return "", false
		}
		if !info.Mode().IsRegular() {
			return "", false
		}
	}
	return ev.Name, w.filter.Match(ev.Name)
}

// Close stops watching without waiting for Run.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
