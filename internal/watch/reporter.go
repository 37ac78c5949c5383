package watch

import (
	"log/slog"
	"time"
)

// Reporter receives progress from a running Watcher.
type Reporter interface {
	Watching(root string, dirs int)
	Triggered(paths []string)
	Finished(handler string, elapsed time.Duration, err error)
	WatchError(err error)
}

// LogReporter writes progress to a structured logger.
type LogReporter struct {
	log *slog.Logger
}

func NewLogReporter(log *slog.Logger) *LogReporter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &LogReporter{log: log}
}

func (r *LogReporter) Watching(root string, dirs int) {
	r.log.Info("watching for changes", "root", root, "dirs", dirs)
}

func (r *LogReporter) Triggered(paths []string) {
	r.log.Info("change detected", "paths", paths)
}

func (r *LogReporter) Finished(handler string, elapsed time.Duration, err error) {
	if err != nil {
		r.log.Error("build failed", "handler", handler, "elapsed", elapsed.Round(time.Millisecond), "error", err)
		return
	}
	r.log.Info("build finished", "handler", handler, "elapsed", elapsed.Round(time.Millisecond))
}

func (r *LogReporter) WatchError(err error) {
	r.log.Warn("watch error", "error", err)
}
