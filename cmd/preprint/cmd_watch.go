package main

import (
	"log/slog"
	"path/filepath"

	"github.com/Cyclone1070/preprint/internal/executor"
	"github.com/Cyclone1070/preprint/internal/gitutil"
	"github.com/Cyclone1070/preprint/internal/latexdiff"
	"github.com/Cyclone1070/preprint/internal/ui"
	"github.com/Cyclone1070/preprint/internal/ui/services"
	"github.com/Cyclone1070/preprint/internal/vc"
	"github.com/Cyclone1070/preprint/internal/watch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/maruel/subcommands"
)

var cmdWatch = &subcommands.Command{
	UsageLine: "watch [-exts LIST] [-cmd CMD] [-diff[=REF]] [-tui]",
	ShortDesc: "rebuild whenever a source file changes",
	LongDesc: "Watches the current directory and runs the build command, or the diff " +
		"pipeline against REF (default HEAD) with -diff, after each burst of changes.",
	CommandRun: func() subcommands.CommandRun {
		c := &watchRun{}
		c.registerBaseFlags()
		c.Flags.StringVar(&c.exts, "exts", "", "comma-separated extensions to watch (default from config)")
		c.Flags.StringVar(&c.cmd, "cmd", "", "build command, {master} expands to the master (default from config)")
		c.Flags.Var(&c.diff, "diff", "run the diff pipeline against REF instead of the build command")
		c.Flags.BoolVar(&c.tui, "tui", false, "show a full-screen status view")
		return c
	},
}

// optionalRef is a flag usable both as -diff and -diff=REF.
type optionalRef struct {
	set bool
	ref string
}

func (o *optionalRef) String() string   { return o.ref }
func (o *optionalRef) IsBoolFlag() bool { return true }

func (o *optionalRef) Set(v string) error {
	switch v {
	case "true":
		o.set, o.ref = true, "HEAD"
	case "false":
		o.set, o.ref = false, ""
	default:
		o.set, o.ref = true, v
	}
	return nil
}

type watchRun struct {
	commandBase
	exts string
	cmd  string
	diff optionalRef
	tui  bool
}

func (c *watchRun) Run(a subcommands.Application, args []string, _ subcommands.Env) int {
	if len(args) != 0 {
		return usageError(a, "watch takes no arguments")
	}
	deps, err := c.dependencies(a)
	if err != nil {
		return report(a, err)
	}
	master, err := resolveMaster(deps)
	if err != nil {
		return report(a, err)
	}
	cfg := deps.Config

	root, err := filepath.Abs(".")
	if err != nil {
		return report(a, err)
	}

	log, exec := deps.Log, deps.Exec
	if c.tui {
		// Log lines would tear the full-screen view.
		log = slog.New(slog.DiscardHandler)
		exec = executor.NewOSCommandExecutor(cfg, log)
	}

	exts := cfg.Exts
	if c.exts != "" {
		exts = splitList(c.exts)
	}
	command := cfg.Cmd
	if c.cmd != "" {
		command = c.cmd
	}

	matcher, err := gitutil.NewIgnoreMatcher(root, deps.FS, cfg.Watch.Ignore...)
	if err != nil {
		log.Warn("gitignore not applied", "error", err)
	}

	var handler watch.Handler
	var extra []string
	if c.diff.set {
		pipeline := latexdiff.NewPipeline(deps.FS, exec, cfg, log)
		handler = watch.NewDiffHandler(pipeline, master, c.diff.ref)
		extra = append(extra, watch.DiffOutputName(master))
	} else {
		stamp := vc.NewStamper(deps.FS, exec, ".", log)
		handler = watch.NewCompileHandler(stamp, exec, command, master, ".", log)
	}
	filter := watch.NewFilter(root, exts, watch.Ignores(master, cfg.Diff.BuildDir, extra...), cfg.Diff.BuildDir, matcher)

	ctx, cancel := signalContext()
	defer cancel()

	if !c.tui {
		w, err := watch.NewWatcher(deps.FS, root, filter, handler, watch.NewLogReporter(log), cfg, log)
		if err != nil {
			return report(a, err)
		}
		return report(a, w.Run(ctx))
	}

	channels := ui.NewUIChannels()
	u := ui.NewUI(channels, services.NewGlamourRenderer(cfg.UI.WordWrap), ui.DefaultSpinner,
		tea.WithAltScreen(), tea.WithContext(ctx))

	w, err := watch.NewWatcher(deps.FS, root, filter, handler, u, cfg, log)
	if err != nil {
		return report(a, err)
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	go ui.ForwardCommands(ctx, channels.Commands, w)

	uiErr := u.Start()
	interrupted := ctx.Err() != nil
	cancel()
	if err := <-done; err != nil {
		return report(a, err)
	}
	if uiErr != nil && !interrupted {
		return report(a, uiErr)
	}
	return 0
}
