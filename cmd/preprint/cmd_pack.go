package main

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/preprint/internal/pack"
	"github.com/Cyclone1070/preprint/internal/ui/services"
	"github.com/maruel/subcommands"
)

var cmdPack = &subcommands.Command{
	UsageLine: "pack [-style aastex|arxiv] [-exts LIST] [-jpeg] [-maxsize MB] [NAME]",
	ShortDesc: "collect the manuscript and its figures for submission",
	LongDesc: "Writes a flattened, comment-free manuscript with renamed figures and the " +
		"inlined bibliography into the build directory under NAME.",
	CommandRun: func() subcommands.CommandRun {
		c := &packRun{}
		c.registerBaseFlags()
		c.Flags.StringVar(&c.style, "style", "", "journal style (default from config)")
		c.Flags.StringVar(&c.exts, "exts", "", "comma-separated figure extensions in priority order")
		c.Flags.BoolVar(&c.jpeg, "jpeg", false, "rasterise oversized figures (arxiv)")
		c.Flags.Float64Var(&c.maxSize, "maxsize", 0, "figure size in MB above which -jpeg applies")
		c.Flags.BoolVar(&c.plain, "plain", false, "print the report as plain markdown")
		return c
	},
}

type packRun struct {
	commandBase
	style   string
	exts    string
	jpeg    bool
	maxSize float64
	plain   bool
}

func (c *packRun) Run(a subcommands.Application, args []string, _ subcommands.Env) int {
	if len(args) > 1 {
		return usageError(a, "pack takes at most one name")
	}
	deps, err := c.dependencies(a)
	if err != nil {
		return report(a, err)
	}
	master, err := resolveMaster(deps)
	if err != nil {
		return report(a, err)
	}

	opts := pack.OptionsFromConfig(deps.Config)
	opts.Master = master
	if len(args) == 1 {
		opts.Name = args[0]
	}
	if c.style != "" {
		opts.Style = c.style
	}
	if c.exts != "" {
		opts.Exts = splitList(c.exts)
	}
	if c.jpeg {
		opts.JPEG = true
	}
	if c.maxSize > 0 {
		opts.MaxSizeMB = c.maxSize
	}

	ctx, cancel := signalContext()
	defer cancel()

	rep, err := pack.NewPackager(deps.FS, deps.Exec, deps.Config, deps.Log).Run(ctx, opts)
	if err != nil {
		return report(a, err)
	}

	md := rep.Markdown()
	if !c.plain {
		rendered, err := services.NewGlamourRenderer(deps.Config.UI.WordWrap).Render(md, 0)
		if err != nil {
			deps.Log.Debug("markdown rendering failed", "error", err)
		} else {
			md = rendered
		}
	}
	fmt.Fprint(deps.Out, md)
	return 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), ".")); part != "" {
			out = append(out, part)
		}
	}
	return out
}
