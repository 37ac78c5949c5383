package main

import (
	"fmt"

	"github.com/Cyclone1070/preprint/internal/latexdiff"
	"github.com/Cyclone1070/preprint/internal/tex"
	"github.com/Cyclone1070/preprint/internal/ui/services"
	"github.com/maruel/subcommands"
)

var cmdInline = &subcommands.Command{
	UsageLine: "inline [-ref REF] [-o FILE] [-strip] [-color]",
	ShortDesc: "print the master document with every \\input inlined",
	LongDesc: "Flattens the master document from the working tree, or as of a commit " +
		"with -ref. Missing inputs are dropped and reported at debug level.",
	CommandRun: func() subcommands.CommandRun {
		c := &inlineRun{}
		c.registerBaseFlags()
		c.Flags.StringVar(&c.ref, "ref", "", "read the manuscript as of this commit")
		c.Flags.StringVar(&c.output, "o", "", "write to FILE instead of stdout")
		c.Flags.BoolVar(&c.strip, "strip", false, "remove comments")
		c.Flags.BoolVar(&c.color, "color", false, "highlight the output")
		return c
	},
}

type inlineRun struct {
	commandBase
	ref    string
	output string
	strip  bool
	color  bool
}

func (c *inlineRun) Run(a subcommands.Application, args []string, _ subcommands.Env) int {
	if len(args) != 0 {
		return usageError(a, "inline takes no arguments")
	}
	deps, err := c.dependencies(a)
	if err != nil {
		return report(a, err)
	}
	master, err := resolveMaster(deps)
	if err != nil {
		return report(a, err)
	}

	var text string
	if c.ref == "" {
		text, err = tex.NewInliner(deps.FS, deps.Config, deps.Log).InlineFile(master)
	} else {
		text, err = latexdiff.NewPipeline(deps.FS, deps.Exec, deps.Config, deps.Log).FlattenAt(c.ref, master)
	}
	if err != nil {
		return report(a, err)
	}
	if c.strip {
		text = tex.StripComments(text)
	}

	if c.output != "" {
		if err := deps.FS.WriteFileAtomic(c.output, []byte(text), 0644); err != nil {
			return report(a, err)
		}
		deps.Log.Info("wrote flattened document", "path", c.output)
		return 0
	}

	if c.color {
		highlighted, err := services.NewHighlighter(deps.Config.UI.HighlightStyle).Highlight(text)
		if err != nil {
			deps.Log.Warn("highlighting failed", "error", err)
		} else {
			text = highlighted
		}
	}
	fmt.Fprint(deps.Out, text)
	return 0
}
