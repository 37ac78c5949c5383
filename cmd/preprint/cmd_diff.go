package main

import (
	"fmt"

	"github.com/Cyclone1070/preprint/internal/latexdiff"
	"github.com/Cyclone1070/preprint/internal/vc"
	"github.com/maruel/subcommands"
)

var cmdDiff = &subcommands.Command{
	UsageLine: "diff [-name NAME] PREV_COMMIT",
	ShortDesc: "build a PDF marking the changes since a commit",
	LongDesc: "Flattens the manuscript now and as of PREV_COMMIT, runs latexdiff on the " +
		"two and compiles the result into the build directory.",
	CommandRun: func() subcommands.CommandRun {
		c := &diffRun{}
		c.registerBaseFlags()
		c.Flags.StringVar(&c.name, "name", "", "output name (default current_PREV_COMMIT)")
		return c
	},
}

type diffRun struct {
	commandBase
	name string
}

func (c *diffRun) Run(a subcommands.Application, args []string, _ subcommands.Env) int {
	if len(args) != 1 {
		return usageError(a, "diff needs exactly one commit")
	}
	deps, err := c.dependencies(a)
	if err != nil {
		return report(a, err)
	}
	master, err := resolveMaster(deps)
	if err != nil {
		return report(a, err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := vc.NewStamper(deps.FS, deps.Exec, ".", deps.Log).Run(ctx); err != nil {
		deps.Log.Warn("vc failed", "error", err)
	}

	res, err := latexdiff.NewPipeline(deps.FS, deps.Exec, deps.Config, deps.Log).Run(ctx, c.name, master, args[0])
	if err != nil {
		return report(a, err)
	}
	fmt.Fprintln(deps.Out, res.PDF)
	return 0
}
