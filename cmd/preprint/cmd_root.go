package main

import (
	"fmt"

	"github.com/Cyclone1070/preprint/internal/tex"
	"github.com/maruel/subcommands"
)

var cmdRoot = &subcommands.Command{
	UsageLine: "root [DIR]",
	ShortDesc: "print the root document under DIR",
	LongDesc:  "Prints the first .tex file under DIR (default .) that declares \\documentclass.",
	CommandRun: func() subcommands.CommandRun {
		c := &rootRun{}
		c.registerBaseFlags()
		return c
	},
}

type rootRun struct {
	commandBase
}

func (c *rootRun) Run(a subcommands.Application, args []string, _ subcommands.Env) int {
	if len(args) > 1 {
		return usageError(a, "root takes at most one directory")
	}
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	deps, err := c.dependencies(a)
	if err != nil {
		return report(a, err)
	}

	root, err := tex.NewRootFinder(deps.FS, deps.Config, deps.Log).Find(dir)
	if err != nil {
		return report(a, err)
	}
	fmt.Fprintln(deps.Out, root)
	return 0
}
