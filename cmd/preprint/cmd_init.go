package main

import (
	"errors"
	"fmt"

	"github.com/Cyclone1070/preprint/internal/config"
	"github.com/Cyclone1070/preprint/internal/tex"
	"github.com/maruel/subcommands"
)

const fallbackMaster = "article.tex"

var cmdInit = &subcommands.Command{
	UsageLine: "init [-master FILE]",
	ShortDesc: "write preprint.json with the default settings",
	LongDesc: "Writes preprint.json in the current directory. The master document is " +
		"taken from -master, else the detected root document, else " + fallbackMaster + ".",
	CommandRun: func() subcommands.CommandRun {
		c := &initRun{}
		c.registerBaseFlags()
		c.Flags.BoolVar(&c.force, "f", false, "overwrite an existing preprint.json")
		return c
	},
}

type initRun struct {
	commandBase
	force bool
}

func (c *initRun) Run(a subcommands.Application, args []string, _ subcommands.Env) int {
	if len(args) != 0 {
		return usageError(a, "init takes no arguments")
	}
	deps, err := c.dependencies(a)
	if err != nil {
		return report(a, err)
	}
	if deps.FS.Exists(config.ProjectFile) && !c.force {
		return report(a, errors.New(config.ProjectFile+" already exists (use -f to overwrite)"))
	}

	cfg := config.DefaultConfig()
	switch {
	case c.master != "":
		cfg.Master = c.master
	default:
		root, err := tex.NewRootFinder(deps.FS, deps.Config, deps.Log).Find(".")
		if err != nil {
			deps.Log.Info("no root document found", "fallback", fallbackMaster)
			root = fallbackMaster
		}
		cfg.Master = root
	}

	if err := config.Save(deps.FS, config.ProjectFile, cfg); err != nil {
		return report(a, err)
	}
	fmt.Fprintf(deps.Out, "wrote %s (master %s)\n", config.ProjectFile, cfg.Master)
	return 0
}
