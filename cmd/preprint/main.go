// Package main provides the preprint command: flatten, diff, package and
// watch LaTeX manuscripts.
package main

import (
	"io"
	"os"

	"github.com/maruel/subcommands"
)

// application lets tests capture what commands print.
type application struct {
	subcommands.DefaultApplication
	out io.Writer
	err io.Writer
}

func (a *application) GetOut() io.Writer { return a.out }
func (a *application) GetErr() io.Writer { return a.err }

func newApplication(out, errOut io.Writer) *application {
	return &application{
		DefaultApplication: subcommands.DefaultApplication{
			Name:  "preprint",
			Title: "Flatten, diff and package LaTeX manuscripts.",
			Commands: []*subcommands.Command{
				cmdInit,
				cmdRoot,
				cmdInline,
				cmdDiff,
				cmdPack,
				cmdWatch,
				subcommands.CmdHelp,
			},
		},
		out: out,
		err: errOut,
	}
}

func main() {
	os.Exit(subcommands.Run(newApplication(os.Stdout, os.Stderr), nil))
}
