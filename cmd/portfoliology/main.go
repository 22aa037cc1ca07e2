package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// register adds every subcommand to c.
func register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(&versionCmd{}, "")

	c.Register(&summaryCmd{}, "valuation")
	c.Register(&analysisCmd{}, "valuation")

	c.Register(&accountsCmd{}, "holdings")
	c.Register(&addAccountCmd{}, "holdings")
	c.Register(&addPositionCmd{}, "holdings")
	c.Register(&importCmd{}, "holdings")
}
