package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/bobmcallan/portfoliology/internal/common"
)

type versionCmd struct{}

func (*versionCmd) Name() string             { return "version" }
func (*versionCmd) Synopsis() string         { return "print version information" }
func (*versionCmd) Usage() string            { return "portfoliology version\n" }
func (*versionCmd) SetFlags(f *flag.FlagSet) {}

func (*versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Fprintln(stdout, "portfoliology", common.GetFullVersion())
	return subcommands.ExitSuccess
}
