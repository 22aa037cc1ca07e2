package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/bobmcallan/portfoliology/internal/services/report"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	asJSON bool
	raw    bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "refresh quotes and display the positions table" }
func (*summaryCmd) Usage() string {
	return `portfoliology summary [-json] [-raw]

  Fetches the latest quote for every position and prints the valuation
  table, largest market value first, with a totals row.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.asJSON, "json", false, "print the summary as JSON")
	f.BoolVar(&c.raw, "raw", false, "print Markdown without terminal styling")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	summary, err := a.PortfolioService.GetSummary(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error refreshing positions: %v\n", err)
		return subcommands.ExitFailure
	}

	switch {
	case c.asJSON:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding summary: %v\n", err)
			return subcommands.ExitFailure
		}
	case c.raw:
		fmt.Fprint(stdout, report.FormatSummary(summary))
	default:
		printMarkdown(report.FormatSummary(summary))
	}
	return subcommands.ExitSuccess
}
