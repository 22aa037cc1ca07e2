package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"

	"github.com/bobmcallan/portfoliology/internal/services/portfolio"
	"github.com/bobmcallan/portfoliology/internal/services/report"
)

// analysisCmd holds the flags for the 'analysis' subcommand.
type analysisCmd struct {
	chartDir string
}

func (*analysisCmd) Name() string     { return "analysis" }
func (*analysisCmd) Synopsis() string { return "display portfolio concentration per position" }
func (*analysisCmd) Usage() string {
	return `portfoliology analysis [-charts <dir>]

  Refreshes quotes and lists each position's share of the portfolio market
  value. With -charts, concentration.png and cumulative.png are written to dir.
`
}

func (c *analysisCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.chartDir, "charts", "", "directory to write concentration charts to")
}

func (c *analysisCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	analysis, err := a.PortfolioService.GetAnalysis(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error refreshing positions: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(report.FormatAnalysis(analysis))

	if c.chartDir == "" || len(analysis.Rows) == 0 {
		return subcommands.ExitSuccess
	}
	if err := os.MkdirAll(c.chartDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating chart directory: %v\n", err)
		return subcommands.ExitFailure
	}

	charts := []struct {
		file   string
		render func() ([]byte, error)
	}{
		{"concentration.png", func() ([]byte, error) { return portfolio.RenderConcentrationChart(analysis.Rows) }},
		{"cumulative.png", func() ([]byte, error) { return portfolio.RenderCumulativeConcentrationChart(analysis.Rows) }},
	}
	for _, ch := range charts {
		png, err := ch.render()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering %s: %v\n", ch.file, err)
			return subcommands.ExitFailure
		}
		path := filepath.Join(c.chartDir, ch.file)
		if err := os.WriteFile(path, png, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "wrote %s\n", path)
	}
	return subcommands.ExitSuccess
}
