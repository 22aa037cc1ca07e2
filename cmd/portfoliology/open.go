package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/bobmcallan/portfoliology/internal/app"
	"github.com/bobmcallan/portfoliology/internal/common"
	"github.com/bobmcallan/portfoliology/internal/services/report"
	"github.com/bobmcallan/portfoliology/internal/storage"
)

var configPath = flag.String("config", "", "Path to portfoliology.toml (defaults to $PORTFOLIOLOGY_CONFIG)")

// stdout is where reports are printed.
var stdout io.Writer = os.Stdout

// openApp builds the full application. The quote provider token is required.
func openApp() (*app.App, error) {
	return app.NewApp(*configPath)
}

// openStorage opens only the database, for commands that never fetch quotes.
// The config file is resolved exactly as openApp resolves it so both open the
// same database.
func openStorage() (*storage.Manager, *common.Logger, error) {
	config, err := common.LoadConfig(app.ResolveConfigPath(*configPath))
	if err != nil {
		return nil, nil, err
	}
	logger := common.NewLoggerFromConfig(config.Logging)
	m, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, nil, err
	}
	return m, logger, nil
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	out, err := report.RenderTerminal(md, 120)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
