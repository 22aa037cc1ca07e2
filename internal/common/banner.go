package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner writes the server startup banner and logs the effective settings.
func PrintBanner(w io.Writer, config *Config, logger *Logger) {
	serviceURL := fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)

	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 60) + banner.ColorReset

	fmt.Fprintf(w, "\n%s\n\n", hr)
	fmt.Fprintf(w, "%s  PORTFOLIOLOGY  position valuation service%s\n\n", textColor, banner.ColorReset)

	kvLines := [][2]string{
		{"Version", GetFullVersion()},
		{"Environment", config.Environment},
		{"Service URL", serviceURL},
		{"Database", config.Storage.Path},
		{"Workers", fmt.Sprintf("%d", config.Refresh.Concurrency)},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-12s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)

	logger.Info().
		Str("version", GetVersion()).
		Str("environment", config.Environment).
		Str("service_url", serviceURL).
		Str("database", config.Storage.Path).
		Int("workers", config.Refresh.Concurrency).
		Msg("Application started")
}

// PrintShutdownBanner writes the shutdown banner.
func PrintShutdownBanner(w io.Writer, logger *Logger) {
	hr := banner.ColorCyan + strings.Repeat("═", 42) + banner.ColorReset
	fmt.Fprintf(w, "\n%s\n%s  PORTFOLIOLOGY SHUTTING DOWN%s\n%s\n\n",
		hr, banner.ColorBold+banner.ColorWhite, banner.ColorReset, hr)

	logger.Info().Msg("Application shutting down")
}
