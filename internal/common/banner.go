package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner to stderr.
func PrintBanner(config *Config, logger *Logger) {
	printBanner(os.Stderr, config)

	build := CurrentBuild()
	logger.Info().
		Str("version", build.Version).
		Str("build", build.Build).
		Str("commit", build.Commit).
		Str("environment", config.Environment).
		Str("service_url", serviceURL(config)).
		Str("ledger", config.Storage.Ledger.Path).
		Str("internal_store", config.Storage.Internal.Address).
		Bool("dev_mode", config.Auth.DevMode).
		Msg("Application started")
}

func serviceURL(config *Config) string {
	return fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)
}

func printBanner(w io.Writer, config *Config) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 64
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	art := []string{
		` ___              _ _                      _`,
		`| __|  _ _ _  __| | |__  ___  __ _ _ _ __| |`,
		`| _| || | ' \/ _' | '_ \/ _ \/ _' | '_/ _' |`,
		`|_| \_,_|_||_\__,_|_.__/\___/\__,_|_| \__,_|`,
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(w, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  Accounts, Positions & Fund Performance%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "\n%s\n\n", hr)

	commission := "disabled"
	if config.Storage.Ledger.CommissionRateColumn {
		commission = "enabled"
	}

	build := CurrentBuild()
	kvPad := 16
	kvLines := [][2]string{
		{"Version", build.Version},
		{"Build", build.Build},
		{"Commit", build.Commit},
		{"Environment", config.Environment},
		{"Service URL", serviceURL(config)},
		{"Ledger", config.Storage.Ledger.Path},
		{"Internal store", config.Storage.Internal.Address},
		{"Commission", commission},
	}
	if config.Auth.DevMode {
		kvLines = append(kvLines, [2]string{"Dev mode", "ON (auth bypassed)"})
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
}

// PrintShutdownBanner displays the application shutdown banner to stderr.
func PrintShutdownBanner(logger *Logger) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 42) + banner.ColorReset

	fmt.Fprintf(os.Stderr, "\n%s\n", hr)
	fmt.Fprintf(os.Stderr, "%s  FUNDBOARD: SHUTTING DOWN%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s\n\n", hr)

	logger.Info().Msg("Application shutting down")
}
