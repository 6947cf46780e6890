package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KOMKZ/radiator-exporter/application"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "radiator-exporter [CONFIG.TOML]",
		Short: "OpenMetrics exporter for the Radiator RADIUS server",
		Long: "radiator-exporter connects to Radiator's management port and exposes\n" +
			"the statistics configured in CONFIG.TOML (default: config.toml) as an\n" +
			"OpenMetrics endpoint for Prometheus to scrape.",
		Version:      version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := "config.toml"
			if len(args) == 1 {
				configPath = args[0]
			}
			return application.New(configPath).WithVersion(version).Run()
		},
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
