// Package cli implements the homedeck command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build information, injected by main via SetBuildInfo.
var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var gatewayAddr string

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "homedeck",
	Short: "HomeDeck - hub gateway for home dashboards",
	Long: `HomeDeck sits between dashboards and a home-automation hub.
It keeps a registry of hubs, mirrors the hub's device list, dispatches
commands and scenarios, and keeps the dashboard usable when the hub
drops off the network.`,
}

// SetBuildInfo records the build metadata shown by the version command.
func SetBuildInfo(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&gatewayAddr, "addr", "http://127.0.0.1:8090", "address of a running gateway (for admin commands)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(hubsCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(versionCmd)
}
