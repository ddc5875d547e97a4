package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"listingscraper/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands.
// Called bare it scrapes urls.xlsx in the current directory.
var rootCmd = &cobra.Command{
	Use:   "listingscraper [input.xlsx]",
	Short: "Download vehicle listing photos into one folder per car",
	Long: `listingscraper reads listing URLs from the first column of an Excel
workbook, opens each one in a Chrome session and saves the gallery images
into a folder named after the vehicle title and VIN.

Listings that fail are logged and skipped; the rest of the batch carries on.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.Stdout().SetQuiet(true)
		}
		if cmd.Name() != "help" && cmd.Name() != "list" {
			ui.Stdout().PrintBanner()
		}
	},
	RunE: runScrape,
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.NewPrinter(os.Stderr).PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.listingscraper.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	// The root command scrapes too, so it takes the same flags
	addScrapeFlags(rootCmd)

	rootCmd.SetVersionTemplate(`listingscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
