package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"listingscraper/pkg/config"
	"listingscraper/pkg/logger"
	"listingscraper/pkg/scraper"
	"listingscraper/pkg/ui"
)

var (
	// Scrape command flags
	outputDir  string
	sheetName  string
	skipHeader bool
	engine     string
	headless   bool
	rawNames   bool
	delayMin   int
	delayMax   int
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape [input.xlsx]",
	Short: "Scrape every listing URL in a workbook",
	Long: `Scrape every listing URL found in the first column of the workbook
(urls.xlsx by default).

For each listing a folder named "<title>_<vin>" is created under the output
directory and the gallery images are saved into it as 1.jpg, 2.jpg, ...`,
	Example: `  # Scrape urls.xlsx in the current directory
  listingscraper scrape

  # Scrape another workbook into ./cars, skipping its header row
  listingscraper scrape stock.xlsx --output ./cars --skip-header

  # Run without a visible browser window
  listingscraper scrape --headless

  # Fetch pages over plain HTTP instead of Chrome
  listingscraper scrape --engine static --delay-min 0 --delay-max 1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	addScrapeFlags(scrapeCmd)
}

func addScrapeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory the listing folders are created in (default: current directory)")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "worksheet to read (default: first sheet)")
	cmd.Flags().BoolVar(&skipHeader, "skip-header", false, "ignore the first row of the sheet")
	cmd.Flags().StringVar(&engine, "engine", "", "page engine: chrome or static")
	cmd.Flags().BoolVar(&headless, "headless", false, "run Chrome without a window")
	cmd.Flags().BoolVar(&rawNames, "raw-names", false, "use title and VIN as folder names without sanitizing")
	cmd.Flags().IntVar(&delayMin, "delay-min", 3, "minimum pause after each page load, in seconds")
	cmd.Flags().IntVar(&delayMax, "delay-max", 5, "maximum pause after each page load, in seconds")
}

// scrapeFlags collects the flags the user actually set, keyed the way
// config.MergeCommandLineFlags expects
func scrapeFlags(cmd *cobra.Command, args []string) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := cmd.Flags().Changed

	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		flags["input"] = strings.TrimSpace(args[0])
	}
	if changed("output") {
		flags["output"] = outputDir
	}
	if changed("sheet") {
		flags["sheet"] = sheetName
	}
	if changed("skip-header") {
		flags["skip-header"] = skipHeader
	}
	if changed("engine") {
		flags["engine"] = strings.ToLower(engine)
	}
	if changed("headless") {
		flags["headless"] = headless
	}
	if changed("raw-names") {
		flags["raw-names"] = rawNames
	}
	if changed("delay-min") {
		flags["delay-min"] = delayMin
	}
	if changed("delay-max") {
		flags["delay-max"] = delayMax
	}

	switch {
	case changed("log-level"):
		flags["log-level"] = logLevel
	case quiet:
		flags["log-level"] = "error"
	}

	return flags
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, scrapeFlags(cmd, args))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.WithField("run_id", uuid.NewString())
	log.WithField("version", version).Info("Listing scraper starting")

	printer := ui.Stdout()
	printer.PrintInfo("Input", cfg.Input.File)
	printer.PrintInfo("Output", cfg.Output.BaseDirectory)
	printer.PrintInfo("Engine", cfg.Browser.Engine)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker := ui.NewStatusTracker(printer)
	stats, err := scraper.Run(ctx, cfg, scraper.Deps{
		Progress: tracker,
		Logger:   log,
	})
	if err != nil {
		log.WithError(err).Error("Scrape aborted")
		return err
	}

	tracker.PrintSummary()
	if ctx.Err() != nil {
		printer.PrintWarning(fmt.Sprintf("Interrupted after %d of %d listing(s)", stats.Succeeded+stats.Failed, stats.Total))
	}
	return nil
}
