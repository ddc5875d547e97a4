package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"listingscraper/pkg/config"
	"listingscraper/pkg/ui"
)

const defaultConfigName = ".listingscraper.yaml"

var forceInit bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage listingscraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (LISTINGSCRAPER_*)
  - Configuration file
  - Default values (lowest priority)`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	Long: `Write a configuration file holding every option at its default value.

The file is created as '.listingscraper.yaml' in the current directory
unless a different path is given with --config.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values,
and check that the input workbook and output directory are usable.`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)

	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = defaultConfigName
	}

	if _, err := os.Stat(configPath); err == nil && !forceInit {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	if err := config.DefaultConfig().Save(configPath); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	printer := ui.Stdout()
	printer.PrintSuccess("Configuration file created: " + configPath)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "1. Adjust the selectors or delays if the listing site differs")
	fmt.Fprintln(out, "2. Run 'listingscraper config validate' to check the configuration")
	fmt.Fprintln(out, "3. Start with 'listingscraper scrape urls.xlsx'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	ui.Stdout().PrintHighlight("Current Configuration")
	fmt.Fprintln(out)
	fmt.Fprint(out, string(data))

	fmt.Fprintln(out, "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(out, "1. Command line flags")
	fmt.Fprintf(out, "2. Environment variables (%s*)\n", config.EnvPrefix)
	if path := resolveConfigFile(); path != "" {
		fmt.Fprintf(out, "3. Configuration file: %s\n", path)
	} else {
		fmt.Fprintln(out, "3. Configuration file: (none found)")
	}
	fmt.Fprintln(out, "4. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := resolveConfigFile()
	if path == "" {
		return fmt.Errorf("no configuration file found, specify one with --config")
	}

	printer := ui.Stdout()
	printer.PrintInfo("Validating configuration", path)

	cfg, err := config.Load(path, nil)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	problems, warnings := checkEnvironment(cfg)

	out := cmd.OutOrStdout()
	if len(problems) > 0 {
		printer.PrintError("Configuration has errors", nil)
		for _, p := range problems {
			fmt.Fprintf(out, "  - %s\n", p)
		}
		return fmt.Errorf("%d configuration error(s)", len(problems))
	}

	if len(warnings) > 0 {
		printer.PrintWarning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
		fmt.Fprintln(out)
	}

	printer.PrintSuccess("Configuration is valid")

	fmt.Fprintln(out, "\nConfiguration summary:")
	fmt.Fprintf(out, "  Input file: %s\n", cfg.Input.File)
	fmt.Fprintf(out, "  Output directory: %s\n", cfg.Output.BaseDirectory)
	fmt.Fprintf(out, "  Engine: %s (headless: %t)\n", cfg.Browser.Engine, cfg.Browser.Headless)
	fmt.Fprintf(out, "  Delay: %d-%ds\n", cfg.Delay.MinSeconds, cfg.Delay.MaxSeconds)
	fmt.Fprintf(out, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}

// resolveConfigFile returns --config, or the first existing default location
func resolveConfigFile() string {
	if configFile != "" {
		return configFile
	}
	for _, p := range config.SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// checkEnvironment looks past the config values at the paths they name
func checkEnvironment(cfg *config.Config) (problems, warnings []string) {
	if _, err := os.Stat(cfg.Input.File); err != nil {
		warnings = append(warnings, fmt.Sprintf("input workbook not found: %s", cfg.Input.File))
	}

	if info, err := os.Stat(cfg.Output.BaseDirectory); err == nil && !info.IsDir() {
		problems = append(problems, fmt.Sprintf("output path is not a directory: %s", cfg.Output.BaseDirectory))
	}

	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}

	if cfg.Browser.Engine == "static" {
		warnings = append(warnings, "static engine does not run page scripts; galleries built client-side will be empty")
	}
	return problems, warnings
}
