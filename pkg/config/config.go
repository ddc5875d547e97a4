package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable the scraper reads
const EnvPrefix = "LISTINGSCRAPER_"

// DefaultUserAgent is the desktop Chrome user agent presented to listing sites
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36"

// Config holds all configuration options for the listing scraper
type Config struct {
	Input     InputConfig    `yaml:"input" json:"input"`
	Browser   BrowserConfig  `yaml:"browser" json:"browser"`
	Selectors SelectorConfig `yaml:"selectors" json:"selectors"`
	Delay     DelayConfig    `yaml:"delay" json:"delay"`
	Download  DownloadConfig `yaml:"download" json:"download"`
	Output    OutputConfig   `yaml:"output" json:"output"`
	Logging   LoggingConfig  `yaml:"logging" json:"logging"`
}

// InputConfig describes where listing URLs are read from
type InputConfig struct {
	File       string `yaml:"file" json:"file"`
	Sheet      string `yaml:"sheet" json:"sheet"`
	SkipHeader bool   `yaml:"skip_header" json:"skip_header"`
}

// BrowserConfig holds browser session settings
type BrowserConfig struct {
	// Engine is "chrome" (chromedp) or "static" (plain HTTP + XPath)
	Engine         string        `yaml:"engine" json:"engine"`
	Headless       bool          `yaml:"headless" json:"headless"`
	StartMaximized bool          `yaml:"start_maximized" json:"start_maximized"`
	LogLevel       int           `yaml:"log_level" json:"log_level"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	ExecPath       string        `yaml:"exec_path" json:"exec_path"`
	QueryTimeout   time.Duration `yaml:"query_timeout" json:"query_timeout"`
}

// SelectorConfig holds the XPath expressions used to read a listing page
type SelectorConfig struct {
	Title          string `yaml:"title" json:"title"`
	VIN            string `yaml:"vin" json:"vin"`
	Gallery        string `yaml:"gallery" json:"gallery"`
	ImageAttribute string `yaml:"image_attribute" json:"image_attribute"`
}

// DelayConfig bounds the random pause after each navigation, in seconds
type DelayConfig struct {
	MinSeconds int `yaml:"min_seconds" json:"min_seconds"`
	MaxSeconds int `yaml:"max_seconds" json:"max_seconds"`
}

// DownloadConfig holds image download settings
type DownloadConfig struct {
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
	SanitizeNames bool   `yaml:"sanitize_names" json:"sanitize_names"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			File: "urls.xlsx",
		},
		Browser: BrowserConfig{
			Engine:         "chrome",
			Headless:       false,
			StartMaximized: true,
			LogLevel:       3,
			UserAgent:      DefaultUserAgent,
			QueryTimeout:   10 * time.Second,
		},
		Selectors: SelectorConfig{
			Title:          `//div[@class="title-and-highlights"]/h1`,
			VIN:            `//div[@ng-if="ukVinNumber"]`,
			Gallery:        `//div[@class="image-galleria_wrap"]//img`,
			ImageAttribute: "hd-url",
		},
		Delay: DelayConfig{
			MinSeconds: 3,
			MaxSeconds: 5,
		},
		Download: DownloadConfig{
			Timeout:   30 * time.Second,
			UserAgent: DefaultUserAgent,
		},
		Output: OutputConfig{
			BaseDirectory: ".",
			SanitizeNames: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv(EnvPrefix + "INPUT_FILE"); v != "" {
		c.Input.File = v
	}
	if v := os.Getenv(EnvPrefix + "INPUT_SHEET"); v != "" {
		c.Input.Sheet = v
	}
	if v := os.Getenv(EnvPrefix + "SKIP_HEADER"); v != "" {
		c.Input.SkipHeader = strings.ToLower(v) == "true"
	}

	if v := os.Getenv(EnvPrefix + "ENGINE"); v != "" {
		c.Browser.Engine = v
	}
	if v := os.Getenv(EnvPrefix + "HEADLESS"); v != "" {
		c.Browser.Headless = strings.ToLower(v) == "true"
	}
	if v := os.Getenv(EnvPrefix + "USER_AGENT"); v != "" {
		c.Browser.UserAgent = v
		c.Download.UserAgent = v
	}
	if v := os.Getenv(EnvPrefix + "CHROME_PATH"); v != "" {
		c.Browser.ExecPath = v
	}

	if v := os.Getenv(EnvPrefix + "DELAY_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sDELAY_MIN: %w", EnvPrefix, err))
		} else {
			c.Delay.MinSeconds = n
		}
	}
	if v := os.Getenv(EnvPrefix + "DELAY_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sDELAY_MAX: %w", EnvPrefix, err))
		} else {
			c.Delay.MaxSeconds = n
		}
	}

	if v := os.Getenv(EnvPrefix + "OUTPUT_DIR"); v != "" {
		c.Output.BaseDirectory = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	for _, loc := range SearchPaths() {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// SearchPaths lists the config file locations checked when none is given,
// in order of precedence.
func SearchPaths() []string {
	home := os.Getenv("HOME")
	return []string{
		".listingscraper.yaml",
		".listingscraper.yml",
		filepath.Join(home, ".config", "listingscraper", "config.yaml"),
		filepath.Join(home, ".config", "listingscraper", "config.yml"),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Input.File == "" {
		errs = append(errs, errors.New("input file is required"))
	}

	switch strings.ToLower(c.Browser.Engine) {
	case "chrome", "static":
	default:
		errs = append(errs, fmt.Errorf("unknown browser engine %q", c.Browser.Engine))
	}
	if c.Browser.LogLevel < 0 || c.Browser.LogLevel > 3 {
		errs = append(errs, errors.New("browser log level must be between 0 and 3"))
	}
	if c.Browser.QueryTimeout <= 0 {
		errs = append(errs, errors.New("browser query timeout must be positive"))
	}

	if c.Selectors.Title == "" || c.Selectors.VIN == "" || c.Selectors.Gallery == "" {
		errs = append(errs, errors.New("title, vin and gallery selectors are required"))
	}
	if c.Selectors.ImageAttribute == "" {
		errs = append(errs, errors.New("image attribute is required"))
	}

	if c.Delay.MinSeconds < 0 || c.Delay.MaxSeconds < 0 {
		errs = append(errs, errors.New("delay bounds cannot be negative"))
	}
	if c.Delay.MinSeconds > c.Delay.MaxSeconds {
		errs = append(errs, errors.New("delay min cannot exceed delay max"))
	}

	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["input"].(string); ok && v != "" {
		c.Input.File = v
	}
	if v, ok := flags["sheet"].(string); ok && v != "" {
		c.Input.Sheet = v
	}
	if v, ok := flags["skip-header"].(bool); ok {
		c.Input.SkipHeader = v
	}
	if v, ok := flags["engine"].(string); ok && v != "" {
		c.Browser.Engine = v
	}
	if v, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = v
	}
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.BaseDirectory = v
	}
	if v, ok := flags["raw-names"].(bool); ok && v {
		c.Output.SanitizeNames = false
	}
	if v, ok := flags["delay-min"].(int); ok {
		c.Delay.MinSeconds = v
	}
	if v, ok := flags["delay-max"].(int); ok {
		c.Delay.MaxSeconds = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".listingscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
