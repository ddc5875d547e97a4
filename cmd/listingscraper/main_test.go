package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"listingscraper/pkg/config"
	"listingscraper/pkg/logger"
	"listingscraper/pkg/sheet"
)

func newScrapeCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "scrape"}
	addScrapeFlags(cmd)
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "")
	cmd.SetContext(context.Background())
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func withConfigFile(t *testing.T, path string) {
	t.Helper()
	prev := configFile
	configFile = path
	t.Cleanup(func() { configFile = prev })
}

func TestScrapeFlagsOnlyChanged(t *testing.T) {
	cmd := newScrapeCommand(t, "--output", "/tmp/cars", "--headless", "--delay-min", "0")

	flags := scrapeFlags(cmd, []string{" stock.xlsx "})

	assert.Equal(t, map[string]interface{}{
		"input":     "stock.xlsx",
		"output":    "/tmp/cars",
		"headless":  true,
		"delay-min": 0,
	}, flags)
}

func TestScrapeFlagsAll(t *testing.T) {
	cmd := newScrapeCommand(t,
		"--sheet", "Stock", "--skip-header", "--engine", "STATIC",
		"--raw-names", "--delay-max", "9", "--log-level", "debug")

	flags := scrapeFlags(cmd, nil)

	assert.Equal(t, "Stock", flags["sheet"])
	assert.Equal(t, true, flags["skip-header"])
	assert.Equal(t, "static", flags["engine"])
	assert.Equal(t, true, flags["raw-names"])
	assert.Equal(t, 9, flags["delay-max"])
	assert.Equal(t, "debug", flags["log-level"])
	assert.NotContains(t, flags, "input")

	cfg := config.DefaultConfig()
	cfg.MergeCommandLineFlags(flags)
	assert.False(t, cfg.Output.SanitizeNames)
	assert.True(t, cfg.Input.SkipHeader)
}

func TestScrapeFlagsQuietLowersLogLevel(t *testing.T) {
	quiet = true
	t.Cleanup(func() { quiet = false })

	flags := scrapeFlags(newScrapeCommand(t), nil)
	assert.Equal(t, "error", flags["log-level"])

	flags = scrapeFlags(newScrapeCommand(t, "--log-level", "warn"), nil)
	assert.Equal(t, "warn", flags["log-level"])
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "scraper.yaml")
	withConfigFile(t, path)

	var out bytes.Buffer
	initCmd.SetOut(&out)
	t.Cleanup(func() { initCmd.SetOut(nil) })

	require.NoError(t, runConfigInit(initCmd, nil))
	assert.Contains(t, out.String(), "config validate")

	cfg := config.DefaultConfig()
	cfg.Input.File = "changed.xlsx"
	require.NoError(t, cfg.LoadFromFile(path))
	assert.Equal(t, config.DefaultConfig(), cfg)

	err := runConfigInit(initCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	forceInit = true
	t.Cleanup(func() { forceInit = false })
	assert.NoError(t, runConfigInit(initCmd, nil))
}

func TestConfigShowAndValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scraper.yaml")
	cfg := config.DefaultConfig()
	cfg.Input.File = filepath.Join(dir, "urls.xlsx")
	cfg.Output.BaseDirectory = dir
	require.NoError(t, cfg.Save(path))
	withConfigFile(t, path)

	var out bytes.Buffer
	showCmd.SetOut(&out)
	t.Cleanup(func() { showCmd.SetOut(nil) })
	require.NoError(t, runConfigShow(showCmd, nil))
	assert.Contains(t, out.String(), "image_attribute: hd-url")
	assert.Contains(t, out.String(), "Configuration file: "+path)

	out.Reset()
	validateCmd.SetOut(&out)
	t.Cleanup(func() { validateCmd.SetOut(nil) })
	require.NoError(t, runConfigValidate(validateCmd, nil))
	assert.Contains(t, out.String(), "input workbook not found")
	assert.Contains(t, out.String(), "Engine: chrome")
}

func TestCheckEnvironment(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	cfg := config.DefaultConfig()
	cfg.Input.File = file
	cfg.Output.BaseDirectory = file
	cfg.Browser.Engine = "static"

	problems, warnings := checkEnvironment(cfg)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "not a directory")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "static engine")
}

func TestURLsCreateAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.xlsx")

	var out bytes.Buffer
	urlsCreateCmd.SetOut(&out)
	urlsListCmd.SetOut(&out)
	t.Cleanup(func() {
		urlsCreateCmd.SetOut(nil)
		urlsListCmd.SetOut(nil)
	})

	require.NoError(t, runURLsCreate(urlsCreateCmd, []string{path, "https://cars.test/1", "https://cars.test/2"}))
	assert.Contains(t, out.String(), "Wrote 2 URL(s)")

	out.Reset()
	require.NoError(t, runURLsList(urlsListCmd, []string{path}))
	assert.Equal(t, "https://cars.test/1\nhttps://cars.test/2\n", out.String())

	err := runURLsList(urlsListCmd, []string{filepath.Join(t.TempDir(), "missing.xlsx")})
	assert.Error(t, err)
}

func TestRunScrapeStaticEngine(t *testing.T) {
	t.Cleanup(func() { logger.SetLogger(logger.NewNopLogger()) })

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/listing", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<div class="title-and-highlights"><h1>Mazda MX-5</h1></div>
			<div ng-if="ukVinNumber">VIN: JMZND*</div>
			<div class="image-galleria_wrap">
				<img hd-url="%[1]s/img/front.jpg">
				<img hd-url="/img/rear.jpg">
			</div></body></html>`, server.URL)
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.URL.Path))
	})

	dir := t.TempDir()
	input := filepath.Join(dir, "urls.xlsx")
	require.NoError(t, sheet.Write(input, []string{server.URL + "/listing"}))

	confPath := filepath.Join(dir, "scraper.yaml")
	require.NoError(t, config.DefaultConfig().Save(confPath))
	withConfigFile(t, confPath)

	out := filepath.Join(dir, "out")
	cmd := newScrapeCommand(t,
		"--engine", "static", "--output", out,
		"--delay-min", "0", "--delay-max", "0", "--log-level", "error")

	require.NoError(t, runScrape(cmd, []string{input}))

	data, err := os.ReadFile(filepath.Join(out, "Mazda MX-5_JMZND", "1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "/img/front.jpg", string(data))

	data, err = os.ReadFile(filepath.Join(out, "Mazda MX-5_JMZND", "2.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "/img/rear.jpg", string(data))
}

func TestRunScrapeMissingInput(t *testing.T) {
	t.Cleanup(func() { logger.SetLogger(logger.NewNopLogger()) })

	dir := t.TempDir()
	confPath := filepath.Join(dir, "scraper.yaml")
	require.NoError(t, config.DefaultConfig().Save(confPath))
	withConfigFile(t, confPath)

	cmd := newScrapeCommand(t, "--log-level", "error", "--output", dir)
	err := runScrape(cmd, []string{filepath.Join(dir, "absent.xlsx")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.xlsx")
}
