package scraper

import (
	"context"
	"fmt"

	"listingscraper/internal/downloader"
	"listingscraper/pkg/browser"
	"listingscraper/pkg/config"
	"listingscraper/pkg/delay"
	"listingscraper/pkg/errors"
	"listingscraper/pkg/fetch"
	"listingscraper/pkg/logger"
	"listingscraper/pkg/sheet"
	"listingscraper/pkg/storage"
)

// Deps lets callers replace the collaborators Run would otherwise build
// from the config. Zero values mean "use the default".
type Deps struct {
	Factory  browser.Factory
	Fetcher  downloader.ImageFetcher
	Pacer    delay.Pacer
	Progress Progress
	Logger   logger.Logger
	ReadURLs func(path string, opts sheet.Options) ([]string, error)
}

// Run executes one batch. It returns an error only for setup failures; the
// outcome of individual listings is reported in Stats.
func Run(ctx context.Context, cfg *config.Config, deps Deps) (stats Stats, err error) {
	log := logger.OrDefault(deps.Logger)

	readURLs := deps.ReadURLs
	if readURLs == nil {
		readURLs = sheet.ReadURLs
	}

	// the workbook is read before the browser starts so a missing file
	// never launches one
	urls, err := readURLs(cfg.Input.File, sheet.Options{
		Sheet:      cfg.Input.Sheet,
		SkipHeader: cfg.Input.SkipHeader,
	})
	if err != nil {
		return stats, fmt.Errorf("read urls: %w", err)
	}
	log.InfoWithFields("URLs loaded", map[string]interface{}{
		"file":  cfg.Input.File,
		"count": len(urls),
	})

	store, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		return stats, errors.Wrap(errors.ErrorTypeConfig, err, "output directory")
	}

	var client *fetch.Client
	if deps.Fetcher == nil || deps.Factory == nil {
		client = fetch.NewClient(fetch.Options{
			Timeout:   cfg.Download.Timeout,
			UserAgent: cfg.Download.UserAgent,
		}, log)
	}

	fetcher := deps.Fetcher
	if fetcher == nil {
		fetcher = client
	}

	factory := deps.Factory
	if factory == nil {
		factory, err = browser.New(cfg.Browser, client, log)
		if err != nil {
			return stats, err
		}
	}

	session, err := factory.Open(ctx)
	if err != nil {
		return stats, fmt.Errorf("open browser: %w", err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			log.WithError(closeErr).Warn("Failed to close the browser cleanly")
		}
		log.Info("Closed the Web Browser")
	}()

	processor := NewProcessor(cfg, deps.Pacer, store, fetcher, log)
	if deps.Progress != nil {
		processor.SetProgress(deps.Progress)
	}

	stats = processor.ProcessAll(ctx, session, urls)

	log.InfoWithFields("Batch finished", map[string]interface{}{
		"total":        stats.Total,
		"succeeded":    stats.Succeeded,
		"failed":       stats.Failed,
		"images_saved": stats.ImagesSaved,
		"dirs_created": stats.DirsCreated,
		"duration":     stats.Duration,
	})

	return stats, nil
}
