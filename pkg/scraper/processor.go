package scraper

import (
	"context"
	"fmt"
	"time"

	"listingscraper/internal/downloader"
	"listingscraper/pkg/browser"
	"listingscraper/pkg/config"
	"listingscraper/pkg/delay"
	"listingscraper/pkg/errors"
	"listingscraper/pkg/logger"
	"listingscraper/pkg/storage"
)

// Stats summarises a batch
type Stats struct {
	Total       int
	Succeeded   int
	Failed      int
	ImagesSaved int
	// DirsCreated counts listing directories that did not exist before
	DirsCreated int
	Duration    time.Duration
}

// Progress receives per-listing updates. index is 1-based.
type Progress interface {
	ListingStarted(index, total int, url string)
	ListingFinished(index, total int, url string, imagesSaved int, err error)
}

// Processor scrapes listings one after another on a shared page
type Processor struct {
	selectors  config.SelectorConfig
	sanitize   bool
	pacer      delay.Pacer
	store      *storage.Manager
	downloader *downloader.Downloader
	progress   Progress
	logger     logger.Logger
}

// NewProcessor creates a Processor. fetcher downloads gallery images and
// store owns the output directory.
func NewProcessor(cfg *config.Config, pacer delay.Pacer, store *storage.Manager, fetcher downloader.ImageFetcher, log logger.Logger) *Processor {
	log = logger.OrDefault(log)
	if pacer == nil {
		pacer = delay.NewRandom(cfg.Delay.MinSeconds, cfg.Delay.MaxSeconds)
	}

	return &Processor{
		selectors:  cfg.Selectors,
		sanitize:   cfg.Output.SanitizeNames,
		pacer:      pacer,
		store:      store,
		downloader: downloader.New(fetcher, cfg.Selectors.Gallery, cfg.Selectors.ImageAttribute, log),
		logger:     log,
	}
}

// SetProgress registers a progress observer
func (p *Processor) SetProgress(progress Progress) {
	p.progress = progress
}

// ProcessAll scrapes every URL in order. Listing failures are logged and
// counted; only cancellation of ctx stops the loop early.
func (p *Processor) ProcessAll(ctx context.Context, page browser.Page, urls []string) Stats {
	start := time.Now()
	stats := Stats{Total: len(urls)}
	createdBefore := p.store.CreatedCount()

	for i, url := range urls {
		if ctx.Err() != nil {
			p.logger.WarnWithFields("Batch interrupted", map[string]interface{}{
				"remaining": len(urls) - i,
			})
			break
		}

		if p.progress != nil {
			p.progress.ListingStarted(i+1, len(urls), url)
		}

		_, summary, err := p.ProcessListing(ctx, page, url)
		if err != nil {
			stats.Failed++
			p.logger.WithError(err).WithField("url", url).Error("Error processing URL")
		} else {
			stats.Succeeded++
		}
		stats.ImagesSaved += summary.Saved

		if p.progress != nil {
			p.progress.ListingFinished(i+1, len(urls), url, summary.Saved, err)
		}
	}

	stats.DirsCreated = p.store.CreatedCount() - createdBefore
	stats.Duration = time.Since(start)
	return stats
}

// ProcessListing navigates to url, extracts the listing identity, makes
// its directory and downloads the gallery
func (p *Processor) ProcessListing(ctx context.Context, page browser.Page, url string) (Listing, downloader.Summary, error) {
	listing := Listing{URL: url}
	log := p.logger.WithField("url", url)

	log.Info("Processing URL")
	if err := page.Navigate(ctx, url); err != nil {
		return listing, downloader.Summary{}, err
	}

	if err := p.pacer.Pause(ctx); err != nil {
		return listing, downloader.Summary{}, fmt.Errorf("pause after navigation: %w", err)
	}

	title, err := page.Text(ctx, p.selectors.Title)
	if err != nil {
		return listing, downloader.Summary{}, errors.Wrap(errors.ErrorTypeExtraction, err, "listing title")
	}
	listing.Title = CleanTitle(title)

	vin, err := page.Text(ctx, p.selectors.VIN)
	if err != nil {
		return listing, downloader.Summary{}, errors.Wrap(errors.ErrorTypeExtraction, err, "listing VIN")
	}
	listing.VIN = CleanVIN(vin)

	dirName := listing.DirName(p.sanitize)
	dir, created, err := p.store.ListingDir(dirName)
	if err != nil {
		return listing, downloader.Summary{}, err
	}
	if created {
		log.WithField("dir", dir.Path()).Info("Creating folder to save images")
	}

	summary, err := p.downloader.DownloadGallery(ctx, page, url, dir)
	if err != nil {
		return listing, summary, err
	}

	log.InfoWithFields("Listing completed", map[string]interface{}{
		"title":   listing.Title,
		"vin":     listing.VIN,
		"found":   summary.Found,
		"saved":   summary.Saved,
		"failed":  summary.Failed,
		"skipped": summary.Skipped,
	})

	return listing, summary, nil
}
