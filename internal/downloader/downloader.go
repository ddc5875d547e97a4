// Package downloader saves the gallery images of a listing page.
package downloader

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"listingscraper/pkg/browser"
	"listingscraper/pkg/logger"
)

// ImageFetcher downloads an image body. Errors cover both transport
// failures and HTTP statuses of 400 and above.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ImageStore is a listing's output directory
type ImageStore interface {
	Path() string
	// SaveImage persists an image under its 1-based gallery index
	SaveImage(index int, data []byte) (string, error)
}

// ImageJob is one gallery image
type ImageJob struct {
	Index int
	URL   string
}

// ImageResult is the outcome of one ImageJob
type ImageResult struct {
	Job      ImageJob
	Path     string
	Success  bool
	Error    error
	Duration time.Duration
	Size     int
}

// Summary counts what happened to the images of one listing
type Summary struct {
	// Found is the number of gallery elements
	Found int
	Saved int
	// Failed counts fetch or write errors
	Failed int
	// Skipped counts elements without the image attribute and repeated URLs
	Skipped int
	Results []ImageResult
}

// Downloader fetches gallery images one at a time
type Downloader struct {
	fetcher   ImageFetcher
	gallery   string
	attribute string
	logger    logger.Logger
}

// New creates a Downloader. gallery is the XPath of the image elements and
// attribute names the attribute holding each full size image URL.
func New(fetcher ImageFetcher, gallery, attribute string, log logger.Logger) *Downloader {
	return &Downloader{
		fetcher:   fetcher,
		gallery:   gallery,
		attribute: attribute,
		logger:    logger.OrDefault(log),
	}
}

// DownloadGallery saves every distinct gallery image of the loaded page to
// store, named by its position among the gallery elements. A failed image
// is logged and skipped. The returned error is set only when the gallery
// cannot be queried or ctx is cancelled.
func (d *Downloader) DownloadGallery(ctx context.Context, page browser.Page, listingURL string, store ImageStore) (Summary, error) {
	var summary Summary

	elements, err := page.Attributes(ctx, d.gallery)
	if err != nil {
		return summary, fmt.Errorf("query gallery: %w", err)
	}
	summary.Found = len(elements)

	d.logger.DebugWithFields("Gallery images found", map[string]interface{}{
		"url":   listingURL,
		"count": len(elements),
	})

	seen := make(map[string]struct{}, len(elements))
	for i, attrs := range elements {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		raw := strings.TrimSpace(attrs[d.attribute])
		if raw == "" {
			summary.Skipped++
			continue
		}

		imageURL := resolve(listingURL, raw)
		if _, dup := seen[imageURL]; dup {
			summary.Skipped++
			continue
		}

		result := d.downloadOne(ctx, ImageJob{Index: i + 1, URL: imageURL}, store)
		summary.Results = append(summary.Results, result)

		if !result.Success {
			summary.Failed++
			d.logger.WarnWithFields("Error downloading image", map[string]interface{}{
				"image_url": imageURL,
				"index":     i + 1,
				"error":     result.Error.Error(),
			})
			continue
		}

		// only successful saves are remembered
		seen[imageURL] = struct{}{}
		summary.Saved++

		d.logger.InfoWithFields("Saved the image", map[string]interface{}{
			"image_url": imageURL,
			"dir":       store.Path(),
			"file":      result.Path,
		})
	}

	return summary, nil
}

// downloadOne handles a single image
func (d *Downloader) downloadOne(ctx context.Context, job ImageJob, store ImageStore) ImageResult {
	start := time.Now()
	result := ImageResult{Job: job}

	data, err := d.fetcher.Fetch(ctx, job.URL)
	if err != nil {
		result.Error = fmt.Errorf("download failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}
	result.Size = len(data)

	path, err := store.SaveImage(job.Index, data)
	if err != nil {
		result.Error = fmt.Errorf("save failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Path = path
	result.Success = true
	result.Duration = time.Since(start)

	d.logger.DebugWithFields("Image downloaded", map[string]interface{}{
		"index":    job.Index,
		"size":     result.Size,
		"duration": result.Duration,
	})

	return result
}

// resolve makes ref absolute against the listing URL
func resolve(base, ref string) string {
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return ref
	}
	return b.ResolveReference(r).String()
}
