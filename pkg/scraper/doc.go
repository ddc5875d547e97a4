// Package scraper walks a list of listing pages and saves what it finds.
//
// For every URL the Processor navigates the shared browser page, pauses,
// reads the listing title and VIN, creates a "{title}_{vin}" directory and
// hands the gallery to the image downloader. A failing listing is logged
// and skipped; the batch always runs to the end.
//
// Run wires the whole job together from a config.Config: it reads the URL
// workbook, opens the browser session, processes every URL and closes the
// session exactly once on the way out, panics included.
//
// Usage:
//
//	cfg, err := config.Load("", nil)
//	if err != nil {
//	    return err
//	}
//
//	stats, err := scraper.Run(ctx, cfg, scraper.Deps{})
//	if err != nil {
//	    // setup failed: missing workbook, browser did not start, ...
//	    return err
//	}
//	fmt.Printf("%d/%d listings, %d images\n", stats.Succeeded, stats.Total, stats.ImagesSaved)
package scraper
