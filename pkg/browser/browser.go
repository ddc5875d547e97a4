// Package browser drives the page a listing is scraped from.
//
// Two engines implement the same Session interface: a real Chrome
// controlled through chromedp, and a static engine that downloads the HTML
// and evaluates XPath with htmlquery. Both accept the same XPath selectors.
package browser

import (
	"context"
	"strings"
	"time"

	"listingscraper/pkg/config"
	"listingscraper/pkg/errors"
	"listingscraper/pkg/logger"
)

const (
	EngineChrome = "chrome"
	EngineStatic = "static"
)

// DefaultQueryTimeout bounds a single element lookup
const DefaultQueryTimeout = 10 * time.Second

// Page is the read side of a browser tab
type Page interface {
	// Navigate loads url and waits for the document to be ready
	Navigate(ctx context.Context, url string) error
	// Text returns the visible text of the first element matching xpath
	Text(ctx context.Context, xpath string) (string, error)
	// Attributes returns the attributes of every element matching xpath, in
	// document order. No match is not an error.
	Attributes(ctx context.Context, xpath string) ([]map[string]string, error)
}

// Session is a Page that owns browser resources. Close may be called more
// than once.
type Session interface {
	Page
	Close() error
}

// Factory opens sessions
type Factory interface {
	Open(ctx context.Context) (Session, error)
}

// Options configures a Chrome session
type Options struct {
	Headless       bool
	StartMaximized bool
	LogLevel       int
	UserAgent      string
	ExecPath       string
	QueryTimeout   time.Duration
}

// OptionsFromConfig converts the browser config section
func OptionsFromConfig(cfg config.BrowserConfig) Options {
	return Options{
		Headless:       cfg.Headless,
		StartMaximized: cfg.StartMaximized,
		LogLevel:       cfg.LogLevel,
		UserAgent:      cfg.UserAgent,
		ExecPath:       cfg.ExecPath,
		QueryTimeout:   cfg.QueryTimeout,
	}
}

// New returns the factory for the configured engine. fetcher is only used
// by the static engine.
func New(cfg config.BrowserConfig, fetcher PageFetcher, log logger.Logger) (Factory, error) {
	switch strings.ToLower(cfg.Engine) {
	case "", EngineChrome:
		return NewChromeFactory(OptionsFromConfig(cfg), log), nil
	case EngineStatic:
		if fetcher == nil {
			return nil, errors.New(errors.ErrorTypeConfig, "static engine needs an HTTP fetcher")
		}
		return NewStaticFactory(fetcher, log), nil
	default:
		return nil, errors.New(errors.ErrorTypeConfig, "unknown browser engine %q", cfg.Engine)
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
