package browser

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"listingscraper/pkg/errors"
	"listingscraper/pkg/logger"
)

const navigateTimeout = 2 * time.Minute

// ChromeFactory launches a local Chrome through chromedp
type ChromeFactory struct {
	opts   Options
	logger logger.Logger
}

// NewChromeFactory creates a new ChromeFactory
func NewChromeFactory(opts Options, log logger.Logger) *ChromeFactory {
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = DefaultQueryTimeout
	}
	return &ChromeFactory{opts: opts, logger: logger.OrDefault(log)}
}

// Flags returns the command line switches passed to Chrome on top of the
// chromedp defaults
func (o Options) Flags() map[string]interface{} {
	flags := map[string]interface{}{
		"headless":        o.Headless,
		"start-maximized": o.StartMaximized,
		"log-level":       strconv.Itoa(o.LogLevel),
	}
	if o.UserAgent != "" {
		flags["user-agent"] = o.UserAgent
	}
	return flags
}

func (f *ChromeFactory) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for name, value := range f.opts.Flags() {
		opts = append(opts, chromedp.Flag(name, value))
	}
	if !f.opts.Headless {
		// chromedp's defaults assume a headless browser
		opts = append(opts, chromedp.Flag("hide-scrollbars", false), chromedp.Flag("mute-audio", false))
	}
	if f.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(f.opts.ExecPath))
	}
	return opts
}

// Open launches the browser. The returned session must be closed.
func (f *ChromeFactory) Open(ctx context.Context) (Session, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, f.allocatorOptions()...)

	chromeLog := func(format string, args ...interface{}) {
		f.logger.Debug(fmt.Sprintf(format, args...))
	}
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(chromeLog),
		chromedp.WithErrorf(chromeLog),
	)

	// an empty Run starts the browser
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, errors.Wrap(errors.ErrorTypeBrowser, err, "launch chrome")
	}

	f.logger.InfoWithFields("Browser started", map[string]interface{}{
		"headless":   f.opts.Headless,
		"user_agent": f.opts.UserAgent,
	})

	return &chromeSession{
		ctx:          browserCtx,
		queryTimeout: f.opts.QueryTimeout,
		cancel: func() error {
			err := chromedp.Cancel(browserCtx)
			cancelBrowser()
			cancelAlloc()
			return err
		},
	}, nil
}

type chromeSession struct {
	ctx          context.Context
	queryTimeout time.Duration
	cancel       func() error
	closeOnce    sync.Once
	closeErr     error
}

// runCtx derives a context from the browser that also ends when the
// caller's ctx does
func (s *chromeSession) runCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := s.runCtx(ctx, navigateTimeout)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return errors.Wrap(errors.ErrorTypeNavigation, err, "navigate to %s", url)
	}
	return nil
}

func (s *chromeSession) Text(ctx context.Context, xpath string) (string, error) {
	runCtx, cancel := s.runCtx(ctx, s.queryTimeout)
	defer cancel()

	var text string
	if err := chromedp.Run(runCtx, chromedp.Text(xpath, &text, chromedp.BySearch)); err != nil {
		return "", errors.Wrap(errors.ErrorTypeExtraction, err, "text of %s", xpath)
	}
	return text, nil
}

func (s *chromeSession) Attributes(ctx context.Context, xpath string) ([]map[string]string, error) {
	runCtx, cancel := s.runCtx(ctx, s.queryTimeout)
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(runCtx, chromedp.Nodes(xpath, &nodes, chromedp.BySearch, chromedp.AtLeast(0))); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeExtraction, err, "query %s", xpath)
	}

	result := make([]map[string]string, 0, len(nodes))
	for _, node := range nodes {
		result = append(result, nodeAttributes(node))
	}
	return result, nil
}

// nodeAttributes turns cdp's flat name/value list into a map
func nodeAttributes(node *cdp.Node) map[string]string {
	node.RLock()
	defer node.RUnlock()

	attrs := make(map[string]string, len(node.Attributes)/2)
	for i := 0; i+1 < len(node.Attributes); i += 2 {
		attrs[node.Attributes[i]] = node.Attributes[i+1]
	}
	return attrs
}

func (s *chromeSession) Close() error {
	s.closeOnce.Do(func() {
		if err := s.cancel(); err != nil {
			s.closeErr = errors.Wrap(errors.ErrorTypeBrowser, err, "close chrome")
		}
	})
	return s.closeErr
}
