package browser

import (
	"context"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"listingscraper/pkg/errors"
	"listingscraper/pkg/logger"
)

// PageFetcher downloads a page's HTML
type PageFetcher interface {
	GetHTML(ctx context.Context, url string) (string, error)
}

// StaticFactory opens sessions that read server rendered HTML without a
// browser. Pages that build their content with JavaScript come back empty.
type StaticFactory struct {
	fetcher PageFetcher
	logger  logger.Logger
}

// NewStaticFactory creates a new StaticFactory
func NewStaticFactory(fetcher PageFetcher, log logger.Logger) *StaticFactory {
	return &StaticFactory{fetcher: fetcher, logger: logger.OrDefault(log)}
}

// Open returns a session with no page loaded
func (f *StaticFactory) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeBrowser, err, "open static session")
	}
	f.logger.Debug("Static session opened")
	return &staticSession{fetcher: f.fetcher}, nil
}

type staticSession struct {
	fetcher PageFetcher

	mu     sync.Mutex
	doc    *html.Node
	closed bool
}

func (s *staticSession) Navigate(ctx context.Context, url string) error {
	if s.isClosed() {
		return errors.New(errors.ErrorTypeBrowser, "session is closed")
	}

	body, err := s.fetcher.GetHTML(ctx, url)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeNavigation, err, "navigate to %s", url)
	}

	doc, err := htmlquery.Parse(strings.NewReader(body))
	if err != nil {
		return errors.Wrap(errors.ErrorTypeNavigation, err, "parse %s", url)
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

func (s *staticSession) document() (*html.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New(errors.ErrorTypeBrowser, "session is closed")
	}
	if s.doc == nil {
		return nil, errors.New(errors.ErrorTypeExtraction, "no page loaded")
	}
	return s.doc, nil
}

func (s *staticSession) Text(ctx context.Context, xpath string) (string, error) {
	doc, err := s.document()
	if err != nil {
		return "", err
	}

	node, err := htmlquery.Query(doc, xpath)
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeExtraction, err, "invalid xpath %s", xpath)
	}
	if node == nil {
		return "", errors.New(errors.ErrorTypeExtraction, "no element matches %s", xpath)
	}

	return collapseSpace(htmlquery.InnerText(node)), nil
}

func (s *staticSession) Attributes(ctx context.Context, xpath string) ([]map[string]string, error) {
	doc, err := s.document()
	if err != nil {
		return nil, err
	}

	nodes, err := htmlquery.QueryAll(doc, xpath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeExtraction, err, "invalid xpath %s", xpath)
	}

	result := make([]map[string]string, 0, len(nodes))
	for _, node := range nodes {
		attrs := make(map[string]string, len(node.Attr))
		for _, a := range node.Attr {
			attrs[a.Key] = a.Val
		}
		result = append(result, attrs)
	}
	return result, nil
}

func (s *staticSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *staticSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.doc = nil
	return nil
}
