package scraper

import (
	"context"
	"sync/atomic"

	"listingscraper/pkg/browser"
	"listingscraper/pkg/errors"
)

const (
	titleXPath   = `//div[@class="title-and-highlights"]/h1`
	vinXPath     = `//div[@ng-if="ukVinNumber"]`
	galleryXPath = `//div[@class="image-galleria_wrap"]//img`
)

// fakeListing is the content a mockPage serves for one URL
type fakeListing struct {
	title     string
	vin       string
	images    []string
	navErr    error
	noTitle   bool
	panicking bool
}

// mockPage serves canned listings keyed by URL
type mockPage struct {
	listings map[string]fakeListing
	current  string
	visited  []string
}

func (p *mockPage) Navigate(ctx context.Context, url string) error {
	p.visited = append(p.visited, url)
	l := p.listings[url]
	if l.panicking {
		panic("renderer crashed")
	}
	if l.navErr != nil {
		return l.navErr
	}
	p.current = url
	return nil
}

func (p *mockPage) Text(ctx context.Context, xpath string) (string, error) {
	l := p.listings[p.current]
	switch xpath {
	case titleXPath:
		if l.noTitle {
			return "", errors.New(errors.ErrorTypeExtraction, "no element matches %s", xpath)
		}
		return l.title, nil
	case vinXPath:
		return l.vin, nil
	}
	return "", errors.New(errors.ErrorTypeExtraction, "unexpected xpath %s", xpath)
}

func (p *mockPage) Attributes(ctx context.Context, xpath string) ([]map[string]string, error) {
	l := p.listings[p.current]
	attrs := make([]map[string]string, 0, len(l.images))
	for _, img := range l.images {
		attrs = append(attrs, map[string]string{"hd-url": img})
	}
	return attrs, nil
}

// mockSession counts Close calls
type mockSession struct {
	*mockPage
	closed atomic.Int32
}

func (s *mockSession) Close() error {
	s.closed.Add(1)
	return nil
}

// mockFactory hands out a single session
type mockFactory struct {
	session *mockSession
	err     error
	opened  int
}

func (f *mockFactory) Open(ctx context.Context) (browser.Session, error) {
	f.opened++
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

// imageFetcher returns the URL as the body and fails for listed URLs
type imageFetcher struct {
	fail map[string]bool
}

func (f *imageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.fail[url] {
		return nil, errors.HTTPStatus(500, url)
	}
	return []byte(url), nil
}
