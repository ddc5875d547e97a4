package downloader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"listingscraper/pkg/browser"
	scrapeerrors "listingscraper/pkg/errors"
	"listingscraper/pkg/fetch"
	"listingscraper/pkg/logger"
	"listingscraper/pkg/storage"
)

const (
	gallerySelector = `//div[@class="image-galleria_wrap"]//img`
	attr            = "hd-url"
)

// galleryPage is a browser.Page serving canned gallery attributes
type galleryPage struct {
	elements []map[string]string
	err      error
}

func (p *galleryPage) Navigate(ctx context.Context, url string) error { return nil }

func (p *galleryPage) Text(ctx context.Context, xpath string) (string, error) {
	return "", errors.New("not used")
}

func (p *galleryPage) Attributes(ctx context.Context, xpath string) ([]map[string]string, error) {
	return p.elements, p.err
}

// mapFetcher serves bodies by URL and fails for everything else
type mapFetcher struct {
	bodies map[string][]byte
	calls  []string
}

func (f *mapFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	body, ok := f.bodies[url]
	if !ok {
		return nil, scrapeerrors.HTTPStatus(http.StatusNotFound, url)
	}
	return body, nil
}

// memStore records saved images
type memStore struct {
	saved   map[int][]byte
	failFor int
}

func (s *memStore) Path() string { return "mem" }

func (s *memStore) SaveImage(index int, data []byte) (string, error) {
	if index == s.failFor {
		return "", errors.New("disk full")
	}
	if s.saved == nil {
		s.saved = make(map[int][]byte)
	}
	s.saved[index] = data
	return fmt.Sprintf("mem/%d.jpg", index), nil
}

func TestDownloadGallery(t *testing.T) {
	page := &galleryPage{elements: []map[string]string{
		{attr: "https://img.test/a.jpg"},
		{"src": "thumb.jpg"},
		{attr: "https://img.test/b.jpg"},
		{attr: "https://img.test/a.jpg"},
		{attr: "   "},
		{attr: "https://img.test/c.jpg"},
	}}
	fetcher := &mapFetcher{bodies: map[string][]byte{
		"https://img.test/a.jpg": []byte("A"),
		"https://img.test/b.jpg": []byte("B"),
		"https://img.test/c.jpg": []byte("C"),
	}}
	store := &memStore{}
	log := logger.NewTestLogger()

	summary, err := New(fetcher, gallerySelector, attr, log).
		DownloadGallery(context.Background(), page, "https://cars.test/listing/1", store)
	require.NoError(t, err)

	assert.Equal(t, 6, summary.Found)
	assert.Equal(t, 3, summary.Saved)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 3, summary.Skipped)

	// indexes follow element position, gaps included
	assert.Equal(t, map[int][]byte{1: []byte("A"), 3: []byte("B"), 6: []byte("C")}, store.saved)
	assert.Equal(t, []string{
		"https://img.test/a.jpg",
		"https://img.test/b.jpg",
		"https://img.test/c.jpg",
	}, fetcher.calls)

	assert.Equal(t, 3, log.CountMessage("Saved the image"))
	assert.False(t, log.HasMessage("Error downloading image"))
}

func TestDownloadGalleryFailuresDoNotStop(t *testing.T) {
	page := &galleryPage{elements: []map[string]string{
		{attr: "https://img.test/missing.jpg"},
		{attr: "https://img.test/ok.jpg"},
		{attr: "https://img.test/disk.jpg"},
	}}
	fetcher := &mapFetcher{bodies: map[string][]byte{
		"https://img.test/ok.jpg":   []byte("OK"),
		"https://img.test/disk.jpg": []byte("D"),
	}}
	store := &memStore{failFor: 3}
	log := logger.NewTestLogger()

	summary, err := New(fetcher, gallerySelector, attr, log).
		DownloadGallery(context.Background(), page, "https://cars.test/1", store)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Saved)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, map[int][]byte{2: []byte("OK")}, store.saved)
	require.Len(t, summary.Results, 3)
	assert.True(t, scrapeerrors.Is(summary.Results[0].Error, scrapeerrors.ErrorTypeHTTPStatus))
	assert.Contains(t, summary.Results[2].Error.Error(), "disk full")
	assert.Len(t, log.GetMessagesByLevel("WARN"), 2)
}

func TestDownloadGalleryFailedURLRetriedLater(t *testing.T) {
	page := &galleryPage{elements: []map[string]string{
		{attr: "https://img.test/flaky.jpg"},
		{attr: "https://img.test/flaky.jpg"},
	}}
	fetcher := &mapFetcher{bodies: map[string][]byte{"https://img.test/flaky.jpg": []byte("F")}}
	store := &memStore{failFor: 1}

	summary, err := New(fetcher, gallerySelector, attr, logger.NewNopLogger()).
		DownloadGallery(context.Background(), page, "https://cars.test/1", store)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Saved)
	assert.Equal(t, map[int][]byte{2: []byte("F")}, store.saved)
}

func TestDownloadGalleryEmpty(t *testing.T) {
	summary, err := New(&mapFetcher{}, gallerySelector, attr, nil).
		DownloadGallery(context.Background(), &galleryPage{}, "https://cars.test/1", &memStore{})
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
}

func TestDownloadGalleryQueryError(t *testing.T) {
	page := &galleryPage{err: errors.New("tab crashed")}

	_, err := New(&mapFetcher{}, gallerySelector, attr, logger.NewNopLogger()).
		DownloadGallery(context.Background(), page, "https://cars.test/1", &memStore{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tab crashed")
}

func TestDownloadGalleryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page := &galleryPage{elements: []map[string]string{{attr: "https://img.test/a.jpg"}}}
	fetcher := &mapFetcher{}

	_, err := New(fetcher, gallerySelector, attr, logger.NewNopLogger()).
		DownloadGallery(ctx, page, "https://cars.test/1", &memStore{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fetcher.calls)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"https://cars.test/listing/1", "https://cdn.test/a.jpg", "https://cdn.test/a.jpg"},
		{"https://cars.test/listing/1", "/img/a.jpg", "https://cars.test/img/a.jpg"},
		{"https://cars.test/listing/1", "a.jpg", "https://cars.test/listing/a.jpg"},
		{"https://cars.test/listing/1", "//cdn.test/a.jpg", "https://cdn.test/a.jpg"},
		{"not a url", "a.jpg", "a.jpg"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, resolve(tt.base, tt.ref), "%s + %s", tt.base, tt.ref)
	}
}

// TestDownloadGalleryEndToEnd runs the static engine, the HTTP client and
// the storage layer against a local server
func TestDownloadGalleryEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/listing", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="image-galleria_wrap">
			<img hd-url="/images/1.jpg"><img hd-url="/images/gone.jpg"><img hd-url="/images/1.jpg"><img hd-url="/images/2.jpg">
		</div></body></html>`)
	})
	mux.HandleFunc("/images/1.jpg", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("one")) })
	mux.HandleFunc("/images/2.jpg", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("two")) })
	server := httptest.NewServer(mux)
	defer server.Close()

	client := fetch.NewClient(fetch.Options{Timeout: 5 * time.Second}, logger.NewNopLogger())
	session, err := browser.NewStaticFactory(client, nil).Open(context.Background())
	require.NoError(t, err)
	defer session.Close()

	listingURL := server.URL + "/listing"
	require.NoError(t, session.Navigate(context.Background(), listingURL))

	manager, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)
	dir, _, err := manager.ListingDir("Car_VIN")
	require.NoError(t, err)

	summary, err := New(client, gallerySelector, attr, logger.NewNopLogger()).
		DownloadGallery(context.Background(), session, listingURL, dir)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Found)
	assert.Equal(t, 2, summary.Saved)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Skipped)

	one, err := os.ReadFile(filepath.Join(dir.Path(), "1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "one", string(one))

	two, err := os.ReadFile(filepath.Join(dir.Path(), "4.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(two))

	assert.NoFileExists(t, filepath.Join(dir.Path(), "2.jpg"))
	assert.NoFileExists(t, filepath.Join(dir.Path(), "3.jpg"))
}
