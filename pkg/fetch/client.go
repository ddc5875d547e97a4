package fetch

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"listingscraper/pkg/errors"
	"listingscraper/pkg/logger"
)

// Client performs GET requests with the configured headers
type Client struct {
	http   *resty.Client
	logger logger.Logger
}

// Options configures a Client
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

type startKey struct{}

// NewClient creates a new fetch client
func NewClient(opts Options, log logger.Logger) *Client {
	log = logger.OrDefault(log)

	client := resty.New()
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	client.SetHeader("Accept-Language", "en-GB,en;q=0.9")
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	client.SetHeaders(opts.Headers)

	c := &Client{http: client, logger: log}
	client.OnBeforeRequest(c.onBeforeRequest)
	client.OnAfterResponse(c.onAfterResponse)
	return c
}

// SetHeader sets a header sent with every request
func (c *Client) SetHeader(key, value string) {
	c.http.SetHeader(key, value)
}

func (c *Client) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	req.SetContext(context.WithValue(req.Context(), startKey{}, time.Now()))
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL,
	})
	return nil
}

func (c *Client) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	fields := map[string]interface{}{
		"method": res.Request.Method,
		"url":    res.Request.URL,
		"status": res.StatusCode(),
		"bytes":  len(res.Body()),
	}
	if start, ok := res.Request.Context().Value(startKey{}).(time.Time); ok {
		fields["duration"] = time.Since(start)
	}
	c.logger.DebugWithFields("HTTP request completed", fields)
	return nil
}

// Get returns the body of url. Status codes of 400 and above are errors.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeNetwork, err, "GET %s", url)
	}

	if res.IsError() {
		return nil, errors.HTTPStatus(res.StatusCode(), url)
	}

	return res.Body(), nil
}

// Fetch downloads an image body
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	return c.Get(ctx, url)
}

// GetHTML downloads a page as text
func (c *Client) GetHTML(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
