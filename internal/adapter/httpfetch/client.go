package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/extractweb/extract-web/internal/domain"
	"github.com/extractweb/extract-web/internal/port"
)

// Client issues plain GET requests for pages and resources
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Ensure Client implements port.Fetcher
var _ port.Fetcher = (*Client)(nil)

// ClientConfig contains optional client configuration
type ClientConfig struct {
	Timeout   time.Duration // Total request timeout, body included (0 = none)
	UserAgent string        // Sent only when non-empty
}

// NewClient creates a client with a 30 second timeout
func NewClient() *Client {
	return NewClientWithConfig(&ClientConfig{Timeout: 30 * time.Second})
}

// NewClientWithConfig creates a client with custom configuration
func NewClientWithConfig(cfg *ClientConfig) *Client {
	if cfg == nil {
		cfg = &ClientConfig{}
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
	}

	return NewClientWithHTTPClient(&http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}, cfg.UserAgent)
}

// NewClientWithHTTPClient wraps an existing http.Client.
// Redirects follow the client's own policy.
func NewClientWithHTTPClient(hc *http.Client, userAgent string) *Client {
	return &Client{
		httpClient: hc,
		userAgent:  userAgent,
	}
}

// Get performs a GET request. The caller must close Response.Body.
// Any status outside 2xx closes the body and returns a *domain.FetchError.
func (c *Client) Get(ctx context.Context, urlStr string) (*port.Response, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, urlStr)
	if err != nil {
		return nil, domain.NewFetchError(urlStr, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, domain.NewStatusError(urlStr, resp.StatusCode)
	}

	return &port.Response{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Length:      resp.ContentLength,
		Body:        &fetchBody{ReadCloser: resp.Body, url: urlStr},
	}, nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, urlStr string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// fetchBody reports body read failures as fetch errors for the original URL
type fetchBody struct {
	io.ReadCloser
	url string
}

func (b *fetchBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err != nil && err != io.EOF {
		return n, domain.NewFetchError(b.url, err)
	}
	return n, err
}
