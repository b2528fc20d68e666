package port

import (
	"context"
	"io"
)

// Response is a successful (2xx) HTTP response body with its metadata
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Length      int64 // -1 when unknown
	Body        io.ReadCloser
}

// Fetcher defines the interface for issuing GET requests.
// Transport failures and non-2xx statuses are reported as *domain.FetchError.
type Fetcher interface {
	Get(ctx context.Context, url string) (*Response, error)
}
