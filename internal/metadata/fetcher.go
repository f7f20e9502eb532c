package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bozzhik/meta-scraper/internal/domain"
	"github.com/bozzhik/meta-scraper/pkg/httpclient"
)

// ErrFetchFailed marks any failure to retrieve or parse a page.
var ErrFetchFailed = errors.New("fetch failed")

// FetchError carries the URL and the underlying transport or parse error.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() []error { return []error{ErrFetchFailed, e.Err} }

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Snippet    string
}

func (e *StatusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d body: %s", e.StatusCode, e.Snippet)
}

var defaultHeaders = map[string]string{
	"Accept": "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8",
}

// Fetcher retrieves a page and extracts its metadata.
type Fetcher struct {
	client       httpclient.Client
	maxBodyBytes int64
}

// NewFetcher builds a fetcher around client. Bodies larger than maxBodyBytes
// are truncated before parsing.
func NewFetcher(client httpclient.Client, maxBodyBytes int64) *Fetcher {
	return &Fetcher{client: client, maxBodyBytes: maxBodyBytes}
}

// Fetch performs one GET against rawURL. Every failure is a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (domain.Metadata, error) {
	if f == nil || f.client == nil {
		return domain.Metadata{}, &FetchError{URL: rawURL, Err: errors.New("fetcher is not initialized")}
	}

	resp, err := f.client.Get(ctx, rawURL, defaultHeaders)
	if err != nil {
		return domain.Metadata{}, &FetchError{URL: rawURL, Err: err}
	}

	if code := resp.StatusCode(); code < 200 || code > 299 {
		return domain.Metadata{}, &FetchError{URL: rawURL, Err: &StatusError{
			StatusCode: code,
			Snippet:    snippet(resp.Body()),
		}}
	}

	body := resp.Body()
	if f.maxBodyBytes > 0 && int64(len(body)) > f.maxBodyBytes {
		body = body[:f.maxBodyBytes]
	}

	meta, err := Parse(body, resp.Header("Content-Type"))
	if err != nil {
		return domain.Metadata{}, &FetchError{URL: rawURL, Err: err}
	}
	meta.URL = rawURL
	return meta, nil
}

func snippet(body []byte) string {
	const maxLen = 256
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
