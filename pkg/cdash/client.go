package cdash

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/dkoosis/cdashreport/pkg/record"
)

// Fetcher retrieves one CDash API payload. The cache and the report pipeline
// take a Fetcher so tests can serve payloads without a server.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (record.Record, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) (record.Record, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (record.Record, error) {
	return f(ctx, url)
}

// Client queries the CDash JSON API over HTTP.
type Client struct {
	http *http.Client
}

// NewClient returns a Client backed by a pooled HTTP client.
func NewClient() *Client {
	return &Client{http: cleanhttp.DefaultPooledClient()}
}

// NewClientWith wraps an existing HTTP client.
func NewClientWith(hc *http.Client) *Client {
	return &Client{http: hc}
}

// Fetch issues a GET for url and decodes the JSON object it returns. URLs
// without a scheme are sent over https.
func (c *Client) Fetch(ctx context.Context, url string) (record.Record, error) {
	if !strings.Contains(url, "://") {
		url = "https://" + url
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned from %s", resp.Status, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}
	return DecodePayload(body)
}

// DecodePayload decodes a JSON object into a record.
func DecodePayload(data []byte) (record.Record, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding CDash payload: %w", err)
	}
	return record.FromJSON(raw).(record.Record), nil
}
