package signals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxBodyBytes caps how much of a count response is read.
const maxBodyBytes = 4 << 20

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// NewHTTPClient returns a client whose transport is traced with otelhttp.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// HTTPCounter reads a count from an authenticated REST endpoint of the
// clinic API.
type HTTPCounter struct {
	client *http.Client
	url    string
	token  string
}

// NewHTTPCounter joins baseURL and path into the endpoint URL.
func NewHTTPCounter(client *http.Client, baseURL, path, token string) (*HTTPCounter, error) {
	if client == nil {
		client = NewHTTPClient(0)
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parsing base url %q: %w", baseURL, err)
	}
	ref, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing path %q: %w", path, err)
	}
	return &HTTPCounter{
		client: client,
		url:    base.ResolveReference(ref).String(),
		token:  token,
	}, nil
}

// URL returns the endpoint polled by c.
func (c *HTTPCounter) URL() string {
	return c.url
}

// GetCount performs the GET and extracts the count from the JSON body.
func (c *HTTPCounter) GetCount(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("GET %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return 0, &StatusError{URL: c.url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", c.url, err)
	}
	n, err := ParseCount(body)
	if err != nil {
		return 0, fmt.Errorf("decoding %s: %w", c.url, err)
	}
	return n, nil
}

var errNoCount = errors.New("response carries no count")

// ParseCount extracts a count from a JSON body. A bare number is used as
// is, an array counts its elements, and an object uses its "count" or
// "total" field, or the length of its "data" or "items" array. Numeric
// counts must be whole and within [0, math.MaxInt32].
func ParseCount(body []byte) (int, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return 0, err
	}

	switch t := v.(type) {
	case float64:
		return toCount(t)
	case []any:
		return len(t), nil
	case map[string]any:
		for _, key := range []string{"count", "total"} {
			if n, ok := t[key].(float64); ok {
				return toCount(n)
			}
		}
		for _, key := range []string{"data", "items"} {
			switch inner := t[key].(type) {
			case []any:
				return len(inner), nil
			case map[string]any:
				if n, ok := inner["count"].(float64); ok {
					return toCount(n)
				}
			}
		}
	}
	return 0, errNoCount
}

func toCount(f float64) (int, error) {
	if f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		return 0, fmt.Errorf("count %v is not a whole number in range", f)
	}
	return int(f), nil
}
