package secapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"corpanalyst/cmd/internal/metrics"
)

const (
	provider = "sec"

	// MaxResponseSize caps search response bodies. Filing downloads are streamed
	// and not subject to it.
	MaxResponseSize = 10 * 1024 * 1024

	pdfContentType = "application/pdf"
)

var (
	ErrUnexpectedContentType = errors.New("unexpected content type")
	ErrUnexpectedStatus      = errors.New("unexpected status code")
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type searchRequest struct {
	Query string       `json:"query"`
	From  string       `json:"from"`
	Size  string       `json:"size"`
	Sort  []searchSort `json:"sort"`
}

type searchSort struct {
	FiledAt sortOrder `json:"filedAt"`
}

type sortOrder struct {
	Order string `json:"order"`
}

// SearchLatest asks the full-text search endpoint for the single most recent
// filing of formType for ticker. Transport failures and non-2xx statuses are
// errors; a 2xx body is always classified into a SearchResult.
func (c *Client) SearchLatest(ctx context.Context, ticker, formType string) (*SearchResult, error) {
	payload, err := json.Marshal(searchRequest{
		Query: fmt.Sprintf(`ticker:(%s) AND formType:"%s"`, ticker, formType),
		From:  "0",
		Size:  "1",
		Sort:  []searchSort{{FiledAt: sortOrder{Order: "desc"}}},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveRemote(provider, "search", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("sec search request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.ObserveRemote(provider, "search", http.StatusText(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("sec search failed with status code %d: %w", resp.StatusCode, ErrUnexpectedStatus)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read sec search response: %w", err)
	}
	return parseSearchResponse(body), nil
}

// Download streams the filing at filingURL, rendered by the filing-reader
// endpoint, into dst. The response must be a PDF; anything else is rejected
// before a single byte is written.
func (c *Client) Download(ctx context.Context, filingURL string, dst io.Writer) (int64, error) {
	endpoint := c.baseURL + "/filing-reader?" + url.Values{"url": {filingURL}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	c.authorize(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveRemote(provider, "download", "error", time.Since(start).Seconds())
		return 0, fmt.Errorf("sec download request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.ObserveRemote(provider, "download", http.StatusText(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("sec download failed with status code %d: %w", resp.StatusCode, ErrUnexpectedStatus)
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != pdfContentType {
		return 0, fmt.Errorf("got %q, want %s: %w", contentType, pdfContentType, ErrUnexpectedContentType)
	}

	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read filing body: %w", err)
	}
	return n, nil
}

// authorize sets the API key as a header. Keys in the query string would end
// up in every *url.Error the transport returns.
func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", c.apiKey)
}
