package proxycurl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"corpanalyst/cmd/internal/metrics"
)

const (
	provider        = "proxycurl"
	MaxResponseSize = 10 * 1024 * 1024

	companyPath = "/proxycurl/api/linkedin/company"
	resolvePath = "/proxycurl/api/linkedin/company/resolve"
)

var ErrUnexpectedStatus = errors.New("unexpected status code")

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

// CompanyProfile looks a company up by its LinkedIn profile URL, asking for
// every optional section and allowing Proxycurl to answer from its own cache.
func (c *Client) CompanyProfile(ctx context.Context, profileURL string) (*Profile, error) {
	return c.get(ctx, "company", companyPath, url.Values{
		"url":               {profileURL},
		"categories":        {"include"},
		"funding_data":      {"include"},
		"exit_data":         {"include"},
		"acquisitions":      {"include"},
		"extra":             {"include"},
		"use_cache":         {"if-present"},
		"fallback_to_cache": {"on-error"},
	})
}

// ResolveCompany finds a company from its domain and name and returns the
// enriched profile.
func (c *Client) ResolveCompany(ctx context.Context, domain, name string) (*Profile, error) {
	return c.get(ctx, "resolve", resolvePath, url.Values{
		"company_domain": {domain},
		"company_name":   {name},
		"enrich_profile": {"enrich"},
	})
}

// get returns a Profile for every response whose body decodes as a JSON
// object, including error responses that carry a code. Other non-2xx
// responses are errors.
func (c *Client) get(ctx context.Context, operation, path string, params url.Values) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveRemote(provider, operation, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("proxycurl %s request failed: %w", operation, err)
	}
	defer resp.Body.Close()
	metrics.ObserveRemote(provider, operation, http.StatusText(resp.StatusCode), time.Since(start).Seconds())

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read proxycurl %s response: %w", operation, err)
	}

	profile, perr := ParseProfile(body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if perr == nil && profile.ErrorCode() != "" {
			return profile, nil
		}
		return nil, fmt.Errorf("proxycurl %s failed with status code %d: %w", operation, resp.StatusCode, ErrUnexpectedStatus)
	}

	if perr != nil {
		return nil, perr
	}
	return profile, nil
}
