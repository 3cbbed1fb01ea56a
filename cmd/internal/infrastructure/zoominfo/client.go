package zoominfo

import (
	"bytes"
	"context"
	"encoding/json"
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
	provider        = "zoominfo"
	MaxResponseSize = 10 * 1024 * 1024
)

var (
	ErrUnauthorized      = errors.New("zoominfo rejected the credentials")
	ErrUnexpectedStatus  = errors.New("unexpected status code")
	ErrMalformedResponse = errors.New("malformed zoominfo response")
)

// OutputFields is the field selection sent with every enrich request.
var OutputFields = []string{
	"id", "ticker", "name", "website", "logo", "parentId", "parentName", "SocialMediaUrls",
	"revenue", "employeeCount", "phone", "street", "city", "state", "zipCode", "country",
	"metroArea", "companyStatus", "companyStatusDate", "descriptionList", "sicCodes",
	"naicsCodes", "competitors", "ultimateParentId", "ultimateParentName",
	"ultimateParentRevenue", "ultimateParentEmployees", "subUnitCodes", "subUnitType",
	"subUnitIndustries", "primaryIndustry", "industries", "alexaRank", "revenueRange",
	"employeeRange", "companyFunding", "recentFundingAmount", "recentFundingDate",
	"totalFundingAmount", "businessModel", "departmentBudgets", "employeeCountByDepartment",
}

type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

func NewClient(baseURL, username, password string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	JWT string `json:"jwt"`
}

// Authenticate exchanges the configured username and password for a bearer token.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	body, err := c.do(ctx, "authenticate", http.MethodPost, "/authenticate", "", authRequest{
		Username: c.username,
		Password: c.password,
	})
	if err != nil {
		return "", err
	}

	var auth authResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if auth.JWT == "" {
		return "", fmt.Errorf("%w: authenticate response has no jwt", ErrMalformedResponse)
	}
	return auth.JWT, nil
}

type enrichRequest struct {
	MatchCompanyInput []matchCompanyInput `json:"matchCompanyInput"`
	OutputFields      []string            `json:"outputFields"`
}

type matchCompanyInput struct {
	CompanyWebsite string `json:"companyWebsite"`
}

// EnrichCompany runs a company enrich matched on the website.
func (c *Client) EnrichCompany(ctx context.Context, token, website string) (*EnrichResponse, error) {
	body, err := c.do(ctx, "enrich", http.MethodPost, "/enrich/company", token, enrichRequest{
		MatchCompanyInput: []matchCompanyInput{{CompanyWebsite: website}},
		OutputFields:      OutputFields,
	})
	if err != nil {
		return nil, err
	}
	return parseEnrichResponse(body)
}

// SearchCompanies looks companies up by name. The response is returned as sent.
func (c *Client) SearchCompanies(ctx context.Context, token, name string) (json.RawMessage, error) {
	path := "/search/company?" + url.Values{"name": {name}}.Encode()
	body, err := c.do(ctx, "search", http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, ErrMalformedResponse
	}
	return json.RawMessage(body), nil
}

func (c *Client) do(ctx context.Context, operation, method, path, token string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveRemote(provider, operation, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("zoominfo %s request failed: %w", operation, err)
	}
	defer resp.Body.Close()
	metrics.ObserveRemote(provider, operation, http.StatusText(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("zoominfo %s failed with status code %d: %w", operation, resp.StatusCode, ErrUnexpectedStatus)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read zoominfo %s response: %w", operation, err)
	}
	return body, nil
}

// CompanyWebsite turns a bare or decorated domain into the website filter
// ZoomInfo matches on, e.g. "https://www.google.com/" -> "http://www.google.com".
func CompanyWebsite(domain string) string {
	d := strings.TrimSpace(strings.ToLower(domain))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	d = strings.TrimRight(d, "/")
	return "http://www." + d
}
