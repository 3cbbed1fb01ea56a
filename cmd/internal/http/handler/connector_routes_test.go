package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"corpanalyst/cmd/internal/contract"
	"corpanalyst/cmd/internal/service"
	"corpanalyst/cmd/internal/utils/connerr"
	"corpanalyst/cmd/internal/utils/validators"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("database is unreachable")

type stubFilings struct {
	link   *service.FilingLink
	err    error
	text   string
	ticker string
}

func (s *stubFilings) ResolveLink(_ context.Context, ticker string) (*service.FilingLink, error) {
	s.ticker = ticker
	return s.link, s.err
}

func (s *stubFilings) FetchText(context.Context, string, string) (string, error) {
	return s.text, s.err
}

type stubFirmographics struct {
	payload     string
	err         error
	domain      string
	invalidated string
}

func (s *stubFirmographics) Enrich(_ context.Context, domain, _ string) (string, error) {
	s.domain = domain
	return s.payload, s.err
}

func (s *stubFirmographics) Search(context.Context, string) (string, error) {
	return s.payload, s.err
}

func (s *stubFirmographics) Invalidate(_ context.Context, ticker string) error {
	s.invalidated = ticker
	return s.err
}

type stubNetworks struct {
	payload string
	err     error
	req     service.EnrichmentRequest
}

func (s *stubNetworks) Enrich(_ context.Context, req service.EnrichmentRequest) (string, error) {
	s.req = req
	return s.payload, s.err
}

func (s *stubNetworks) Invalidate(context.Context, string) error {
	return s.err
}

type stubReports struct {
	err error
}

func (s *stubReports) ReportInputs(_ context.Context, q *contract.ReportInputsQuery) (*contract.ReportInputsResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &contract.ReportInputsResponse{Ticker: q.Ticker}, nil
}

type fixture struct {
	echo          *echo.Echo
	filings       *stubFilings
	firmographics *stubFirmographics
	networks      *stubNetworks
	reports       *stubReports
}

func newFixture() *fixture {
	validate := validator.New()
	validators.Register(validate)

	f := &fixture{
		echo:          echo.New(),
		filings:       &stubFilings{},
		firmographics: &stubFirmographics{},
		networks:      &stubNetworks{},
		reports:       &stubReports{},
	}

	routes := NewConnectorRoute(f.filings, f.firmographics, f.networks, f.reports, validate)
	f.echo.GET("/api/filings/link", routes.GetFilingLink)
	f.echo.GET("/api/filings/text", routes.GetFilingText)
	f.echo.GET("/api/enrichments/firmographic", routes.GetFirmographic)
	f.echo.GET("/api/enrichments/firmographic/search", routes.SearchFirmographic)
	f.echo.DELETE("/api/enrichments/firmographic/:ticker", routes.DeleteFirmographic)
	f.echo.GET("/api/enrichments/professional-network", routes.GetProfessionalNetwork)
	f.echo.GET("/api/companies/:ticker/report-inputs", routes.GetReportInputs)
	return f
}

func (f *fixture) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) *T {
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return &out
}

func TestGetFilingLink(t *testing.T) {
	f := newFixture()
	f.filings.link = &service.FilingLink{Ticker: "GOOG", URL: "https://sec.gov/goog.htm"}

	rec := f.do(http.MethodGet, "/api/filings/link?ticker=%20goog%20")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "goog", f.filings.ticker)

	resp := decode[contract.FilingLinkResponse](t, rec)
	assert.True(t, resp.Found)
	assert.Equal(t, "GOOG", resp.Ticker)
	assert.Equal(t, "https://sec.gov/goog.htm", resp.URL)
}

func TestGetFilingLink_NotFoundMarker(t *testing.T) {
	f := newFixture()
	f.filings.err = connerr.New(connerr.KindNotFound, "no filing")

	rec := f.do(http.MethodGet, "/api/filings/link?ticker=INVALID_TICKER")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contract.NotFoundMarker, decode[contract.FilingLinkResponse](t, rec).Message)
}

func TestGetFilingLink_ValidationError(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/api/filings/link?ticker=GO%20OG")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ticker")

	rec = f.do(http.MethodGet, "/api/filings/link")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "This field is required")
}

func TestGetFilingText_StoreFailureIs500(t *testing.T) {
	f := newFixture()
	f.filings.err = errStoreDown

	rec := f.do(http.MethodGet, "/api/filings/text?ticker=GOOG&url=https://sec.gov/goog.htm")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetFirmographic(t *testing.T) {
	f := newFixture()
	f.firmographics.payload = `{"data":[{"id":1}]}`

	rec := f.do(http.MethodGet, "/api/enrichments/firmographic?ticker=GOOG&domain=google.com")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "google.com", f.firmographics.domain)

	resp := decode[contract.EnrichmentResponse](t, rec)
	assert.JSONEq(t, `{"data":[{"id":1}]}`, string(resp.Data))
}

func TestSearchFirmographic_Disabled(t *testing.T) {
	f := newFixture()
	f.firmographics.err = connerr.New(connerr.KindDisabled, "ZoomInfo API calls are disabled")

	rec := f.do(http.MethodGet, "/api/enrichments/firmographic/search?name=Google")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetProfessionalNetwork_StructuredError(t *testing.T) {
	f := newFixture()
	f.networks.err = connerr.New(connerr.KindUpstream, "code 404").WithDisplay(`{"status":"error","message":"x"}`)

	rec := f.do(http.MethodGet, "/api/enrichments/professional-network?ticker=GOOG&domain=google.com&name=Google&profile_url=https://www.linkedin.com/company/google/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://www.linkedin.com/company/google/", f.networks.req.ProfileURL)

	resp := decode[contract.EnrichmentResponse](t, rec)
	assert.Equal(t, contract.StatusError, resp.Status)
	assert.JSONEq(t, `{"status":"error","message":"x"}`, string(resp.Data))
}

func TestDeleteFirmographic(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodDelete, "/api/enrichments/firmographic/GOOG")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GOOG", f.firmographics.invalidated)
}

func TestGetReportInputs(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/api/companies/GOOG/report-inputs?domain=google.com")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GOOG", decode[contract.ReportInputsResponse](t, rec).Ticker)

	f.reports.err = errStoreDown
	rec = f.do(http.MethodGet, "/api/companies/GOOG/report-inputs")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
