package proxycurl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyProfile_SendsInclusionFlags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, companyPath, r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "https://www.linkedin.com/company/google/", q.Get("url"))
		for _, flag := range []string{"categories", "funding_data", "exit_data", "acquisitions", "extra"} {
			assert.Equal(t, "include", q.Get(flag), flag)
		}
		assert.Equal(t, "if-present", q.Get("use_cache"))
		assert.Equal(t, "on-error", q.Get("fallback_to_cache"))

		_, _ = w.Write([]byte(`{"name":"Google","similar_companies":[{"name":"x"}],"code":null}`))
	}))
	defer srv.Close()

	p, err := NewClient(srv.URL, "key", time.Second).CompanyProfile(context.Background(), "https://www.linkedin.com/company/google/")
	require.NoError(t, err)
	assert.Equal(t, "", p.ErrorCode())
	out, err := p.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Google","similar_companies":[{"name":"x"}],"code":null}`, out)
}

func TestResolveCompany(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, resolvePath, r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "google.com", q.Get("company_domain"))
		assert.Equal(t, "Google", q.Get("company_name"))
		assert.Equal(t, "enrich", q.Get("enrich_profile"))

		_, _ = w.Write([]byte(`{"url":"https://www.linkedin.com/company/google","profile":{"name":"Google"}}`))
	}))
	defer srv.Close()

	p, err := NewClient(srv.URL, "key", time.Second).ResolveCompany(context.Background(), "google.com", "Google")
	require.NoError(t, err)
	out, err := p.JSON()
	require.NoError(t, err)
	assert.Contains(t, out, `"profile":{"name":"Google"}`)
}

func TestGet_ErrorStatusWithCodeIsAProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":404,"description":"Person not found","name":"Not Found"}`))
	}))
	defer srv.Close()

	p, err := NewClient(srv.URL, "key", time.Second).CompanyProfile(context.Background(), "https://x")
	require.NoError(t, err)
	assert.Equal(t, "404", p.ErrorCode())
}

func TestGet_ErrorStatusWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "key", time.Second).CompanyProfile(context.Background(), "https://x")
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestGet_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "key", time.Second).CompanyProfile(context.Background(), "https://x")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestProfile_Trimmed(t *testing.T) {
	p, err := ParseProfile([]byte(`{
		"name": "Google",
		"similar_companies": [], "updates": [], "exit_data": [],
		"affiliated_companies": [], "acquisitions": {},
		"funding_data": [{"amount": 1}]
	}`))
	require.NoError(t, err)

	out, err := p.Trimmed().JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Google","funding_data":[{"amount": 1}]}`, out)

	// The original is untouched.
	orig, err := p.JSON()
	require.NoError(t, err)
	assert.Contains(t, orig, `"updates":[]`)
}

func TestErrorPayload(t *testing.T) {
	assert.Equal(t,
		`{"status":"error","message":"Could not enrich or find the company from Proxy Curl. Error:404"}`,
		ErrorPayload("Could not enrich or find the company from Proxy Curl. Error:404"))
}
