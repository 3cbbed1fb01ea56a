package service

import (
	"context"
	"errors"
	"testing"

	"corpanalyst/cmd/internal/config"
	"corpanalyst/cmd/internal/domain/database/repository"
	"corpanalyst/cmd/internal/domain/entity"
	"corpanalyst/cmd/internal/utils/connerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const googleProfile = `{"name":"Google","website":"https://goo.gle","similar_companies":[{"name":"Meta"}],"updates":[{"text":"hi"}],"exit_data":[],"affiliated_companies":[],"acquisitions":{"acquired":[]}}`

var googleRequest = EnrichmentRequest{
	ProfileURL: "https://www.linkedin.com/company/google/",
	Domain:     "google.com",
	Name:       "Google",
	Ticker:     "GOOG",
}

type professionalNetworkFixture struct {
	svc    *ProfessionalNetworkService
	repo   *repository.DefaultProfessionalNetworkRepository
	client *fakeProxycurl
}

func newProfessionalNetworkFixture(t *testing.T, enabled bool, ttl int) *professionalNetworkFixture {
	repo := repository.NewProfessionalNetworkRepository(openStore(t))
	client := &fakeProxycurl{profile: googleProfile}

	svc := NewProfessionalNetworkService(repo, client, config.Proxycurl{Enabled: enabled, TTLDays: ttl})
	svc.Now = fixedNow
	return &professionalNetworkFixture{svc: svc, repo: repo, client: client}
}

func (f *professionalNetworkFixture) seed(t *testing.T, payload string, age int) {
	require.NoError(t, f.repo.Upsert(context.Background(), &entity.ProfessionalNetworkEnrichment{
		Ticker: "GOOG", NubelaEnrichmentData: payload, LastUpdateDate: daysAgo(age),
	}))
}

func TestProfessionalNetworkEnrich_PrimaryLookupIsTrimmedAndStored(t *testing.T) {
	f := newProfessionalNetworkFixture(t, true, 60)

	payload, err := f.svc.Enrich(context.Background(), googleRequest)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Google","website":"https://goo.gle"}`, payload)
	assert.Equal(t, 1, f.client.profileCalls)
	assert.Equal(t, 0, f.client.resolveCalls)

	row, err := f.repo.FindByTicker(context.Background(), "GOOG")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, payload, row.NubelaEnrichmentData)
	assert.Equal(t, "https://www.linkedin.com/company/google/", row.LinkedinCompanyProfile)
	assert.Equal(t, "google.com", row.CompanyDomain)
	assert.Equal(t, "Google", row.CompanyName)
}

func TestProfessionalNetworkEnrich_ErrorCodeFallsBackToResolveOnce(t *testing.T) {
	f := newProfessionalNetworkFixture(t, true, 60)
	f.client.profile = `{"code":"something"}`
	f.client.resolved = `{"url":"https://www.linkedin.com/company/google","profile":{"name":"Google"},"updates":[]}`

	payload, err := f.svc.Enrich(context.Background(), googleRequest)
	require.NoError(t, err)
	assert.Equal(t, 1, f.client.profileCalls)
	assert.Equal(t, 1, f.client.resolveCalls)
	assert.JSONEq(t, `{"url":"https://www.linkedin.com/company/google","profile":{"name":"Google"}}`, payload)

	row, err := f.repo.FindByTicker(context.Background(), "GOOG")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, payload, row.NubelaEnrichmentData)
}

func TestProfessionalNetworkEnrich_FallbackErrorIsStructuredAndNotStored(t *testing.T) {
	f := newProfessionalNetworkFixture(t, true, 60)
	f.client.profile = `{"code":"something"}`
	f.client.resolved = `{"code":404,"description":"Not found"}`

	payload, err := f.svc.Enrich(context.Background(), googleRequest)
	assert.Empty(t, payload)
	assert.Equal(t, 1, f.client.resolveCalls)
	assert.Equal(t, connerr.KindUpstream, connerr.KindOf(err))

	var ce *connerr.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, `{"status":"error","message":"Could not enrich or find the company from Proxy Curl. Error:404"}`, ce.Display)

	resp := ToEnrichmentResp("GOOG", payload, err)
	assert.Equal(t, "error", resp.Status)
	assert.JSONEq(t, ce.Display, string(resp.Data))

	row, err := f.repo.FindByTicker(context.Background(), "GOOG")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestProfessionalNetworkEnrich_TransportErrorDisplay(t *testing.T) {
	f := newProfessionalNetworkFixture(t, true, 60)
	f.client.profileErr = errors.New("dial tcp: i/o timeout")

	_, err := f.svc.Enrich(context.Background(), googleRequest)
	assert.Equal(t, connerr.KindNetwork, connerr.KindOf(err))

	var ce *connerr.Error
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, ce.Display, "Could not enrich this company from linkedin:dial tcp: i/o timeout")
	assert.Equal(t, 0, f.client.resolveCalls)
}

func TestProfessionalNetworkEnrich_WithoutProfileURLResolvesDirectly(t *testing.T) {
	f := newProfessionalNetworkFixture(t, true, 60)
	f.client.resolved = `{"name":"Google"}`

	req := googleRequest
	req.ProfileURL = ""
	_, err := f.svc.Enrich(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, f.client.profileCalls)
	assert.Equal(t, 1, f.client.resolveCalls)
}

func TestProfessionalNetworkEnrich_ConfigurableTTL(t *testing.T) {
	f := newProfessionalNetworkFixture(t, true, 14)
	f.seed(t, `{"cached":true}`, 13)

	payload, err := f.svc.Enrich(context.Background(), googleRequest)
	require.NoError(t, err)
	assert.Equal(t, `{"cached":true}`, payload)
	assert.Equal(t, 0, f.client.profileCalls)

	f.seed(t, `{"cached":true}`, 14)
	payload, err = f.svc.Enrich(context.Background(), googleRequest)
	require.NoError(t, err)
	assert.NotEqual(t, `{"cached":true}`, payload)
	assert.Equal(t, 1, f.client.profileCalls)
}

func TestProfessionalNetworkEnrich_DisabledMode(t *testing.T) {
	f := newProfessionalNetworkFixture(t, false, 60)

	_, err := f.svc.Enrich(context.Background(), googleRequest)
	assert.Equal(t, connerr.KindDisabled, connerr.KindOf(err))
	assert.True(t, connerr.IsAbsent(err))

	f.seed(t, `{"old":true}`, 500)
	payload, err := f.svc.Enrich(context.Background(), googleRequest)
	require.NoError(t, err)
	assert.Equal(t, `{"old":true}`, payload)
	assert.Equal(t, 0, f.client.profileCalls)
}

func TestProfessionalNetworkInvalidate(t *testing.T) {
	f := newProfessionalNetworkFixture(t, true, 60)
	f.seed(t, `{}`, 1)

	require.NoError(t, f.svc.Invalidate(context.Background(), "GOOG"))
	row, err := f.repo.FindByTicker(context.Background(), "GOOG")
	require.NoError(t, err)
	assert.Nil(t, row)
}
