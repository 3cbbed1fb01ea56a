package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"corpanalyst/cmd/internal/domain/database"
	"corpanalyst/cmd/internal/domain/entity"
	"corpanalyst/cmd/internal/infrastructure/proxycurl"
	"corpanalyst/cmd/internal/infrastructure/secapi"
	"corpanalyst/cmd/internal/infrastructure/zoominfo"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time {
	return testNow
}

func daysAgo(n int) time.Time {
	return Today(testNow).AddDate(0, 0, -n)
}

func openStore(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

var errStoreDown = errors.New("database is unreachable")

type brokenFilingRepo struct{}

func (brokenFilingRepo) FindLatestByTicker(context.Context, string) (*entity.Filing, error) {
	return nil, errStoreDown
}

func (brokenFilingRepo) FindByURL(context.Context, string) (*entity.Filing, error) {
	return nil, errStoreDown
}

func (brokenFilingRepo) Upsert(context.Context, *entity.Filing) error {
	return errStoreDown
}

type brokenFirmographicRepo struct{}

func (brokenFirmographicRepo) FindByTicker(context.Context, string) (*entity.FirmographicEnrichment, error) {
	return nil, errStoreDown
}

func (brokenFirmographicRepo) Upsert(context.Context, *entity.FirmographicEnrichment) error {
	return errStoreDown
}

func (brokenFirmographicRepo) Delete(context.Context, string) error {
	return errStoreDown
}

type fakeSEC struct {
	searchCalls   int
	downloadCalls int

	result    *secapi.SearchResult
	searchErr error

	pdf         []byte
	downloadErr error
}

func (f *fakeSEC) SearchLatest(_ context.Context, _, _ string) (*secapi.SearchResult, error) {
	f.searchCalls++
	return f.result, f.searchErr
}

func (f *fakeSEC) Download(_ context.Context, _ string, dst io.Writer) (int64, error) {
	f.downloadCalls++
	if f.downloadErr != nil {
		return 0, f.downloadErr
	}
	n, err := dst.Write(f.pdf)
	return int64(n), err
}

type fakeExtractor struct {
	text  string
	err   error
	paths []string
	seen  []byte
}

func (f *fakeExtractor) ExtractFile(path string) (string, error) {
	f.paths = append(f.paths, path)
	f.seen, _ = os.ReadFile(path)
	return f.text, f.err
}

type fakeArchive struct {
	keys []string
	body []byte
}

func (f *fakeArchive) UploadFile(_ context.Context, body io.ReadSeeker, filename string) (string, error) {
	f.body, _ = io.ReadAll(body)
	f.keys = append(f.keys, "filings/"+filename)
	return "filings/" + filename, nil
}

type fakeZoomInfo struct {
	enrichCalls int
	searchCalls int
	websites    []string

	resp *zoominfo.EnrichResponse
	err  error
}

func (f *fakeZoomInfo) EnrichCompany(_ context.Context, _, website string) (*zoominfo.EnrichResponse, error) {
	f.enrichCalls++
	f.websites = append(f.websites, website)
	return f.resp, f.err
}

func (f *fakeZoomInfo) SearchCompanies(_ context.Context, _, _ string) (json.RawMessage, error) {
	f.searchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"data":[]}`), nil
}

type fakeTokens struct {
	calls       int
	invalidated int
	token       string
	err         error
}

func (f *fakeTokens) GetValidToken(context.Context) (string, error) {
	f.calls++
	return f.token, f.err
}

func (f *fakeTokens) Invalidate() {
	f.invalidated++
}

type fakeProxycurl struct {
	profileCalls int
	resolveCalls int

	profile    string
	profileErr error
	resolved   string
	resolveErr error
}

func (f *fakeProxycurl) CompanyProfile(context.Context, string) (*proxycurl.Profile, error) {
	f.profileCalls++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return proxycurl.ParseProfile([]byte(f.profile))
}

func (f *fakeProxycurl) ResolveCompany(context.Context, string, string) (*proxycurl.Profile, error) {
	f.resolveCalls++
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return proxycurl.ParseProfile([]byte(f.resolved))
}
