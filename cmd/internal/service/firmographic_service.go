package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"corpanalyst/cmd/internal/config"
	"corpanalyst/cmd/internal/domain/entity"
	"corpanalyst/cmd/internal/domain/policy"
	"corpanalyst/cmd/internal/infrastructure/zoominfo"
	"corpanalyst/cmd/internal/metrics"
	"corpanalyst/cmd/internal/utils/connerr"

	"github.com/labstack/gommon/log"
)

const (
	firmographicConnector = "firmographic"

	// MinDomainLength is the shortest domain accepted for an enrich request.
	MinDomainLength = 4
)

type FirmographicRepository interface {
	FindByTicker(ctx context.Context, ticker string) (*entity.FirmographicEnrichment, error)
	Upsert(ctx context.Context, enrichment *entity.FirmographicEnrichment) error
	Delete(ctx context.Context, ticker string) error
}

type FirmographicProvider interface {
	EnrichCompany(ctx context.Context, token, website string) (*zoominfo.EnrichResponse, error)
	SearchCompanies(ctx context.Context, token, name string) (json.RawMessage, error)
}

type TokenSource interface {
	GetValidToken(ctx context.Context) (string, error)
	Invalidate()
}

type FirmographicService struct {
	Repo     FirmographicRepository
	ZoomInfo FirmographicProvider
	Tokens   TokenSource

	Enabled bool
	Policy  *policy.FreshnessPolicy
	Now     func() time.Time
}

func NewFirmographicService(repo FirmographicRepository, client FirmographicProvider, tokens TokenSource, cfg config.ZoomInfo) *FirmographicService {
	return &FirmographicService{
		Repo:     repo,
		ZoomInfo: client,
		Tokens:   tokens,
		Enabled:  cfg.Enabled,
		Policy:   policy.NewFreshnessPolicy(policy.FirmographicTTLDays),
		Now:      time.Now,
	}
}

// Enrich returns the ZoomInfo payload for ticker. A refreshed payload is
// cached under the ticker ZoomInfo reports for the company, falling back to
// the requested one.
func (s *FirmographicService) Enrich(ctx context.Context, domain, ticker string) (string, error) {
	ticker = NormalizeTicker(ticker)
	domain = strings.TrimSpace(domain)
	if ticker == "" {
		return "", connerr.New(connerr.KindInvalidInput, "ticker is required")
	}

	cached, err := s.Repo.FindByTicker(ctx, ticker)
	if err != nil {
		return "", fmt.Errorf("failed to read firmographic cache for %s: %w", ticker, err)
	}

	if cached != nil {
		if s.Policy.IsFresh(s.Now(), cached.LastUpdateDate) {
			log.Debugf("Firmographic data for %s found in the cache and is recent", ticker)
			metrics.RecordLookup(firmographicConnector, metrics.OutcomeCacheFresh)
			return cached.CompanyEnrichmentData, nil
		}

		if !s.Enabled {
			log.Infof("Firmographic data for %s is stale but ZoomInfo API calls are disabled", ticker)
			metrics.RecordLookup(firmographicConnector, metrics.OutcomeStaleServed)
			return cached.CompanyEnrichmentData, nil
		}
		log.Infof("Firmographic data for %s is older than %d days, refreshing", ticker, s.Policy.TTLDays)
	}

	if !s.Enabled {
		metrics.RecordLookup(firmographicConnector, metrics.OutcomeAbsent)
		return "", connerr.New(connerr.KindDisabled, "no cached firmographic data for %s and ZoomInfo API calls are disabled", ticker)
	}

	payload, err := s.refresh(ctx, domain, ticker)
	if err != nil {
		if connerr.IsAbsent(err) {
			metrics.RecordLookup(firmographicConnector, metrics.OutcomeAbsent)
		} else {
			metrics.RecordLookup(firmographicConnector, metrics.OutcomeError)
		}
		return "", err
	}

	metrics.RecordLookup(firmographicConnector, metrics.OutcomeRefreshed)
	return payload, nil
}

func (s *FirmographicService) refresh(ctx context.Context, domain, ticker string) (string, error) {
	if len(domain) < MinDomainLength {
		log.Warnf("Refusing firmographic enrich for %s: domain %q is too short", ticker, domain)
		return "", connerr.New(connerr.KindInvalidInput, "company domain %q is too short", domain)
	}

	token, err := s.Tokens.GetValidToken(ctx)
	if err != nil {
		log.Errorf("Could not get a ZoomInfo token: %v", err)
		return "", connerr.Wrap(connerr.KindNoCredential, err, "could not authenticate with zoominfo")
	}

	resp, err := s.ZoomInfo.EnrichCompany(ctx, token, zoominfo.CompanyWebsite(domain))
	if err != nil {
		return "", s.enrichError(err, ticker)
	}

	key := NormalizeTicker(resp.Ticker)
	if key == "" {
		key = ticker
	}

	err = s.Repo.Upsert(ctx, &entity.FirmographicEnrichment{
		Ticker:                key,
		CompanyDomain:         domain,
		CompanyEnrichmentData: resp.Payload,
		LastUpdateDate:        Today(s.Now()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to save firmographic data for %s: %w", key, err)
	}

	log.Infof("Firmographic data for %s saved to the cache", key)
	return resp.Payload, nil
}

func (s *FirmographicService) enrichError(err error, ticker string) error {
	log.Errorf("ZoomInfo enrich for %s failed: %v", ticker, err)

	switch {
	case errors.Is(err, zoominfo.ErrUnauthorized):
		s.Tokens.Invalidate()
		return connerr.Wrap(connerr.KindAuth, err, "zoominfo rejected the token")
	case errors.Is(err, zoominfo.ErrMalformedResponse):
		return connerr.Wrap(connerr.KindMalformed, err, "could not convert json from zoominfo").
			WithDisplay("Error: could not convert json from ZoomInfo")
	case errors.Is(err, zoominfo.ErrUnexpectedStatus):
		return connerr.Wrap(connerr.KindUpstream, err, "zoominfo enrich failed")
	default:
		return connerr.Wrap(connerr.KindNetwork, err, "zoominfo enrich failed")
	}
}

// Search looks companies up by name. Results are not cached.
func (s *FirmographicService) Search(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", connerr.New(connerr.KindInvalidInput, "company name is required")
	}

	if !s.Enabled {
		return "", connerr.New(connerr.KindDisabled, "ZoomInfo API calls are disabled")
	}

	token, err := s.Tokens.GetValidToken(ctx)
	if err != nil {
		return "", connerr.Wrap(connerr.KindNoCredential, err, "could not authenticate with zoominfo")
	}

	raw, err := s.ZoomInfo.SearchCompanies(ctx, token, name)
	if err != nil {
		return "", s.enrichError(err, name)
	}
	return string(raw), nil
}

// Invalidate drops the cached payload for ticker so the next Enrich refreshes it.
func (s *FirmographicService) Invalidate(ctx context.Context, ticker string) error {
	return s.Repo.Delete(ctx, NormalizeTicker(ticker))
}
