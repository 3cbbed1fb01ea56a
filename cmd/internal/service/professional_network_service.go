package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"corpanalyst/cmd/internal/config"
	"corpanalyst/cmd/internal/domain/entity"
	"corpanalyst/cmd/internal/domain/policy"
	"corpanalyst/cmd/internal/infrastructure/proxycurl"
	"corpanalyst/cmd/internal/metrics"
	"corpanalyst/cmd/internal/utils/connerr"

	"github.com/labstack/gommon/log"
)

const professionalNetworkConnector = "professional_network"

type ProfessionalNetworkRepository interface {
	FindByTicker(ctx context.Context, ticker string) (*entity.ProfessionalNetworkEnrichment, error)
	Upsert(ctx context.Context, enrichment *entity.ProfessionalNetworkEnrichment) error
	Delete(ctx context.Context, ticker string) error
}

type ProfessionalNetworkProvider interface {
	CompanyProfile(ctx context.Context, profileURL string) (*proxycurl.Profile, error)
	ResolveCompany(ctx context.Context, domain, name string) (*proxycurl.Profile, error)
}

type ProfessionalNetworkService struct {
	Repo      ProfessionalNetworkRepository
	Proxycurl ProfessionalNetworkProvider

	Enabled bool
	Policy  *policy.FreshnessPolicy
	Now     func() time.Time
}

func NewProfessionalNetworkService(repo ProfessionalNetworkRepository, client ProfessionalNetworkProvider, cfg config.Proxycurl) *ProfessionalNetworkService {
	return &ProfessionalNetworkService{
		Repo:      repo,
		Proxycurl: client,
		Enabled:   cfg.Enabled,
		Policy:    policy.NewFreshnessPolicy(cfg.TTLDays),
		Now:       time.Now,
	}
}

// EnrichmentRequest identifies a company on the professional network.
type EnrichmentRequest struct {
	ProfileURL string
	Domain     string
	Name       string
	Ticker     string
}

// Enrich returns the trimmed company profile for the ticker. The profile URL
// is tried first; when Proxycurl answers with an error code the company is
// resolved once from its domain and name instead.
func (s *ProfessionalNetworkService) Enrich(ctx context.Context, req EnrichmentRequest) (string, error) {
	ticker := NormalizeTicker(req.Ticker)
	if ticker == "" {
		return "", connerr.New(connerr.KindInvalidInput, "ticker is required")
	}

	cached, err := s.Repo.FindByTicker(ctx, ticker)
	if err != nil {
		return "", fmt.Errorf("failed to read professional network cache for %s: %w", ticker, err)
	}

	if cached != nil {
		if s.Policy.IsFresh(s.Now(), cached.LastUpdateDate) {
			log.Debugf("Professional network data for %s found in the cache and is recent", ticker)
			metrics.RecordLookup(professionalNetworkConnector, metrics.OutcomeCacheFresh)
			return cached.NubelaEnrichmentData, nil
		}

		if !s.Enabled {
			log.Infof("Professional network data for %s is stale but Proxycurl API calls are disabled", ticker)
			metrics.RecordLookup(professionalNetworkConnector, metrics.OutcomeStaleServed)
			return cached.NubelaEnrichmentData, nil
		}
		log.Infof("Professional network data for %s is older than %d days, refreshing", ticker, s.Policy.TTLDays)
	}

	if !s.Enabled {
		metrics.RecordLookup(professionalNetworkConnector, metrics.OutcomeAbsent)
		return "", connerr.New(connerr.KindDisabled, "no cached professional network data for %s and Proxycurl API calls are disabled", ticker)
	}

	payload, err := s.refresh(ctx, req, ticker)
	if err != nil {
		if connerr.IsConnectorError(err) {
			metrics.RecordLookup(professionalNetworkConnector, metrics.OutcomeError)
		}
		return "", err
	}

	metrics.RecordLookup(professionalNetworkConnector, metrics.OutcomeRefreshed)
	return payload, nil
}

func (s *ProfessionalNetworkService) refresh(ctx context.Context, req EnrichmentRequest, ticker string) (string, error) {
	profile, err := s.lookup(ctx, req)
	if err != nil {
		return "", err
	}

	if code := profile.ErrorCode(); code != "" {
		msg := "Could not enrich or find the company from Proxy Curl. Error:" + code
		log.Errorf("Could not enrich or find %s from Proxycurl. Error: %s", ticker, code)
		return "", connerr.New(connerr.KindUpstream, msg).WithDisplay(proxycurl.ErrorPayload(msg))
	}

	payload, err := profile.Trimmed().JSON()
	if err != nil {
		msg := "An unexpected error occurred:" + err.Error()
		return "", connerr.Wrap(connerr.KindUnexpected, err, msg).WithDisplay(proxycurl.ErrorPayload(msg))
	}

	err = s.Repo.Upsert(ctx, &entity.ProfessionalNetworkEnrichment{
		Ticker:                 ticker,
		LinkedinCompanyProfile: strings.TrimSpace(req.ProfileURL),
		CompanyDomain:          strings.TrimSpace(req.Domain),
		CompanyName:            strings.TrimSpace(req.Name),
		NubelaEnrichmentData:   payload,
		LastUpdateDate:         Today(s.Now()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to save professional network data for %s: %w", ticker, err)
	}

	log.Infof("Professional network data for %s saved to the cache", ticker)
	return payload, nil
}

// lookup runs the profile lookup and, if it comes back with an error code,
// the domain resolve. Without a profile URL it goes straight to the resolve.
func (s *ProfessionalNetworkService) lookup(ctx context.Context, req EnrichmentRequest) (*proxycurl.Profile, error) {
	profileURL := strings.TrimSpace(req.ProfileURL)
	if profileURL != "" {
		profile, err := s.Proxycurl.CompanyProfile(ctx, profileURL)
		if err != nil {
			return nil, transportError(err)
		}

		if profile.ErrorCode() == "" {
			return profile, nil
		}
		log.Infof("Could not find company using profile %s, trying domain %s", profileURL, req.Domain)
	}

	profile, err := s.Proxycurl.ResolveCompany(ctx, strings.TrimSpace(req.Domain), strings.TrimSpace(req.Name))
	if err != nil {
		return nil, transportError(err)
	}
	return profile, nil
}

func transportError(err error) error {
	log.Errorf("Proxycurl call failed: %v", err)

	if errors.Is(err, proxycurl.ErrMalformedResponse) {
		msg := "Could not decode JSON from Proxycurl API:" + err.Error()
		return connerr.Wrap(connerr.KindMalformed, err, msg).WithDisplay(proxycurl.ErrorPayload(msg))
	}

	msg := "Could not enrich this company from linkedin:" + err.Error()
	return connerr.Wrap(connerr.KindNetwork, err, msg).WithDisplay(proxycurl.ErrorPayload(msg))
}

// Invalidate drops the cached profile for ticker so the next Enrich refreshes it.
func (s *ProfessionalNetworkService) Invalidate(ctx context.Context, ticker string) error {
	return s.Repo.Delete(ctx, NormalizeTicker(ticker))
}
