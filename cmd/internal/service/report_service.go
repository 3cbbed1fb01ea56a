package service

import (
	"context"

	"corpanalyst/cmd/internal/contract"
	"corpanalyst/cmd/internal/utils/connerr"

	"golang.org/x/sync/errgroup"
)

type FilingConnector interface {
	ResolveLink(ctx context.Context, ticker string) (*FilingLink, error)
	FetchText(ctx context.Context, url, ticker string) (string, error)
}

type FirmographicConnector interface {
	Enrich(ctx context.Context, domain, ticker string) (string, error)
}

type ProfessionalNetworkConnector interface {
	Enrich(ctx context.Context, req EnrichmentRequest) (string, error)
}

// ReportService gathers everything the report writer consumes for one company.
type ReportService struct {
	Filings              FilingConnector
	Firmographics        FirmographicConnector
	ProfessionalNetworks ProfessionalNetworkConnector
}

func NewReportService(filings FilingConnector, firmographics FirmographicConnector, networks ProfessionalNetworkConnector) *ReportService {
	return &ReportService{
		Filings:              filings,
		Firmographics:        firmographics,
		ProfessionalNetworks: networks,
	}
}

// ReportInputs runs the three connectors for the company. Each section is
// either a payload or an explicit marker; only cache-store failures fail the
// whole call.
func (s *ReportService) ReportInputs(ctx context.Context, q *contract.ReportInputsQuery) (*contract.ReportInputsResponse, error) {
	ticker := NormalizeTicker(q.Ticker)
	resp := &contract.ReportInputsResponse{Ticker: ticker}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		link, err := s.Filings.ResolveLink(gctx, ticker)
		if err != nil && !connerr.IsConnectorError(err) {
			return err
		}
		resp.Filing = ToFilingLinkResp(ticker, link, err)
		if err != nil {
			return nil
		}

		text, err := s.Filings.FetchText(gctx, link.URL, ticker)
		if err != nil && !connerr.IsConnectorError(err) {
			return err
		}
		resp.FilingText = ToFilingTextResp(link.URL, text, err)
		return nil
	})

	g.Go(func() error {
		payload, err := s.Firmographics.Enrich(gctx, q.Domain, ticker)
		if err != nil && !connerr.IsConnectorError(err) {
			return err
		}
		resp.Firmographic = ToEnrichmentResp(ticker, payload, err)
		return nil
	})

	g.Go(func() error {
		payload, err := s.ProfessionalNetworks.Enrich(gctx, EnrichmentRequest{
			ProfileURL: q.ProfileURL,
			Domain:     q.Domain,
			Name:       q.Name,
			Ticker:     ticker,
		})
		if err != nil && !connerr.IsConnectorError(err) {
			return err
		}
		resp.ProfessionalNetwork = ToEnrichmentResp(ticker, payload, err)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resp, nil
}
