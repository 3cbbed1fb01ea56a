package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"corpanalyst/cmd/internal/contract"
	"corpanalyst/cmd/internal/service"
	"corpanalyst/cmd/internal/utils"
	"corpanalyst/cmd/internal/utils/apierror"
	"corpanalyst/cmd/internal/utils/connerr"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type FilingService interface {
	ResolveLink(ctx context.Context, ticker string) (*service.FilingLink, error)
	FetchText(ctx context.Context, url, ticker string) (string, error)
}

type FirmographicService interface {
	Enrich(ctx context.Context, domain, ticker string) (string, error)
	Search(ctx context.Context, name string) (string, error)
	Invalidate(ctx context.Context, ticker string) error
}

type ProfessionalNetworkService interface {
	Enrich(ctx context.Context, req service.EnrichmentRequest) (string, error)
	Invalidate(ctx context.Context, ticker string) error
}

type ReportService interface {
	ReportInputs(ctx context.Context, q *contract.ReportInputsQuery) (*contract.ReportInputsResponse, error)
}

type DefaultConnectorRoute struct {
	Filings              FilingService
	Firmographics        FirmographicService
	ProfessionalNetworks ProfessionalNetworkService
	Reports              ReportService
	Validate             *validator.Validate
}

func NewConnectorRoute(
	filings FilingService,
	firmographics FirmographicService,
	networks ProfessionalNetworkService,
	reports ReportService,
	validate *validator.Validate,
) *DefaultConnectorRoute {
	return &DefaultConnectorRoute{
		Filings:              filings,
		Firmographics:        firmographics,
		ProfessionalNetworks: networks,
		Reports:              reports,
		Validate:             validate,
	}
}

func (r *DefaultConnectorRoute) GetFilingLink(c echo.Context) error {
	var q contract.FilingLinkQuery
	if apierr := r.bind(c, &q); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	link, err := r.Filings.ResolveLink(c.Request().Context(), q.Ticker)
	if isInfrastructureError(err) {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, service.ToFilingLinkResp(q.Ticker, link, err))
}

func (r *DefaultConnectorRoute) GetFilingText(c echo.Context) error {
	var q contract.FilingTextQuery
	if apierr := r.bind(c, &q); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	text, err := r.Filings.FetchText(c.Request().Context(), q.URL, q.Ticker)
	if isInfrastructureError(err) {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, service.ToFilingTextResp(q.URL, text, err))
}

func (r *DefaultConnectorRoute) GetFirmographic(c echo.Context) error {
	var q contract.FirmographicQuery
	if apierr := r.bind(c, &q); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	payload, err := r.Firmographics.Enrich(c.Request().Context(), q.Domain, q.Ticker)
	if isInfrastructureError(err) {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, service.ToEnrichmentResp(q.Ticker, payload, err))
}

func (r *DefaultConnectorRoute) SearchFirmographic(c echo.Context) error {
	var q contract.FirmographicSearchQuery
	if apierr := r.bind(c, &q); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	raw, err := r.Firmographics.Search(c.Request().Context(), q.Name)
	if err != nil {
		if isInfrastructureError(err) {
			return internalError(c, err)
		}
		apierr := apierror.FromConnectorError(err)
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, &contract.SearchResponse{Name: q.Name, Data: json.RawMessage(raw)})
}

func (r *DefaultConnectorRoute) GetProfessionalNetwork(c echo.Context) error {
	var q contract.ProfessionalNetworkQuery
	if apierr := r.bind(c, &q); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	payload, err := r.ProfessionalNetworks.Enrich(c.Request().Context(), service.EnrichmentRequest{
		ProfileURL: q.ProfileURL,
		Domain:     q.Domain,
		Name:       q.Name,
		Ticker:     q.Ticker,
	})
	if isInfrastructureError(err) {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, service.ToEnrichmentResp(q.Ticker, payload, err))
}

func (r *DefaultConnectorRoute) DeleteFirmographic(c echo.Context) error {
	return r.invalidate(c, r.Firmographics.Invalidate)
}

func (r *DefaultConnectorRoute) DeleteProfessionalNetwork(c echo.Context) error {
	return r.invalidate(c, r.ProfessionalNetworks.Invalidate)
}

func (r *DefaultConnectorRoute) GetReportInputs(c echo.Context) error {
	var q contract.ReportInputsQuery
	if apierr := r.bind(c, &q); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp, err := r.Reports.ReportInputs(c.Request().Context(), &q)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (r *DefaultConnectorRoute) invalidate(c echo.Context, drop func(context.Context, string) error) error {
	q := contract.InvalidateQuery{Ticker: c.Param("ticker")}
	utils.Sanitize(&q)
	if err := r.Validate.Struct(&q); err != nil {
		apierr := apierror.FromValidationError(err)
		return c.JSON(apierr.Code(), apierr)
	}

	if err := drop(c.Request().Context(), q.Ticker); err != nil {
		return internalError(c, err)
	}

	log.Infof("%s dropped cached %s for %s", utils.GetSubjectFromContext(c), c.Path(), q.Ticker)
	return c.NoContent(http.StatusNoContent)
}

// bind reads query and path parameters into req, trims them and validates the result.
func (r *DefaultConnectorRoute) bind(c echo.Context, req any) apierror.ErrorResponse {
	if err := c.Bind(req); err != nil {
		return apierror.MalformedQueryError
	}
	utils.Sanitize(req)

	if err := r.Validate.Struct(req); err != nil {
		if apierr := apierror.FromValidationError(err); apierr != nil {
			return apierr
		}
		log.Errorf("failed to validate request to %s: %v", c.Path(), err)
		return apierror.InternalServerError
	}
	return nil
}

// isInfrastructureError reports whether err came from the cache store or the
// process itself rather than from a connector.
func isInfrastructureError(err error) bool {
	return err != nil && !connerr.IsConnectorError(err)
}

func internalError(c echo.Context, err error) error {
	log.Errorf("request to %s failed: %v", c.Request().URL, err)
	return c.JSON(http.StatusInternalServerError, apierror.InternalServerError)
}
