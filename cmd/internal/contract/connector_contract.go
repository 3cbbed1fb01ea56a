package contract

import "encoding/json"

// NotFoundMarker is rendered in place of any payload a connector could not produce.
const NotFoundMarker = "information not found"

const (
	StatusFound    = "found"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

type FilingLinkQuery struct {
	Ticker string `query:"ticker" validate:"required,ticker"`
}

type FilingTextQuery struct {
	URL    string `query:"url" validate:"required,url"`
	Ticker string `query:"ticker" validate:"required,ticker"`
}

type FirmographicQuery struct {
	Domain string `query:"domain" validate:"omitempty,domain"`
	Ticker string `query:"ticker" validate:"required,ticker"`
}

type FirmographicSearchQuery struct {
	Name string `query:"name" validate:"required,max=200"`
}

type ProfessionalNetworkQuery struct {
	ProfileURL string `query:"profile_url" validate:"omitempty,url"`
	Domain     string `query:"domain" validate:"omitempty,domain"`
	Name       string `query:"name" validate:"max=200"`
	Ticker     string `query:"ticker" validate:"required,ticker"`
}

type ReportInputsQuery struct {
	Ticker     string `param:"ticker" validate:"required,ticker"`
	Domain     string `query:"domain" validate:"omitempty,domain"`
	ProfileURL string `query:"profile_url" validate:"omitempty,url"`
	Name       string `query:"name" validate:"max=200"`
}

type FilingLinkResponse struct {
	Ticker     string `json:"ticker"`
	URL        string `json:"url,omitempty"`
	FilingDate string `json:"filing_date,omitempty"`
	Found      bool   `json:"found"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
}

type FilingTextResponse struct {
	URL     string `json:"url"`
	Text    string `json:"text,omitempty"`
	Found   bool   `json:"found"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// EnrichmentResponse carries a provider payload. Data holds the cached JSON as
// stored; on failure it may hold the provider's structured error body instead.
type EnrichmentResponse struct {
	Ticker    string          `json:"ticker"`
	Data      json.RawMessage `json:"data,omitempty"`
	Found     bool            `json:"found"`
	Status    string          `json:"status"`
	ErrorKind string          `json:"error_kind,omitempty"`
	Message   string          `json:"message,omitempty"`
}

type SearchResponse struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

type ReportInputsResponse struct {
	Ticker              string              `json:"ticker"`
	Filing              *FilingLinkResponse `json:"filing"`
	FilingText          *FilingTextResponse `json:"filing_text,omitempty"`
	Firmographic        *EnrichmentResponse `json:"firmographic"`
	ProfessionalNetwork *EnrichmentResponse `json:"professional_network"`
}

type InvalidateQuery struct {
	Ticker string `param:"ticker" validate:"required,ticker"`
}
