package service

import (
	"encoding/json"
	"errors"

	"corpanalyst/cmd/internal/contract"
	"corpanalyst/cmd/internal/utils/connerr"
)

// The To*Resp helpers only accept nil or connector errors. Anything else is an
// infrastructure failure and must be handled by the caller.

func ToFilingLinkResp(ticker string, link *FilingLink, err error) *contract.FilingLinkResponse {
	resp := &contract.FilingLinkResponse{Ticker: NormalizeTicker(ticker)}
	if err != nil || link == nil {
		resp.Status = contract.StatusNotFound
		resp.Message = contract.NotFoundMarker
		return resp
	}

	resp.URL = link.URL
	resp.FilingDate = FormatDate(link.FilingDate)
	resp.Found = true
	resp.Status = contract.StatusFound
	return resp
}

// ToFilingTextResp renders every filing failure as not found.
func ToFilingTextResp(url, text string, err error) *contract.FilingTextResponse {
	resp := &contract.FilingTextResponse{URL: url}
	if err != nil {
		resp.Status = contract.StatusNotFound
		resp.Message = contract.NotFoundMarker
		return resp
	}

	resp.Text = text
	resp.Found = true
	resp.Status = contract.StatusFound
	return resp
}

func ToEnrichmentResp(ticker, payload string, err error) *contract.EnrichmentResponse {
	resp := &contract.EnrichmentResponse{Ticker: NormalizeTicker(ticker)}
	if err == nil {
		if json.Valid([]byte(payload)) {
			resp.Data = json.RawMessage(payload)
		} else {
			resp.Message = payload
		}
		resp.Found = true
		resp.Status = contract.StatusFound
		return resp
	}

	var ce *connerr.Error
	if !errors.As(err, &ce) || ce.Absent() {
		resp.Status = contract.StatusNotFound
		resp.Message = contract.NotFoundMarker
		return resp
	}

	resp.Status = contract.StatusError
	resp.ErrorKind = string(ce.Kind)
	switch {
	case ce.Display != "" && json.Valid([]byte(ce.Display)):
		resp.Data = json.RawMessage(ce.Display)
		resp.Message = "data unavailable: " + ce.Message
	case ce.Display != "":
		resp.Message = ce.Display
	default:
		resp.Message = "data unavailable: " + ce.Message
	}
	return resp
}
