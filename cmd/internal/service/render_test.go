package service

import (
	"errors"
	"testing"
	"time"

	"corpanalyst/cmd/internal/contract"
	"corpanalyst/cmd/internal/utils/connerr"

	"github.com/stretchr/testify/assert"
)

func TestToFilingLinkResp(t *testing.T) {
	date := time.Date(2023, 2, 3, 0, 0, 0, 0, time.UTC)

	resp := ToFilingLinkResp("goog", &FilingLink{URL: "https://sec.gov/x.htm", FilingDate: &date}, nil)
	assert.Equal(t, "GOOG", resp.Ticker)
	assert.True(t, resp.Found)
	assert.Equal(t, contract.StatusFound, resp.Status)
	assert.Equal(t, "2023-02-03", resp.FilingDate)

	resp = ToFilingLinkResp("goog", nil, connerr.New(connerr.KindMalformed, "bad response"))
	assert.False(t, resp.Found)
	assert.Equal(t, contract.StatusNotFound, resp.Status)
	assert.Equal(t, contract.NotFoundMarker, resp.Message)
}

func TestToFilingTextResp(t *testing.T) {
	resp := ToFilingTextResp("https://sec.gov/x.htm", "Annual report", nil)
	assert.Equal(t, "Annual report", resp.Text)
	assert.True(t, resp.Found)

	resp = ToFilingTextResp("https://sec.gov/x.htm", "", connerr.New(connerr.KindNetwork, "timeout"))
	assert.Empty(t, resp.Text)
	assert.Equal(t, contract.NotFoundMarker, resp.Message)
}

func TestToEnrichmentResp(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		err     error
		status  string
		kind    string
		data    string
		message string
	}{
		{
			name:    "payload",
			payload: `{"a":1}`,
			status:  contract.StatusFound,
			data:    `{"a":1}`,
		},
		{
			name:    "disabled",
			err:     connerr.New(connerr.KindDisabled, "calls disabled"),
			status:  contract.StatusNotFound,
			message: contract.NotFoundMarker,
		},
		{
			name:    "plain error",
			err:     errors.New("boom"),
			status:  contract.StatusNotFound,
			message: contract.NotFoundMarker,
		},
		{
			name:    "json display",
			err:     connerr.New(connerr.KindUpstream, "upstream said no").WithDisplay(`{"status":"error"}`),
			status:  contract.StatusError,
			kind:    "upstream",
			data:    `{"status":"error"}`,
			message: "data unavailable: upstream said no",
		},
		{
			name:    "text display",
			err:     connerr.New(connerr.KindMalformed, "bad json").WithDisplay("Error: could not convert json from ZoomInfo"),
			status:  contract.StatusError,
			kind:    "malformed",
			message: "Error: could not convert json from ZoomInfo",
		},
		{
			name:    "no display",
			err:     connerr.New(connerr.KindAuth, "token refused"),
			status:  contract.StatusError,
			kind:    "auth",
			message: "data unavailable: token refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ToEnrichmentResp("goog", tt.payload, tt.err)
			assert.Equal(t, "GOOG", resp.Ticker)
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, tt.kind, resp.ErrorKind)
			assert.Equal(t, tt.message, resp.Message)
			if tt.data == "" {
				assert.Empty(t, resp.Data)
			} else {
				assert.JSONEq(t, tt.data, string(resp.Data))
			}
		})
	}
}
