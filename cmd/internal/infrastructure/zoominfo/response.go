package zoominfo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// EnrichResponse is an enrich payload together with the ticker ZoomInfo
// reported for the first matched company, if any.
type EnrichResponse struct {
	// Payload is the compacted response body, stored and returned unmodified.
	Payload string
	Ticker  string
}

type enrichEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type companyRecord struct {
	Ticker json.RawMessage `json:"ticker"`
}

// resultEnvelope is the nested shape returned by the v1 enrich API:
// {"data":{"result":[{"data":[{...}]}]}}.
type resultEnvelope struct {
	Result []struct {
		Data []companyRecord `json:"data"`
	} `json:"result"`
}

func parseEnrichResponse(body []byte) (*EnrichResponse, error) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return &EnrichResponse{
		Payload: compact.String(),
		Ticker:  firstTicker(compact.Bytes()),
	}, nil
}

// firstTicker reads data[0].ticker. Any other shape yields "".
func firstTicker(body []byte) string {
	var env enrichEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Data) == 0 {
		return ""
	}

	var records []companyRecord
	if err := json.Unmarshal(env.Data, &records); err == nil {
		if len(records) == 0 {
			return ""
		}
		return tickerString(records[0].Ticker)
	}

	var nested resultEnvelope
	if err := json.Unmarshal(env.Data, &nested); err == nil {
		if len(nested.Result) > 0 && len(nested.Result[0].Data) > 0 {
			return tickerString(nested.Result[0].Data[0].Ticker)
		}
	}
	return ""
}

func tickerString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
