package secapi

import (
	"encoding/json"
	"time"
)

type SearchStatus int

const (
	// SearchFound means the first filing carried a link.
	SearchFound SearchStatus = iota
	// SearchEmpty means the query matched no filings.
	SearchEmpty
	// SearchMalformed means the body could not be read as a search response.
	SearchMalformed
)

func (s SearchStatus) String() string {
	switch s {
	case SearchFound:
		return "found"
	case SearchEmpty:
		return "empty"
	default:
		return "malformed"
	}
}

type SearchResult struct {
	Status SearchStatus
	URL    string
	// FiledAt is nil when the filing carried no parsable date.
	FiledAt *time.Time
	Reason  string
}

type searchResponse struct {
	Total   json.RawMessage `json:"total"`
	Filings []filing        `json:"filings"`
}

type filing struct {
	LinkToFilingDetails string `json:"linkToFilingDetails"`
	FiledAt             string `json:"filedAt"`
}

func parseSearchResponse(body []byte) *SearchResult {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return &SearchResult{Status: SearchMalformed, Reason: err.Error()}
	}

	if resp.Filings == nil {
		return &SearchResult{Status: SearchMalformed, Reason: "response has no filings list"}
	}

	if len(resp.Filings) == 0 {
		return &SearchResult{Status: SearchEmpty}
	}

	first := resp.Filings[0]
	if first.LinkToFilingDetails == "" {
		return &SearchResult{Status: SearchMalformed, Reason: "first filing has no linkToFilingDetails"}
	}

	return &SearchResult{
		Status:  SearchFound,
		URL:     first.LinkToFilingDetails,
		FiledAt: parseFiledAt(first.FiledAt),
	}
}

// parseFiledAt reads the calendar date from the first ten characters of an
// ISO timestamp such as 2023-11-03T06:01:36-04:00.
func parseFiledAt(raw string) *time.Time {
	if len(raw) < 10 {
		return nil
	}

	date, err := time.Parse(time.DateOnly, raw[:10])
	if err != nil {
		return nil
	}
	return &date
}
