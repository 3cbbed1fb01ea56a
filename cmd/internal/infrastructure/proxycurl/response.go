package proxycurl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedResponse = errors.New("malformed proxycurl response")

// TrimmedFields are dropped from every profile before it is cached.
var TrimmedFields = []string{
	"similar_companies",
	"updates",
	"exit_data",
	"affiliated_companies",
	"acquisitions",
}

// Profile is a company profile kept as raw fields, so the parts that are not
// trimmed are stored exactly as Proxycurl sent them.
type Profile struct {
	fields map[string]json.RawMessage
}

// ParseProfile decodes a Proxycurl response body. Any JSON object is accepted.
func ParseProfile(body []byte) (*Profile, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if fields == nil {
		return nil, fmt.Errorf("%w: body is null", ErrMalformedResponse)
	}
	return &Profile{fields: fields}, nil
}

// ErrorCode returns the code of an error response, or "" for a profile. A
// null code counts as no code.
func (p *Profile) ErrorCode() string {
	raw, ok := p.fields["code"]
	if !ok {
		return ""
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return trimmed
}

// Trimmed returns a copy of the profile without TrimmedFields.
func (p *Profile) Trimmed() *Profile {
	fields := make(map[string]json.RawMessage, len(p.fields))
	for k, v := range p.fields {
		fields[k] = v
	}

	for _, f := range TrimmedFields {
		delete(fields, f)
	}
	return &Profile{fields: fields}
}

// JSON serializes the profile with keys in sorted order and without HTML escaping.
func (p *Profile) JSON() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p.fields); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

type errorPayload struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorPayload renders the error body shown to consumers in place of a profile.
func ErrorPayload(message string) string {
	raw, _ := json.Marshal(errorPayload{Status: "error", Message: message})
	return string(raw)
}
