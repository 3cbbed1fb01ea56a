package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"corpanalyst/cmd/internal/utils/connerr"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse abstracts all API error responses to the user.
//
// This interface does not implement `error`, since its only purpose
// is to be used for API responses and not for logging circumstances.
//
// In general, the whole ErrorResponse can be sent for serialization.
type ErrorResponse interface {
	// Code is the HTTP status code to be returned.
	Code() int
}

type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (a *APIError) Code() int {
	return a.Status
}

type StructuredError struct {
	Errors map[string][]string `json:"errors"`
	Status int                 `json:"-"`
}

func (s *StructuredError) Code() int {
	return s.Status
}

func (s *StructuredError) Add(field, problem string) {
	s.Errors[field] = append(s.Errors[field], problem)
}

var (
	MalformedQueryError = NewSimple(400, "Malformed query parameters")
	InternalServerError = NewSimple(500, "Internal server error")

	/*
	 * Used for authentication
	 */
	UnauthorizedError     = NewSimple(401, "Unauthorized")
	InvalidAuthTokenError = NewSimple(401, "Invalid or expired authorization token")
)

func FromValidationError(err error) *StructuredError {
	var ve validator.ValidationErrors
	ok := errors.As(err, &ve)
	if !ok {
		return nil
	}

	problems := map[string][]string{}
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())

		switch fe.Tag() {
		case "required":
			problems[field] = append(problems[field], "This field is required")
		case "max":
			problems[field] = append(problems[field], "Value is too long, max: "+fe.Param())
		case "ticker":
			problems[field] = append(problems[field], "Value must be a ticker symbol, e.g. GOOG or BRK.B")
		case "domain":
			problems[field] = append(problems[field], "Value must be a company domain, e.g. google.com")
		case "url":
			problems[field] = append(problems[field], "Value must be an absolute URL")

		default:
			problems[field] = append(problems[field], "Invalid value provided")
		}
	}

	return &StructuredError{
		Errors: problems,
		Status: http.StatusBadRequest,
	}
}

// FromConnectorError maps a connector failure to the status reported on
// endpoints that have no not-found marker to fall back on.
func FromConnectorError(err error) *APIError {
	msg := err.Error()
	switch connerr.KindOf(err) {
	case connerr.KindInvalidInput:
		return NewSimple(http.StatusBadRequest, msg)
	case connerr.KindNotFound:
		return NewSimple(http.StatusNotFound, msg)
	case connerr.KindDisabled, connerr.KindNoCredential:
		return NewSimple(http.StatusServiceUnavailable, msg)
	case connerr.KindAuth, connerr.KindNetwork, connerr.KindMalformed, connerr.KindUpstream:
		return NewSimple(http.StatusBadGateway, msg)
	default:
		return InternalServerError
	}
}

func NewSimple(status int, msg string, args ...any) *APIError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &APIError{Status: status, Message: msg}
}
