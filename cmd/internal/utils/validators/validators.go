package validators

import (
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

var (
	tickerRegex = regexp.MustCompile(`^[A-Za-z0-9._\-]{1,20}$`)
	domainRegex = regexp.MustCompile(`^(?i)(https?://)?[a-z0-9\-.]+(:\d+)?/?$`)
)

// Ticker accepts exchange symbols such as GOOG, BRK.B or RDS-A.
func Ticker(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		log.Warnf("validator 'ticker' applied to non-string type: %s", field.Kind().String())
		return false
	}
	return tickerRegex.MatchString(field.String())
}

// Domain accepts a bare host name, optionally with scheme and trailing slash.
// Length rules are left to the connectors.
func Domain(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}

	str := field.String()
	return len(str) <= 253 && domainRegex.MatchString(str)
}

// Register installs every custom tag used by the request contracts.
func Register(validate *validator.Validate) {
	_ = validate.RegisterValidation("ticker", Ticker)
	_ = validate.RegisterValidation("domain", Domain)
}
