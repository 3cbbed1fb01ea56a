package utils

import (
	"github.com/labstack/echo/v4"
)

// SubjectKey is the context key the auth middleware stores the caller under.
const SubjectKey = "sub"

// GetSubjectFromContext returns the authenticated caller, or "anonymous" when
// the API runs without authentication.
func GetSubjectFromContext(c echo.Context) string {
	if sub, ok := c.Get(SubjectKey).(string); ok && sub != "" {
		return sub
	}
	return "anonymous"
}
