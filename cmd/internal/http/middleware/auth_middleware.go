package middleware

import (
	"net/http"

	"corpanalyst/cmd/internal/utils"
	"corpanalyst/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type AuthMiddlewareConfig struct {
	// Secret is the HS256 key service tokens are signed with.
	Secret string
}

// NewAuthMiddleware creates the handler with dependencies injected
func NewAuthMiddleware(cfg *AuthMiddlewareConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenData, err := utils.ParseTokenDataCtx(c, cfg.Secret)
			if err != nil {
				log.Debugf("rejected request to %s: %v", c.Path(), err)
				return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
			}

			if tokenData.Sub == "" {
				return c.JSON(http.StatusUnauthorized, apierror.UnauthorizedError)
			}

			c.Set(utils.SubjectKey, tokenData.Sub)
			return next(c)
		}
	}
}
