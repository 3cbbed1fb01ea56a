package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type TokenData struct {
	Sub string
	Exp int64
}

// ValidateServiceToken parses AND validates an HS256 token signed with secret.
// It returns the data if the token is authentic and unexpired.
func ValidateServiceToken(tokenString, secret string) (*TokenData, error) {
	if secret == "" {
		return nil, errors.New("service token secret not configured")
	}

	clean := sanitizeToken(tokenString)
	token, err := jwt.Parse(clean, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims format")
	}

	return &TokenData{
		Sub: getValue(claims, "sub"),
		Exp: getInt64(claims, "exp"),
	}, nil
}

func ParseTokenDataCtx(ctx echo.Context, secret string) (*TokenData, error) {
	token := ctx.Request().Header.Get(echo.HeaderAuthorization)
	return ValidateServiceToken(token, secret)
}

func sanitizeToken(token string) string {
	return strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
}

func getValue(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key].(string); ok {
		return val
	}
	return ""
}

func getInt64(claims jwt.MapClaims, key string) int64 {
	val, ok := claims[key]
	if !ok {
		return 0
	}
	if f, ok := val.(float64); ok {
		return int64(f)
	}
	if i, ok := val.(int64); ok {
		return i
	}
	return 0
}
