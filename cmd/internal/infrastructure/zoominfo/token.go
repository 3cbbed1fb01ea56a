package zoominfo

import (
	"context"
	"errors"
	"sync"
	"time"

	"corpanalyst/cmd/internal/metrics"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/singleflight"
)

// TokenLifetime is how long an issued token is reused before a new one is requested.
const TokenLifetime = 55 * time.Minute

var ErrEmptyToken = errors.New("authenticator returned an empty token")

type Authenticator interface {
	Authenticate(ctx context.Context) (string, error)
}

type TokenOption func(*TokenManager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) {
		m.now = now
	}
}

// TokenManager owns the process-wide bearer token. Concurrent callers that
// find the token missing or expired share a single authentication request.
type TokenManager struct {
	auth  Authenticator
	now   func() time.Time
	group singleflight.Group

	mu        sync.Mutex
	token     string
	issuedAt  time.Time
	expiresAt time.Time
}

func NewTokenManager(auth Authenticator, opts ...TokenOption) *TokenManager {
	m := &TokenManager{
		auth: auth,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetValidToken returns the cached token while it is younger than
// TokenLifetime and, for JWTs carrying an exp claim, not yet expired.
// Otherwise it authenticates again.
func (m *TokenManager) GetValidToken(ctx context.Context) (string, error) {
	if token, ok := m.cached(); ok {
		return token, nil
	}

	v, err, _ := m.group.Do("token", func() (any, error) {
		if token, ok := m.cached(); ok {
			return token, nil
		}

		log.Info("Refreshing zoominfo token")
		// The request is shared by every waiting caller, so it must not be
		// cancelled along with the one that started it.
		token, err := m.auth.Authenticate(context.WithoutCancel(ctx))
		if err != nil {
			metrics.TokenRefreshes.WithLabelValues(provider, "error").Inc()
			return "", err
		}

		if token == "" {
			metrics.TokenRefreshes.WithLabelValues(provider, "error").Inc()
			return "", ErrEmptyToken
		}

		m.store(token)
		metrics.TokenRefreshes.WithLabelValues(provider, "ok").Inc()
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token so the next call authenticates again.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = ""
	m.issuedAt = time.Time{}
	m.expiresAt = time.Time{}
}

func (m *TokenManager) cached() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == "" {
		return "", false
	}

	now := m.now()
	if now.Sub(m.issuedAt) >= TokenLifetime {
		return "", false
	}

	if !m.expiresAt.IsZero() && !now.Before(m.expiresAt) {
		return "", false
	}
	return m.token, true
}

func (m *TokenManager) store(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
	m.issuedAt = m.now()
	m.expiresAt = tokenExpiry(token)
}

// tokenExpiry reads the exp claim without verifying the signature; the token
// is only inspected here, never trusted. Opaque tokens yield the zero time.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
