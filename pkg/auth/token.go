package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	pkgerrors "github.com/digiberkat/storefront-go/pkg/errors"
)

// TokenProvider supplies the bearer token attached to every API request.
// Token issuance and storage live outside this module; implementations only
// hand back whatever credential the host app holds.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenProvider wraps a fixed bearer token. When the token is a JWT,
// its expiry is checked locally so an expired session fails fast instead of
// burning a round trip.
type StaticTokenProvider struct {
	token string
	now   func() time.Time
}

func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{
		token: strings.TrimSpace(token),
		now:   time.Now,
	}
}

func (p *StaticTokenProvider) Token(ctx context.Context) (string, error) {
	if p == nil || p.token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "bearer token is not configured")
	}
	if expiry, ok := tokenExpiry(p.token); ok && !p.now().Before(expiry) {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "Sesi Anda telah berakhir. Silakan login kembali.")
	}
	return p.token, nil
}

// tokenExpiry extracts exp from a JWT without verifying the signature; the
// server remains the authority, this is only a fast local pre-check. Opaque
// tokens report no expiry and are passed through untouched.
func tokenExpiry(raw string) (time.Time, bool) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
