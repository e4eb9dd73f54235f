// Package token issues and validates access and refresh tokens.
//
// Access tokens are short-lived and stateless. Refresh tokens carry a
// unique jti that is recorded server-side; the store is the authoritative
// source for revocation, so a credential pair moves Issued -> Active ->
// Expired or Revoked and a revoked token is rejected deterministically.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/repository"
	"github.com/taskhive/taskhive/internal/result"
)

const (
	accessTokenTTL = time.Hour

	// Refresh windows selected by the remember-me flag.
	refreshTTLShort = 24 * time.Hour
	refreshTTLLong  = 30 * 24 * time.Hour
)

type Service struct {
	secret   []byte
	issuer   string
	audience string
	store    repository.RefreshTokenStore
	now      func() time.Time
}

func NewService(secret []byte, issuer, audience string, store repository.RefreshTokenStore) *Service {
	return &Service{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		store:    store,
		now:      time.Now,
	}
}

// WithClock overrides the time source for expiry-boundary tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ExpiryWindow selects the refresh window. Pure policy, no side effects.
func ExpiryWindow(rememberMe bool) time.Duration {
	if rememberMe {
		return refreshTTLLong
	}
	return refreshTTLShort
}

// GenerateAccessToken issues a short-lived stateless token for userID.
func (s *Service) GenerateAccessToken(_ context.Context, userID, emailHash string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":        userID,
		"email_hash": emailHash,
		"iss":        s.issuer,
		"aud":        s.audience,
		"iat":        now.Unix(),
		"exp":        now.Add(accessTokenTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// GenerateRefreshToken issues a revocable long-lived token and records its
// identity in the store.
func (s *Service) GenerateRefreshToken(ctx context.Context, userID string, rememberMe bool) (string, error) {
	now := s.now()
	jti := uuid.NewString()
	expiresAt := now.Add(ExpiryWindow(rememberMe))

	claims := jwt.MapClaims{
		"sub": userID,
		"jti": jti,
		"iss": s.issuer,
		"aud": s.audience,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.store.Save(ctx, jti, userID, expiresAt); err != nil {
		return "", fmt.Errorf("save refresh token: %w", err)
	}
	return signed, nil
}

// parse runs signature, issuer, audience, and expiry checks with zero
// leeway: a token expired by a millisecond is already invalid. The default
// leeway is stricter than typical deployments on purpose, to shrink the
// replay window.
func (s *Service) parse(token string) (jwt.MapClaims, *domain.Error) {
	parsed, err := jwt.Parse(token,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(s.now),
		jwt.WithLeeway(0),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, domain.ErrInvalidCredentials
		case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, domain.ErrInvalidCredentials
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		default:
			return nil, domain.ErrTokenMalformed
		}
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	return claims, nil
}

// ValidateAccessToken checks the token and returns nothing but the verdict.
func (s *Service) ValidateAccessToken(_ context.Context, token string) result.Result[struct{}] {
	if _, derr := s.parse(token); derr != nil {
		return result.Err[struct{}](derr)
	}
	return result.Ok(struct{}{})
}

// UserIDFromToken validates the token and extracts the subject.
func (s *Service) UserIDFromToken(_ context.Context, token string) result.Result[string] {
	claims, derr := s.parse(token)
	if derr != nil {
		return result.Err[string](derr)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return result.Err[string](domain.ErrTokenMalformed)
	}
	return result.Ok(sub)
}

// ValidateRefreshToken validates the token claims and cross-checks the
// store that this jti is still active for this exact user. Signature alone
// is not enough: a revoked token still carries a valid signature.
func (s *Service) ValidateRefreshToken(ctx context.Context, token, userID string) result.Result[string] {
	claims, derr := s.parse(token)
	if derr != nil {
		return result.Err[string](derr)
	}

	sub, _ := claims["sub"].(string)
	jti, _ := claims["jti"].(string)
	if sub == "" || jti == "" {
		return result.Err[string](domain.ErrTokenMalformed)
	}
	if sub != userID {
		return result.Err[string](domain.ErrInvalidCredentials)
	}

	active, err := s.store.IsActive(ctx, jti, userID)
	if err != nil {
		return result.Err[string](domain.ErrInvalidCredentials.WithMessage("refresh token could not be verified"))
	}
	if !active {
		return result.Err[string](domain.ErrTokenRevoked)
	}
	return result.Ok(sub)
}

// RevokeRefreshToken transitions the token's jti to revoked. Works on any
// parseable token regardless of expiry: revoking an already-expired token
// is harmless, and logout must never fail because the clock ran out first.
func (s *Service) RevokeRefreshToken(ctx context.Context, token string) error {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return domain.ErrTokenMalformed
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return domain.ErrTokenMalformed
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return domain.ErrTokenMalformed
	}

	if err := s.store.Revoke(ctx, jti); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
