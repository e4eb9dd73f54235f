// Package verification issues and validates single-purpose email
// verification tokens.
package verification

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

// purposeClaim scopes a token to exactly one use case. A valid access token
// must never pass as a verification token and vice versa.
const purposeClaim = "email_verification"

const defaultTTL = 24 * time.Hour

type Service struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	store    repository.VerificationTokenStore
	now      func() time.Time
}

func NewService(secret []byte, issuer, audience string, store repository.VerificationTokenStore) *Service {
	return &Service{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		ttl:      defaultTTL,
		store:    store,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Tests use this to probe expiry
// boundaries.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Generate issues a signed, purpose-scoped, time-boxed token for userID.
func (s *Service) Generate(_ context.Context, userID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":     userID,
		"purpose": purposeClaim,
		"jti":     uuid.NewString(),
		"iss":     s.issuer,
		"aud":     s.audience,
		"iat":     now.Unix(),
		"exp":     now.Add(s.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign verification token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, issuer/audience, expiry, and purpose, in that
// order, and returns the user id. Each check failing maps to a distinct
// error kind so callers can give precise feedback where that is safe.
func (s *Service) Validate(_ context.Context, token string) result.Result[string] {
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
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return result.Err[string](classifyParseError(err))
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return result.Err[string](domain.ErrTokenMalformed)
	}

	purpose, _ := claims["purpose"].(string)
	if purpose != purposeClaim {
		return result.Err[string](domain.ErrTokenWrongPurpose)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return result.Err[string](domain.ErrTokenMalformed)
	}
	return result.Ok(sub)
}

// Consume validates the token and atomically claims its jti, so a token is
// honored at most once inside its validity window.
func (s *Service) Consume(ctx context.Context, token string) result.Result[string] {
	validated := s.Validate(ctx, token)
	if !validated.IsOk() {
		return validated
	}

	jti, exp, err := s.tokenIdentity(token)
	if err != nil {
		return result.Err[string](domain.ErrTokenMalformed)
	}

	claimed, err := s.store.Consume(ctx, jti, exp)
	if err != nil {
		return result.Err[string](domain.ErrTokenMalformed.WithMessage("verification token could not be processed"))
	}
	if !claimed {
		return result.Err[string](domain.ErrTokenAlreadyUsed)
	}
	return validated
}

// tokenIdentity re-reads jti and exp from an already-validated token.
func (s *Service) tokenIdentity(token string) (string, time.Time, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", time.Time{}, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", time.Time{}, errors.New("unexpected claims type")
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return "", time.Time{}, errors.New("missing jti")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return "", time.Time{}, errors.New("missing exp")
	}
	return jti, exp.Time, nil
}

// classifyParseError maps jwt library errors onto the domain taxonomy.
// Checks mirror the validation order: signature, issuer/audience, expiry.
func classifyParseError(err error) *domain.Error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.ErrInvalidCredentials
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return domain.ErrInvalidCredentials
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	default:
		return domain.ErrTokenMalformed
	}
}
