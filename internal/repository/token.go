package repository

import (
	"context"
	"time"
)

// RefreshTokenStore is the one authoritative piece of server-side token
// state. Revocation and validation must go through the same store so a
// revoke observed by one request is observed by every later read; a lagging
// cache here would reopen the replay window.
type RefreshTokenStore interface {
	// Save records an issued refresh token identity.
	Save(ctx context.Context, jti, userID string, expiresAt time.Time) error

	// IsActive reports whether jti is still active for that exact user.
	IsActive(ctx context.Context, jti, userID string) (bool, error)

	// Revoke transitions jti from active to revoked. Revoking an unknown
	// or already-revoked jti is a no-op.
	Revoke(ctx context.Context, jti string) error

	// DeleteExpired removes rows whose expiry is before cutoff and returns
	// how many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// VerificationTokenStore records consumed email-verification jtis so a
// captured token cannot be replayed inside its validity window.
type VerificationTokenStore interface {
	// Consume claims jti atomically. The second claim of the same jti
	// returns false.
	Consume(ctx context.Context, jti string, expiresAt time.Time) (bool, error)

	// DeleteExpired removes consumed-jti rows past their expiry.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
