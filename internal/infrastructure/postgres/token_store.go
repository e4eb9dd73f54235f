package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RefreshTokenStore persists refresh-token identities. Validation reads and
// revocation writes hit the same table directly, so a committed revoke is
// visible to every subsequent IsActive.
type RefreshTokenStore struct {
	pool *pgxpool.Pool
}

func NewRefreshTokenStore(pool *pgxpool.Pool) *RefreshTokenStore {
	return &RefreshTokenStore{pool: pool}
}

func (s *RefreshTokenStore) Save(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO refresh_tokens (jti, user_id, expires_at) VALUES ($1, $2, $3)`,
		jti, userID, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

func (s *RefreshTokenStore) IsActive(ctx context.Context, jti, userID string) (bool, error) {
	var active bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM refresh_tokens
		   WHERE jti = $1 AND user_id = $2 AND revoked_at IS NULL AND expires_at > now()
		 )`, jti, userID).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("check refresh token: %w", err)
	}
	return active, nil
}

func (s *RefreshTokenStore) Revoke(ctx context.Context, jti string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = now() WHERE jti = $1 AND revoked_at IS NULL`, jti)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (s *RefreshTokenStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

// VerificationTokenStore records consumed email-verification jtis.
type VerificationTokenStore struct {
	pool *pgxpool.Pool
}

func NewVerificationTokenStore(pool *pgxpool.Pool) *VerificationTokenStore {
	return &VerificationTokenStore{pool: pool}
}

// Consume claims the jti with an insert; the unique constraint makes the
// second claim lose deterministically.
func (s *VerificationTokenStore) Consume(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO consumed_verification_tokens (jti, expires_at)
		 VALUES ($1, $2)
		 ON CONFLICT (jti) DO NOTHING`,
		jti, expiresAt,
	)
	if err != nil {
		return false, fmt.Errorf("consume verification token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *VerificationTokenStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM consumed_verification_tokens WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired verification tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
