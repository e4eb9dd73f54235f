package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskhive/taskhive/internal/domain"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, email_hash, password_hash, email_verified)
		 VALUES ($1, $2, $3, $4)`,
		u.ID, u.EmailHash, u.PasswordHash, u.EmailVerified,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, email_hash, password_hash, email_verified, created_at, updated_at
		 FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) FindByEmailHash(ctx context.Context, emailHash string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, email_hash, password_hash, email_verified, created_at, updated_at
		 FROM users WHERE email_hash = $1`, emailHash)
	return scanUser(row)
}

func (r *UserRepository) MarkEmailVerified(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET email_verified = TRUE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) LinkOAuthIdentity(ctx context.Context, identity *domain.OAuthIdentity) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO oauth_identities (provider, provider_user_id, user_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (provider, provider_user_id) DO NOTHING`,
		identity.Provider, identity.ProviderUserID, identity.UserID,
	)
	if err != nil {
		return fmt.Errorf("link oauth identity: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByOAuthIdentity(ctx context.Context, provider, providerUserID string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT u.id, u.email_hash, u.password_hash, u.email_verified, u.created_at, u.updated_at
		 FROM users u
		 JOIN oauth_identities oi ON oi.user_id = u.id
		 WHERE oi.provider = $1 AND oi.provider_user_id = $2`,
		provider, providerUserID)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.EmailHash, &u.PasswordHash, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
