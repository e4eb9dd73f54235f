package repository

import (
	"context"

	"github.com/taskhive/taskhive/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmailHash(ctx context.Context, emailHash string) (*domain.User, error)
	MarkEmailVerified(ctx context.Context, id string) error
	LinkOAuthIdentity(ctx context.Context, identity *domain.OAuthIdentity) error
	FindByOAuthIdentity(ctx context.Context, provider, providerUserID string) (*domain.User, error)
}
