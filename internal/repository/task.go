package repository

import (
	"context"

	"github.com/taskhive/taskhive/internal/domain"
)

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id, userID string) (*domain.Task, error)
	List(ctx context.Context, userID string, limit, offset int) ([]*domain.Task, error)
	Complete(ctx context.Context, id, userID string) error
	Delete(ctx context.Context, id, userID string) error
}
