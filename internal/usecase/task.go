package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/pipeline"
	"github.com/taskhive/taskhive/internal/repository"
	"github.com/taskhive/taskhive/internal/result"
)

const maxTaskTitleLen = 200

type TaskUsecase struct {
	tasks    repository.TaskRepository
	registry *pipeline.Registry
	logger   *slog.Logger
}

func NewTaskUsecase(tasks repository.TaskRepository, logger *slog.Logger) *TaskUsecase {
	u := &TaskUsecase{
		tasks:    tasks,
		registry: pipeline.NewRegistry(),
		logger:   logger.With("component", "task_usecase"),
	}
	u.registerValidators()
	return u
}

type CreateTaskCommand struct {
	UserID      string
	Title       string
	Description string
}

type TaskRefCommand struct {
	UserID string
	TaskID string
}

type ListTasksCommand struct {
	UserID string
	Limit  int
	Offset int
}

func (u *TaskUsecase) registerValidators() {
	pipeline.Register(u.registry, func(_ context.Context, cmd CreateTaskCommand) *domain.Error {
		if strings.TrimSpace(cmd.Title) == "" {
			return domain.NewValidationError("TITLE_REQUIRED", "title is required")
		}
		return nil
	})
	pipeline.Register(u.registry, func(_ context.Context, cmd CreateTaskCommand) *domain.Error {
		if len(cmd.Title) > maxTaskTitleLen {
			return domain.NewValidationError("TITLE_TOO_LONG", "title must be at most 200 characters")
		}
		return nil
	})
	pipeline.Register(u.registry, func(_ context.Context, cmd TaskRefCommand) *domain.Error {
		if _, err := uuid.Parse(cmd.TaskID); err != nil {
			return domain.NewValidationError("TASK_ID_INVALID", "task id must be a valid uuid")
		}
		return nil
	})
}

func (u *TaskUsecase) Create(ctx context.Context, cmd CreateTaskCommand) result.Result[*domain.Task] {
	return pipeline.Dispatch(ctx, u.registry, cmd, u.create)
}

func (u *TaskUsecase) create(ctx context.Context, cmd CreateTaskCommand) result.Result[*domain.Task] {
	task := &domain.Task{
		ID:     uuid.NewString(),
		UserID: cmd.UserID,
		Title:  strings.TrimSpace(cmd.Title),
		Status: domain.TaskStatusOpen,
	}
	if cmd.Description != "" {
		task.Description = &cmd.Description
	}
	if err := u.tasks.Create(ctx, task); err != nil {
		u.logger.ErrorContext(ctx, "create task", "error", err)
		return result.Err[*domain.Task](domain.NewValidationError("TASK_CREATE_FAILED", "task could not be created"))
	}
	return result.Ok(task)
}

func (u *TaskUsecase) List(ctx context.Context, cmd ListTasksCommand) result.Result[[]*domain.Task] {
	return pipeline.Dispatch(ctx, u.registry, cmd, u.list)
}

func (u *TaskUsecase) list(ctx context.Context, cmd ListTasksCommand) result.Result[[]*domain.Task] {
	limit := cmd.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := cmd.Offset
	if offset < 0 {
		offset = 0
	}
	tasks, err := u.tasks.List(ctx, cmd.UserID, limit, offset)
	if err != nil {
		u.logger.ErrorContext(ctx, "list tasks", "error", err)
		return result.Err[[]*domain.Task](domain.NewValidationError("TASK_LIST_FAILED", "tasks could not be listed"))
	}
	return result.Ok(tasks)
}

func (u *TaskUsecase) Get(ctx context.Context, cmd TaskRefCommand) result.Result[*domain.Task] {
	return pipeline.Dispatch(ctx, u.registry, cmd, u.get)
}

func (u *TaskUsecase) get(ctx context.Context, cmd TaskRefCommand) result.Result[*domain.Task] {
	task, err := u.tasks.FindByID(ctx, cmd.TaskID, cmd.UserID)
	if err != nil {
		return result.Err[*domain.Task](taskError(err))
	}
	return result.Ok(task)
}

func (u *TaskUsecase) Complete(ctx context.Context, cmd TaskRefCommand) result.Result[struct{}] {
	return pipeline.Dispatch(ctx, u.registry, cmd, u.complete)
}

func (u *TaskUsecase) complete(ctx context.Context, cmd TaskRefCommand) result.Result[struct{}] {
	if err := u.tasks.Complete(ctx, cmd.TaskID, cmd.UserID); err != nil {
		return result.Err[struct{}](taskError(err))
	}
	return result.Ok(struct{}{})
}

func (u *TaskUsecase) Delete(ctx context.Context, cmd TaskRefCommand) result.Result[struct{}] {
	return pipeline.Dispatch(ctx, u.registry, cmd, u.delete)
}

func (u *TaskUsecase) delete(ctx context.Context, cmd TaskRefCommand) result.Result[struct{}] {
	if err := u.tasks.Delete(ctx, cmd.TaskID, cmd.UserID); err != nil {
		return result.Err[struct{}](taskError(err))
	}
	return result.Ok(struct{}{})
}

// taskError maps repository failures, hiding storage detail from callers. A
// task owned by someone else surfaces as not found, never as forbidden.
func taskError(err error) *domain.Error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return derr
	}
	return domain.NewValidationError("TASK_UNAVAILABLE", "task could not be loaded")
}
