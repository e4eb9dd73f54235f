package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/result"
	"github.com/taskhive/taskhive/internal/transport/http/handler"
	"github.com/taskhive/taskhive/internal/usecase"
)

type fakeTaskUsecase struct {
	create   func(ctx context.Context, cmd usecase.CreateTaskCommand) result.Result[*domain.Task]
	list     func(ctx context.Context, cmd usecase.ListTasksCommand) result.Result[[]*domain.Task]
	get      func(ctx context.Context, cmd usecase.TaskRefCommand) result.Result[*domain.Task]
	complete func(ctx context.Context, cmd usecase.TaskRefCommand) result.Result[struct{}]
	del      func(ctx context.Context, cmd usecase.TaskRefCommand) result.Result[struct{}]
}

func (f *fakeTaskUsecase) Create(ctx context.Context, cmd usecase.CreateTaskCommand) result.Result[*domain.Task] {
	return f.create(ctx, cmd)
}

func (f *fakeTaskUsecase) List(ctx context.Context, cmd usecase.ListTasksCommand) result.Result[[]*domain.Task] {
	return f.list(ctx, cmd)
}

func (f *fakeTaskUsecase) Get(ctx context.Context, cmd usecase.TaskRefCommand) result.Result[*domain.Task] {
	return f.get(ctx, cmd)
}

func (f *fakeTaskUsecase) Complete(ctx context.Context, cmd usecase.TaskRefCommand) result.Result[struct{}] {
	return f.complete(ctx, cmd)
}

func (f *fakeTaskUsecase) Delete(ctx context.Context, cmd usecase.TaskRefCommand) result.Result[struct{}] {
	return f.del(ctx, cmd)
}

// newTaskEngine routes through a stub auth middleware that injects the user.
func newTaskEngine(uc *fakeTaskUsecase, userID string) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewTaskHandler(uc, logger)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.POST("/tasks", h.Create)
	r.GET("/tasks", h.List)
	r.GET("/tasks/:id", h.GetByID)
	r.POST("/tasks/:id/complete", h.Complete)
	r.DELETE("/tasks/:id", h.Delete)
	return r
}

func TestCreateTask_UsesCallerIdentity(t *testing.T) {
	uc := &fakeTaskUsecase{
		create: func(_ context.Context, cmd usecase.CreateTaskCommand) result.Result[*domain.Task] {
			if cmd.UserID != "u1" {
				t.Errorf("user id = %q, want u1", cmd.UserID)
			}
			return result.Ok(&domain.Task{ID: "t1", Title: cmd.Title, Status: domain.TaskStatusOpen})
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"title":"buy milk"}`))
	req.Header.Set("Content-Type", "application/json")
	newTaskEngine(uc, "u1").ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"open"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGetTask_ForeignTask_Returns404(t *testing.T) {
	uc := &fakeTaskUsecase{
		get: func(_ context.Context, _ usecase.TaskRefCommand) result.Result[*domain.Task] {
			return result.Err[*domain.Task](domain.ErrTaskNotFound)
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks/3f0c8e1a-0000-0000-0000-000000000000", nil)
	newTaskEngine(uc, "u2").ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListTasks_EmptyIsJSONArray(t *testing.T) {
	uc := &fakeTaskUsecase{
		list: func(_ context.Context, cmd usecase.ListTasksCommand) result.Result[[]*domain.Task] {
			if cmd.Limit != 10 || cmd.Offset != 5 {
				t.Errorf("limit/offset = %d/%d", cmd.Limit, cmd.Offset)
			}
			return result.Ok([]*domain.Task(nil))
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks?limit=10&offset=5", nil)
	newTaskEngine(uc, "u1").ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"tasks":[]`) {
		t.Errorf("empty list must serialize as [], got %s", w.Body.String())
	}
}

func TestCompleteTask_Returns204(t *testing.T) {
	uc := &fakeTaskUsecase{
		complete: func(_ context.Context, cmd usecase.TaskRefCommand) result.Result[struct{}] {
			if cmd.TaskID == "" {
				t.Error("task id not carried through")
			}
			return result.Ok(struct{}{})
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tasks/3f0c8e1a-0000-0000-0000-000000000000/complete", nil)
	newTaskEngine(uc, "u1").ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}
