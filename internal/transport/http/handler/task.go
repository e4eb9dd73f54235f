package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/result"
	"github.com/taskhive/taskhive/internal/usecase"
)

type taskUsecaser interface {
	Create(ctx context.Context, cmd usecase.CreateTaskCommand) result.Result[*domain.Task]
	List(ctx context.Context, cmd usecase.ListTasksCommand) result.Result[[]*domain.Task]
	Get(ctx context.Context, cmd usecase.TaskRefCommand) result.Result[*domain.Task]
	Complete(ctx context.Context, cmd usecase.TaskRefCommand) result.Result[struct{}]
	Delete(ctx context.Context, cmd usecase.TaskRefCommand) result.Result[struct{}]
}

type TaskHandler struct {
	tasks  taskUsecaser
	logger *slog.Logger
}

func NewTaskHandler(tasks taskUsecaser, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger.With("component", "task_handler")}
}

type createTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type taskResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description,omitempty"`
	Status      domain.TaskStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}

// callerID reads the user set by the auth middleware.
func callerID(c *gin.Context) string {
	return c.GetString("userID")
}

// POST /tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r := h.tasks.Create(c.Request.Context(), usecase.CreateTaskCommand{
		UserID:      callerID(c),
		Title:       req.Title,
		Description: req.Description,
	})
	if !r.IsOk() {
		respondError(c, r.Error())
		return
	}
	c.JSON(http.StatusCreated, toTaskResponse(r.Value()))
}

// GET /tasks?limit=&offset=
func (h *TaskHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	r := h.tasks.List(c.Request.Context(), usecase.ListTasksCommand{
		UserID: callerID(c),
		Limit:  limit,
		Offset: offset,
	})
	if !r.IsOk() {
		respondError(c, r.Error())
		return
	}

	out := make([]taskResponse, 0, len(r.Value()))
	for _, t := range r.Value() {
		out = append(out, toTaskResponse(t))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out})
}

// GET /tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	r := h.tasks.Get(c.Request.Context(), usecase.TaskRefCommand{
		UserID: callerID(c),
		TaskID: c.Param("id"),
	})
	if !r.IsOk() {
		respondError(c, r.Error())
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(r.Value()))
}

// POST /tasks/:id/complete
func (h *TaskHandler) Complete(c *gin.Context) {
	r := h.tasks.Complete(c.Request.Context(), usecase.TaskRefCommand{
		UserID: callerID(c),
		TaskID: c.Param("id"),
	})
	if !r.IsOk() {
		respondError(c, r.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	r := h.tasks.Delete(c.Request.Context(), usecase.TaskRefCommand{
		UserID: callerID(c),
		TaskID: c.Param("id"),
	})
	if !r.IsOk() {
		respondError(c, r.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
