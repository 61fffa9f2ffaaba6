package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/gin-gonic/gin"
)

const tasksTimeout = 3 * time.Second

type Tasks interface {
	List(ctx context.Context, ownerID, q string) ([]task.Task, error)
	Create(ctx context.Context, ownerID string, req task.CreateTaskRequest) (task.Task, error)
	Update(ctx context.Context, ownerID, taskID string, req task.UpdateTaskRequest) (task.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) error
}

type TasksHandler struct {
	tasks Tasks
	log   *slog.Logger
}

func NewTasksHandler(tasks Tasks, log *slog.Logger) *TasksHandler {
	return &TasksHandler{tasks: tasks, log: log}
}

// ListTasks handles GET /api/tasks?q=, newest first.
func (h *TasksHandler) ListTasks(ctx *gin.Context) {
	ownerID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), tasksTimeout)
	defer cancel()

	items, err := h.tasks.List(cctx, ownerID, ctx.Query("q"))
	if err != nil {
		respondServiceError(ctx, h.log, err)
		return
	}

	if items == nil {
		items = []task.Task{}
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *TasksHandler) CreateTask(ctx *gin.Context) {
	ownerID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req task.CreateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), tasksTimeout)
	defer cancel()

	created, err := h.tasks.Create(cctx, ownerID, req)
	if err != nil {
		respondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

func (h *TasksHandler) UpdateTask(ctx *gin.Context) {
	ownerID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req task.UpdateTaskRequest

	if !BindOptionalJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), tasksTimeout)
	defer cancel()

	updated, err := h.tasks.Update(cctx, ownerID, ctx.Param("id"), req)
	if err != nil {
		respondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *TasksHandler) DeleteTask(ctx *gin.Context) {
	ownerID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), tasksTimeout)
	defer cancel()

	if err := h.tasks.Delete(cctx, ownerID, ctx.Param("id")); err != nil {
		respondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
