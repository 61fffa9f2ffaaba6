package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

type TaskService struct {
	tasks TaskRepository
}

func NewTaskService(tasks TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// List returns the owner's tasks newest first, optionally narrowed by a
// case-insensitive substring of the title.
func (s *TaskService) List(ctx context.Context, ownerID, q string) ([]task.Task, error) {
	if ownerID == "" {
		return nil, errMissingOwner
	}

	items, err := s.tasks.ListByOwner(ctx, ownerID, task.ListTasksFilter{Query: q})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return items, nil
}

func (s *TaskService) Create(ctx context.Context, ownerID string, req task.CreateTaskRequest) (task.Task, error) {
	if ownerID == "" {
		return task.Task{}, errMissingOwner
	}
	if err := req.Validate(); err != nil {
		return task.Task{}, err
	}

	t, err := s.tasks.Create(ctx, ownerID, req.Title)
	if err != nil {
		// the account was deleted after its token was issued
		if errors.Is(err, user.ErrNotFound) {
			return task.Task{}, user.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// Update applies only the provided fields. A task that does not exist and a
// task owned by someone else both yield task.ErrNotFound.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, req task.UpdateTaskRequest) (task.Task, error) {
	if ownerID == "" {
		return task.Task{}, errMissingOwner
	}
	if err := req.Validate(); err != nil {
		return task.Task{}, err
	}
	if !task.ValidID(taskID) {
		return task.Task{}, task.ErrNotFound
	}

	t, err := s.tasks.UpdateByOwnerAndID(ctx, ownerID, taskID, req)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) error {
	if ownerID == "" {
		return errMissingOwner
	}
	if !task.ValidID(taskID) {
		return task.ErrNotFound
	}

	err := s.tasks.DeleteByOwnerAndID(ctx, ownerID, taskID)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return task.ErrNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
