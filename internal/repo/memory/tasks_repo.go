package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
)

type TasksRepo struct {
	mu    sync.RWMutex
	items map[string]stored
	seq   uint64
}

// stored keeps insertion order so listing stays stable when clocks tie.
type stored struct {
	task task.Task
	seq  uint64
}

func NewTasksRepo() *TasksRepo {
	return &TasksRepo{
		items: make(map[string]stored),
	}
}

func (r *TasksRepo) Create(ctx context.Context, ownerID, title string) (task.Task, error) {
	if err := ctx.Err(); err != nil {
		return task.Task{}, err
	}

	t := task.NewForOwner(ownerID, title)

	r.mu.Lock()
	r.seq++
	r.items[t.ID] = stored{task: t, seq: r.seq}
	r.mu.Unlock()

	return t, nil
}

func (r *TasksRepo) ListByOwner(ctx context.Context, ownerID string, filter task.ListTasksFilter) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	matched := make([]stored, 0)
	for _, s := range r.items {
		if s.task.UserID == ownerID && filter.Matches(s.task.Title) {
			matched = append(matched, s)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].seq > matched[j].seq
	})

	out := make([]task.Task, 0, len(matched))
	for _, s := range matched {
		out = append(out, s.task)
	}
	return out, nil
}

// UpdateByOwnerAndID matches and mutates under one lock.
func (r *TasksRepo) UpdateByOwnerAndID(ctx context.Context, ownerID, id string, req task.UpdateTaskRequest) (task.Task, error) {
	if err := ctx.Err(); err != nil {
		return task.Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[id]
	if !ok || s.task.UserID != ownerID {
		return task.Task{}, task.ErrNotFound
	}

	if req.Title != nil {
		s.task.Title = *req.Title
	}
	if req.Completed != nil {
		s.task.Completed = *req.Completed
	}
	if !req.Empty() {
		s.task.UpdatedAt = time.Now().UTC()
	}

	r.items[id] = s
	return s.task, nil
}

func (r *TasksRepo) DeleteByOwnerAndID(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[id]
	if !ok || s.task.UserID != ownerID {
		return task.ErrNotFound
	}

	delete(r.items, id)
	return nil
}
