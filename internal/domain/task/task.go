package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain"
	"github.com/google/uuid"
)

// ErrNotFound covers both a missing task and a task owned by someone else.
var ErrNotFound = errors.New("task not found")

type Task struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type CreateTaskRequest struct {
	Title string `json:"title" binding:"required"`
}

// UpdateTaskRequest is a partial update, nil fields are left untouched.
type UpdateTaskRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// UnmarshalJSON rejects an explicit null: a field is either omitted or set.
func (r *UpdateTaskRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for _, key := range []string{"title", "completed"} {
		if v, ok := raw[key]; ok && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return domain.NewValidationError(key, "must not be null")
		}
	}

	type plain UpdateTaskRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*r = UpdateTaskRequest(p)
	return nil
}

type ListTasksFilter struct {
	Query string
}

func (r *CreateTaskRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)

	if r.Title == "" {
		return domain.NewValidationError("title", "is required")
	}
	return nil
}

func (r *UpdateTaskRequest) Validate() error {
	if r.Title == nil {
		return nil
	}

	t := strings.TrimSpace(*r.Title)
	if t == "" {
		return domain.NewValidationError("title", "must not be empty")
	}
	r.Title = &t
	return nil
}

func (r UpdateTaskRequest) Empty() bool {
	return r.Title == nil && r.Completed == nil
}

// Matches reports whether title contains the query exactly as given, ignoring
// case. Only an empty query matches everything; whitespace is part of the term.
func (f ListTasksFilter) Matches(title string) bool {
	if f.Query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(f.Query))
}

// NewForOwner builds a task with a time-ordered id so ties on createdAt still
// sort newest first.
func NewForOwner(ownerID, title string) Task {
	now := time.Now().UTC()

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	return Task{
		ID:        id.String(),
		UserID:    ownerID,
		Title:     title,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidID reports whether id could name a task. Anything else is treated as not found.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
