package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/observability"
)

type TasksRepo struct {
	db   *sql.DB
	prom *observability.Prom
}

func NewTasksRepo(db *sql.DB, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{db: db, prom: prom}
}

func (r *TasksRepo) Create(ctx context.Context, ownerID, title string) (task.Task, error) {
	t := task.NewForOwner(ownerID, title)
	t.CreatedAt = t.CreatedAt.Truncate(time.Millisecond)
	t.UpdatedAt = t.CreatedAt

	err := r.prom.ObserveDB("tasks.create", func() error {
		_, e := r.db.ExecContext(ctx,
			`INSERT INTO tasks (id, user_id, title, completed, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			t.ID, t.UserID, t.Title, t.Completed, toMillis(t.CreatedAt), toMillis(t.UpdatedAt),
		)
		return e
	})
	if err != nil {
		// the owner row is gone
		if isForeignKeyViolation(err) {
			return task.Task{}, user.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

// ListByOwner filters titles in Go: SQLite's lower() only folds ASCII.
func (r *TasksRepo) ListByOwner(ctx context.Context, ownerID string, filter task.ListTasksFilter) ([]task.Task, error) {
	out := make([]task.Task, 0)

	err := r.prom.ObserveDB("tasks.list_by_owner", func() error {
		rows, err := r.db.QueryContext(ctx,
			`SELECT id, user_id, title, completed, created_at, updated_at
			FROM tasks
			WHERE user_id = ?
			ORDER BY created_at DESC, id DESC`, ownerID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			t, err := scanTask(rows)
			if err != nil {
				return err
			}
			if filter.Matches(t.Title) {
				out = append(out, t)
			}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *TasksRepo) UpdateByOwnerAndID(ctx context.Context, ownerID, id string, req task.UpdateTaskRequest) (task.Task, error) {
	var (
		t   task.Task
		now = toMillis(time.Now())
	)

	var touched any
	if !req.Empty() {
		touched = now
	}

	err := r.prom.ObserveDB("tasks.update_by_owner", func() error {
		row := r.db.QueryRowContext(ctx,
			`UPDATE tasks
			SET title = COALESCE(?, title),
				completed = COALESCE(?, completed),
				updated_at = COALESCE(?, updated_at)
			WHERE id = ? AND user_id = ?
			RETURNING id, user_id, title, completed, created_at, updated_at`,
			nullString(req.Title), nullBool(req.Completed), touched, id, ownerID,
		)
		var err error
		t, err = scanTask(row)
		return err
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) DeleteByOwnerAndID(ctx context.Context, ownerID, id string) error {
	var affected int64

	err := r.prom.ObserveDB("tasks.delete_by_owner", func() error {
		res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, ownerID)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return task.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (task.Task, error) {
	var (
		t                task.Task
		created, updated int64
	)
	if err := s.Scan(&t.ID, &t.UserID, &t.Title, &t.Completed, &created, &updated); err != nil {
		return task.Task{}, err
	}
	t.CreatedAt = fromMillis(created)
	t.UpdatedAt = fromMillis(updated)
	return t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
