package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TasksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTasksRepo(pool *pgxpool.Pool, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *TasksRepo) Create(ctx context.Context, ownerID, title string) (task.Task, error) {
	t := task.NewForOwner(ownerID, title)

	err := r.prom.ObserveDB("tasks.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO tasks (id, user_id, title, completed, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,$6)`,
			t.ID, t.UserID, t.Title, t.Completed, t.CreatedAt, t.UpdatedAt)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return task.Task{}, user.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) ListByOwner(ctx context.Context, ownerID string, filter task.ListTasksFilter) ([]task.Task, error) {
	query := `SELECT id, user_id, title, completed, created_at, updated_at
	FROM tasks
	WHERE user_id = $1`
	args := []any{ownerID}

	// strpos keeps this a literal substring match, no LIKE wildcards to escape
	if q := filter.Query; q != "" {
		query += ` AND strpos(lower(title), lower($2)) > 0`
		args = append(args, q)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	output := make([]task.Task, 0)

	err := r.prom.ObserveDB("tasks.list_by_owner", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t task.Task
			if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
				return err
			}
			output = append(output, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

// UpdateByOwnerAndID matches on id and owner and mutates in the same statement.
// COALESCE leaves fields the caller did not send untouched.
func (r *TasksRepo) UpdateByOwnerAndID(ctx context.Context, ownerID, id string, req task.UpdateTaskRequest) (task.Task, error) {
	var t task.Task

	err := r.prom.ObserveDB("tasks.update_by_owner", func() error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE tasks
				SET title = COALESCE($3, title),
					completed = COALESCE($4, completed),
					updated_at = CASE WHEN $3::text IS NULL AND $4::boolean IS NULL THEN updated_at ELSE NOW() END
			WHERE id = $1 AND user_id = $2
			RETURNING id, user_id, title, completed, created_at, updated_at`,
			id,
			ownerID,
			req.Title,
			req.Completed,
		).Scan(
			&t.ID,
			&t.UserID,
			&t.Title,
			&t.Completed,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
	})

	if err != nil {
		// no row: missing or someone else's, indistinguishable on purpose
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) DeleteByOwnerAndID(ctx context.Context, ownerID, id string) error {
	var affected int64

	err := r.prom.ObserveDB("tasks.delete_by_owner", func() error {
		tag, e := r.pool.Exec(ctx, `
			DELETE FROM tasks WHERE id = $1 AND user_id = $2
		`, id, ownerID)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return task.ErrNotFound
	}

	return nil
}
