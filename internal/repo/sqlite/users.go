package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/google/uuid"
)

type UsersRepo struct {
	db   *sql.DB
	prom *observability.Prom
}

func NewUsersRepo(db *sql.DB, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{db: db, prom: prom}
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, name string) (user.User, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	u := user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.prom.ObserveDB("users.create", func() error {
		_, e := r.db.ExecContext(ctx,
			`INSERT INTO users (id, email, password_hash, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			u.ID, u.Email, u.PasswordHash, u.Name, toMillis(u.CreatedAt), toMillis(u.UpdatedAt),
		)
		return e
	})

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, r.db, "users.get_by_email",
		`SELECT id, email, password_hash, name, created_at, updated_at FROM users WHERE email = ?`, email)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, r.db, "users.get_by_id",
		`SELECT id, email, password_hash, name, created_at, updated_at FROM users WHERE id = ?`, id)
}

func (r *UsersRepo) UpdateName(ctx context.Context, id, name string) (user.User, error) {
	return r.getOne(ctx, r.db, "users.update_name",
		`UPDATE users SET name = ?, updated_at = ? WHERE id = ?
		RETURNING id, email, password_hash, name, created_at, updated_at`,
		name, toMillis(time.Now()), id)
}

func (r *UsersRepo) getOne(ctx context.Context, q queryer, op, query string, args ...any) (user.User, error) {
	var (
		u                  user.User
		created, updatedAt int64
	)

	err := r.prom.ObserveDB(op, func() error {
		return q.QueryRowContext(ctx, query, args...).Scan(
			&u.ID, &u.Email, &u.PasswordHash, &u.Name, &created, &updatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}
