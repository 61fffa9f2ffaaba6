package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/repo/memory"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/geocoder89/taskhub/internal/repo/sqlite"
	"github.com/geocoder89/taskhub/internal/service"
)

const (
	KindMemory   = "memory"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
)

// Store bundles the repositories of one backend with its lifecycle.
type Store struct {
	Kind  string
	Users service.UserRepository
	Tasks service.TaskRepository

	ping  func(ctx context.Context) error
	close func()
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the underlying pool or handle. Safe to call more than once.
func (s *Store) Close() {
	if s == nil || s.close == nil {
		return
	}
	s.close()
	s.close = nil
}

// Open picks a backend from databaseURL:
//
//	""                          in-process maps, nothing persists
//	sqlite://path, file:path    embedded SQLite file (sqlite://:memory: for a throwaway db)
//	postgres://, postgresql://  PostgreSQL via pgxpool
//
// SQL backends are migrated before Open returns.
func Open(ctx context.Context, databaseURL string, prom *observability.Prom) (*Store, error) {
	raw := strings.TrimSpace(databaseURL)

	switch {
	case raw == "":
		users := memory.NewUsersRepo()
		return &Store{
			Kind:  KindMemory,
			Users: users,
			Tasks: memory.NewTasksRepo(),
			ping:  users.Ping,
		}, nil

	case strings.HasPrefix(raw, "sqlite://"), strings.HasPrefix(raw, "file:"):
		path := strings.TrimPrefix(strings.TrimPrefix(raw, "sqlite://"), "file:")

		sqlDB, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}

		return &Store{
			Kind:  KindSQLite,
			Users: sqlite.NewUsersRepo(sqlDB, prom),
			Tasks: sqlite.NewTasksRepo(sqlDB, prom),
			ping:  sqlDB.PingContext,
			close: func() { _ = sqlDB.Close() },
		}, nil

	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		if err := MigratePostgres(ctx, raw); err != nil {
			return nil, err
		}

		pool, err := NewPool(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("db connect error: %w", err)
		}

		return &Store{
			Kind:  KindPostgres,
			Users: postgres.NewUsersRepo(pool, prom),
			Tasks: postgres.NewTasksRepo(pool, prom),
			ping:  pool.Ping,
			close: pool.Close,
		}, nil
	}

	return nil, fmt.Errorf("unsupported DATABASE_URL scheme in %q", redactURL(raw))
}

// redactURL drops everything after the scheme so credentials never reach logs.
func redactURL(raw string) string {
	if i := strings.Index(raw, "://"); i >= 0 {
		return raw[:i+3] + "..."
	}
	if i := strings.Index(raw, ":"); i >= 0 {
		return raw[:i+1] + "..."
	}
	return "..."
}
