package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/stretchr/testify/require"
)

func TestUsersRepo_EmailUnique(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	u, err := r.Create(ctx, "a@b.co", "hash", "Ada")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	_, err = r.Create(ctx, "a@b.co", "hash2", "Other")
	require.ErrorIs(t, err, user.ErrEmailTaken)
	require.Equal(t, 1, r.Count())

	got, err := r.GetByEmail(ctx, "a@b.co")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = r.GetByEmail(ctx, "missing@b.co")
	require.ErrorIs(t, err, user.ErrNotFound)
}

func TestUsersRepo_ConcurrentSignupsSameEmail(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Create(ctx, "race@b.co", "h", "Racer"); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, created)
	require.Equal(t, 1, r.Count())
}

func TestUsersRepo_UpdateName(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	u, err := r.Create(ctx, "a@b.co", "hash", "Ada")
	require.NoError(t, err)

	updated, err := r.UpdateName(ctx, u.ID, "Ada L")
	require.NoError(t, err)
	require.Equal(t, "Ada L", updated.Name)
	require.Equal(t, "a@b.co", updated.Email)

	_, err = r.UpdateName(ctx, "nope", "x")
	require.ErrorIs(t, err, user.ErrNotFound)
}

func TestTasksRepo_OrderSearchAndOwnership(t *testing.T) {
	ctx := context.Background()
	r := NewTasksRepo()

	t1, _ := r.Create(ctx, "alice", "Buy Milk")
	t2, _ := r.Create(ctx, "alice", "Walk dog")
	t3, _ := r.Create(ctx, "alice", "almond butter")
	_, _ = r.Create(ctx, "bob", "bob milk")

	all, err := r.ListByOwner(ctx, "alice", task.ListTasksFilter{})
	require.NoError(t, err)
	require.Equal(t, []string{t3.ID, t2.ID, t1.ID}, ids(all))

	milk, err := r.ListByOwner(ctx, "alice", task.ListTasksFilter{Query: "MILK"})
	require.NoError(t, err)
	require.Equal(t, []string{t1.ID}, ids(milk))

	done := true
	_, err = r.UpdateByOwnerAndID(ctx, "bob", t1.ID, task.UpdateTaskRequest{Completed: &done})
	require.ErrorIs(t, err, task.ErrNotFound)

	err = r.DeleteByOwnerAndID(ctx, "bob", t1.ID)
	require.ErrorIs(t, err, task.ErrNotFound)

	still, _ := r.ListByOwner(ctx, "alice", task.ListTasksFilter{Query: "milk"})
	require.Len(t, still, 1)
	require.False(t, still[0].Completed)

	updated, err := r.UpdateByOwnerAndID(ctx, "alice", t1.ID, task.UpdateTaskRequest{Completed: &done})
	require.NoError(t, err)
	require.True(t, updated.Completed)
	require.Equal(t, "Buy Milk", updated.Title)

	require.NoError(t, r.DeleteByOwnerAndID(ctx, "alice", t1.ID))
	require.ErrorIs(t, r.DeleteByOwnerAndID(ctx, "alice", t1.ID), task.ErrNotFound)
}

func ids(ts []task.Task) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}
