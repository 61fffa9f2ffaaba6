package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/cache"
	"github.com/geocoder89/taskhub/internal/domain"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/repo/memory"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/stretchr/testify/require"
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	users    *memory.UsersRepo
	tasks    *memory.TasksRepo
	tokens   *auth.Manager
	accounts *service.AccountService
	taskSvc  *service.TaskService
	profiles *service.ProfileService
}

func newFixture() fixture {
	users := memory.NewUsersRepo()
	tasks := memory.NewTasksRepo()
	tokens := auth.NewManager("test-secret", auth.DefaultTTL)

	return fixture{
		users:    users,
		tasks:    tasks,
		tokens:   tokens,
		accounts: service.NewAccountService(users, security.Hasher{}, tokens, nil, quietLog()),
		taskSvc:  service.NewTaskService(tasks),
		profiles: service.NewProfileService(users, cache.NewMemoryProfiles(time.Minute), quietLog()),
	}
}

func TestAccounts_SignUpThenLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p, err := f.accounts.SignUp(ctx, user.SignUpRequest{Name: "Ada", Email: "Ada@Example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, "ada@example.com", p.Email)

	stored, err := f.users.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotEqual(t, "secret1", stored.PasswordHash)

	tok, err := f.accounts.Login(ctx, user.LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	sub, err := f.tokens.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, p.ID, sub)
}

func TestAccounts_DuplicateSignUpConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.accounts.SignUp(ctx, user.SignUpRequest{Name: "Ada", Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.accounts.SignUp(ctx, user.SignUpRequest{Name: "Imposter", Email: "A@B.co", Password: "other12"})
	require.ErrorIs(t, err, user.ErrEmailTaken)
	require.Equal(t, 1, f.users.Count())
}

func TestAccounts_SignUpValidation(t *testing.T) {
	f := newFixture()

	_, err := f.accounts.SignUp(context.Background(), user.SignUpRequest{Name: "A", Email: "bad", Password: "1"})
	require.True(t, domain.IsValidation(err))
	require.Equal(t, 0, f.users.Count())
}

func TestAccounts_LoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.accounts.SignUp(ctx, user.SignUpRequest{Name: "Ada", Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	_, wrongPass := f.accounts.Login(ctx, user.LoginRequest{Email: "a@b.co", Password: "wrong-password"})
	_, noUser := f.accounts.Login(ctx, user.LoginRequest{Email: "ghost@b.co", Password: "secret1"})

	require.ErrorIs(t, wrongPass, service.ErrInvalidCredentials)
	require.ErrorIs(t, noUser, service.ErrInvalidCredentials)
	require.Equal(t, wrongPass.Error(), noUser.Error())
}

type failingUsers struct{ service.UserRepository }

func (failingUsers) GetByEmail(context.Context, string) (user.User, error) {
	return user.User{}, errors.New("connection refused")
}

func TestAccounts_LoginStorageErrorIsNotCredentialsError(t *testing.T) {
	s := service.NewAccountService(failingUsers{}, security.Hasher{}, auth.NewManager("k", 0), nil, quietLog())

	_, err := s.Login(context.Background(), user.LoginRequest{Email: "a@b.co", Password: "secret1"})
	require.Error(t, err)
	require.False(t, errors.Is(err, service.ErrInvalidCredentials))
}

func TestTasks_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.taskSvc.Create(ctx, "alice", task.CreateTaskRequest{Title: "Buy Milk"})
	require.NoError(t, err)
	require.False(t, created.Completed)

	list, err := f.taskSvc.List(ctx, "alice", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, created.ID, list[0].ID)

	done := true
	updated, err := f.taskSvc.Update(ctx, "alice", created.ID, task.UpdateTaskRequest{Completed: &done})
	require.NoError(t, err)
	require.True(t, updated.Completed)

	list, _ = f.taskSvc.List(ctx, "alice", "")
	require.True(t, list[0].Completed)

	require.NoError(t, f.taskSvc.Delete(ctx, "alice", created.ID))
	list, _ = f.taskSvc.List(ctx, "alice", "")
	require.Empty(t, list)
}

func TestTasks_OtherUserSeesNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	mine, err := f.taskSvc.Create(ctx, "alice", task.CreateTaskRequest{Title: "secret plans"})
	require.NoError(t, err)

	title := "hijacked"
	done := true
	_, err = f.taskSvc.Update(ctx, "bob", mine.ID, task.UpdateTaskRequest{Title: &title, Completed: &done})
	require.ErrorIs(t, err, task.ErrNotFound)

	err = f.taskSvc.Delete(ctx, "bob", mine.ID)
	require.ErrorIs(t, err, task.ErrNotFound)

	// same error as for an id that never existed
	_, missing := f.taskSvc.Update(ctx, "bob", task.NewForOwner("x", "y").ID, task.UpdateTaskRequest{Completed: &done})
	require.Equal(t, missing, err)

	bobs, _ := f.taskSvc.List(ctx, "bob", "")
	require.Empty(t, bobs)

	list, _ := f.taskSvc.List(ctx, "alice", "")
	require.Len(t, list, 1)
	require.Equal(t, "secret plans", list[0].Title)
	require.False(t, list[0].Completed)
}

func TestTasks_SearchAndOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	t1, _ := f.taskSvc.Create(ctx, "alice", task.CreateTaskRequest{Title: "Buy Milk"})
	t2, _ := f.taskSvc.Create(ctx, "alice", task.CreateTaskRequest{Title: "Call mum"})
	t3, _ := f.taskSvc.Create(ctx, "alice", task.CreateTaskRequest{Title: "File taxes"})

	list, err := f.taskSvc.List(ctx, "alice", "")
	require.NoError(t, err)
	require.Equal(t, []string{t3.ID, t2.ID, t1.ID}, []string{list[0].ID, list[1].ID, list[2].ID})

	for _, q := range []string{"milk", "MILK"} {
		got, err := f.taskSvc.List(ctx, "alice", q)
		require.NoError(t, err)
		require.Len(t, got, 1, q)
		require.Equal(t, t1.ID, got[0].ID)
	}

	none, err := f.taskSvc.List(ctx, "alice", "almond")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestTasks_SearchKeepsSurroundingSpaces(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.taskSvc.Create(ctx, "alice", task.CreateTaskRequest{Title: "Milkshake"})
	require.NoError(t, err)
	spaced, err := f.taskSvc.Create(ctx, "alice", task.CreateTaskRequest{Title: "Buy milk today"})
	require.NoError(t, err)

	got, err := f.taskSvc.List(ctx, "alice", " milk")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, spaced.ID, got[0].ID)

	got, err = f.taskSvc.List(ctx, "alice", "   ")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestTasks_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.taskSvc.Create(ctx, "alice", task.CreateTaskRequest{Title: "  "})
	require.True(t, domain.IsValidation(err))

	created, _ := f.taskSvc.Create(ctx, "alice", task.CreateTaskRequest{Title: "ok"})
	empty := ""
	_, err = f.taskSvc.Update(ctx, "alice", created.ID, task.UpdateTaskRequest{Title: &empty})
	require.True(t, domain.IsValidation(err))

	_, err = f.taskSvc.Update(ctx, "alice", "not-a-uuid", task.UpdateTaskRequest{})
	require.ErrorIs(t, err, task.ErrNotFound)
	require.ErrorIs(t, f.taskSvc.Delete(ctx, "alice", "not-a-uuid"), task.ErrNotFound)
}

func TestTasks_EmptyPatchReturnsCurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, _ := f.taskSvc.Create(ctx, "alice", task.CreateTaskRequest{Title: "keep"})
	got, err := f.taskSvc.Update(ctx, "alice", created.ID, task.UpdateTaskRequest{})
	require.NoError(t, err)
	require.Equal(t, "keep", got.Title)
}

func TestProfile_GetAndUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p, err := f.accounts.SignUp(ctx, user.SignUpRequest{Name: "Ada", Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	got, err := f.profiles.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, p, got)

	_, err = f.profiles.Update(ctx, p.ID, user.UpdateProfileRequest{Name: "A"})
	require.True(t, domain.IsValidation(err))

	updated, err := f.profiles.Update(ctx, p.ID, user.UpdateProfileRequest{Name: "Ada Lovelace"})
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", updated.Name)
	require.Equal(t, "a@b.co", updated.Email)

	// the cached copy was invalidated by the update
	again, err := f.profiles.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", again.Name)

	_, err = f.profiles.Get(ctx, "missing")
	require.ErrorIs(t, err, user.ErrNotFound)
}

type brokenCache struct{}

func (brokenCache) GetProfile(context.Context, string) (user.Profile, bool, error) {
	return user.Profile{}, false, errors.New("redis down")
}
func (brokenCache) SetProfile(context.Context, user.Profile) error { return errors.New("redis down") }
func (brokenCache) DeleteProfile(context.Context, string) error    { return errors.New("redis down") }

func TestProfile_CacheFailuresAreMisses(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUsersRepo()
	u, err := users.Create(ctx, "a@b.co", "h", "Ada")
	require.NoError(t, err)

	s := service.NewProfileService(users, brokenCache{}, quietLog())

	got, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada", got.Name)

	_, err = s.Update(ctx, u.ID, user.UpdateProfileRequest{Name: "Ada L"})
	require.NoError(t, err)
}

type ownerlessTasks struct{ service.TaskRepository }

func (ownerlessTasks) Create(context.Context, string, string) (task.Task, error) {
	return task.Task{}, user.ErrNotFound
}

func TestTasks_CreateForDeletedAccount(t *testing.T) {
	s := service.NewTaskService(ownerlessTasks{})

	_, err := s.Create(context.Background(), "gone", task.CreateTaskRequest{Title: "Orphan"})
	require.ErrorIs(t, err, user.ErrNotFound)
}
