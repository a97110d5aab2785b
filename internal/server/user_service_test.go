package server

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashcording/agent-service/internal/config"
	"github.com/flashcording/agent-service/internal/db"
	"github.com/flashcording/agent-service/internal/types"
)

// fakeUserStore keeps users in memory.
type fakeUserStore struct {
	users map[uuid.UUID]*db.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*db.User)}
}

func (s *fakeUserStore) CreateUser(_ context.Context, username, email, passwordHash string) (*db.User, error) {
	user := &db.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Level:        1,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetUserByID(_ context.Context, id uuid.UUID) (*db.User, error) {
	return s.users[id], nil
}

func (s *fakeUserStore) UpdateUserPassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	if u, ok := s.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func testPasswordConfig(t *testing.T) *config.PasswordConfig {
	t.Helper()
	return &config.PasswordConfig{BcryptCost: 10}
}

func TestUserServiceRegisterAndLogin(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store, testPasswordConfig(t))
	ctx := context.Background()

	user, err := svc.Register(ctx, &types.CreateUserRequest{
		Username: "learner1",
		Email:    "learner@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.Equal(t, "learner1", user.Username)
	assert.Equal(t, 1, user.Level)

	// Password hash never leaves the service.
	logged, err := svc.Login(ctx, &types.LoginRequest{
		Email:    "learner@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
}

func TestUserServiceRegisterDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store, testPasswordConfig(t))
	ctx := context.Background()

	_, err := svc.Register(ctx, &types.CreateUserRequest{
		Username: "first", Email: "dup@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &types.CreateUserRequest{
		Username: "second", Email: "dup@example.com", Password: "supersecret",
	})
	require.Error(t, err)
	assert.IsType(t, &ErrEmailAlreadyExists{}, err)
}

func TestUserServiceLoginFailures(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store, testPasswordConfig(t))
	ctx := context.Background()

	_, err := svc.Register(ctx, &types.CreateUserRequest{
		Username: "learner1", Email: "learner@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	// Wrong password and unknown email produce the same generic error.
	_, err = svc.Login(ctx, &types.LoginRequest{Email: "learner@example.com", Password: "wrong-password"})
	assert.IsType(t, &ErrInvalidCredentials{}, err)

	_, err = svc.Login(ctx, &types.LoginRequest{Email: "nobody@example.com", Password: "supersecret"})
	assert.IsType(t, &ErrInvalidCredentials{}, err)
}

func TestUserServiceUpdatePassword(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store, testPasswordConfig(t))
	ctx := context.Background()

	user, err := svc.Register(ctx, &types.CreateUserRequest{
		Username: "learner1", Email: "learner@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	// Wrong current password is rejected.
	err = svc.UpdatePassword(ctx, user.ID, "wrong", "newpassword1")
	assert.IsType(t, &ErrPasswordMismatch{}, err)

	require.NoError(t, svc.UpdatePassword(ctx, user.ID, "supersecret", "newpassword1"))

	_, err = svc.Login(ctx, &types.LoginRequest{Email: "learner@example.com", Password: "newpassword1"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, &types.LoginRequest{Email: "learner@example.com", Password: "supersecret"})
	assert.Error(t, err)
}

func TestUserServiceGetUser(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store, testPasswordConfig(t))
	ctx := context.Background()

	_, err := svc.GetUser(ctx, uuid.New())
	assert.IsType(t, &ErrUserNotFound{}, err)
}
