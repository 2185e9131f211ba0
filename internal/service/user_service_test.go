package service

import (
	"context"
	"testing"

	"aoqbot/internal/config"
	"aoqbot/internal/database"
	"aoqbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserService(repo *MockRepository) *UserService {
	logger := zerolog.Nop()
	cfg := &config.Config{}
	cfg.Bot.AdminID = 1000
	return NewUserService(repo, cfg, &logger)
}

func TestEnsureUser(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesNewUser", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newUserService(repo)

		repo.On("GetUserByTgID", ctx, int64(42)).Return(nil, database.ErrNotFound).Once()
		repo.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

		user, err := svc.EnsureUser(ctx, 42, "alice", "Алиса")
		require.NoError(t, err)
		assert.Equal(t, int64(42), user.TgID)
		assert.Equal(t, "alice", user.Username)
		repo.AssertExpectations(t)
	})

	t.Run("UpdatesChangedIdentity", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newUserService(repo)

		existing := &models.User{ID: "u1", TgID: 42, Username: "old", FullName: "Старое Имя"}
		repo.On("GetUserByTgID", ctx, int64(42)).Return(existing, nil).Once()
		repo.On("UpdateUserIdentity", ctx, int64(42), "new", "Новое Имя").Return(nil).Once()

		user, err := svc.EnsureUser(ctx, 42, "new", "Новое Имя")
		require.NoError(t, err)
		assert.Equal(t, "new", user.Username)
		repo.AssertExpectations(t)
	})

	t.Run("LowercasesUsername", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newUserService(repo)

		repo.On("GetUserByTgID", ctx, int64(42)).Return(nil, database.ErrNotFound).Once()
		repo.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

		user, err := svc.EnsureUser(ctx, 42, "Alice", "Алиса")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		repo.AssertExpectations(t)
	})

	t.Run("NoopWhenUnchanged", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newUserService(repo)

		existing := &models.User{ID: "u1", TgID: 42, Username: "alice", FullName: "Алиса"}
		repo.On("GetUserByTgID", ctx, int64(42)).Return(existing, nil).Once()

		_, err := svc.EnsureUser(ctx, 42, "alice", "Алиса")
		require.NoError(t, err)
		repo.AssertNotCalled(t, "UpdateUserIdentity")
	})
}

func TestPromotePrivileged(t *testing.T) {
	ctx := context.Background()

	t.Run("PromotesConfiguredAdmin", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newUserService(repo)

		repo.On("GetUserByTgID", ctx, int64(1000)).Return(&models.User{TgID: 1000, Role: models.RoleUser}, nil).Once()
		repo.On("UpdateUserRole", ctx, int64(1000), models.RoleAdmin).Return(nil).Once()

		require.NoError(t, svc.PromotePrivileged(ctx, 1000))
		repo.AssertExpectations(t)
	})

	t.Run("SkipsWhenAlreadyAdmin", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newUserService(repo)

		repo.On("GetUserByTgID", ctx, int64(1000)).Return(&models.User{TgID: 1000, Role: models.RoleAdmin}, nil).Once()

		require.NoError(t, svc.PromotePrivileged(ctx, 1000))
		repo.AssertNotCalled(t, "UpdateUserRole")
	})

	t.Run("IgnoresOtherUsers", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newUserService(repo)

		require.NoError(t, svc.PromotePrivileged(ctx, 5))
		repo.AssertNotCalled(t, "GetUserByTgID")
	})
}

func TestSetRoleByUsername(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := newUserService(repo)

	repo.On("UpdateUserRoleByUsername", ctx, "bob", models.RoleModerator).Return(nil).Once()
	require.NoError(t, svc.SetRoleByUsername(ctx, "Bob", models.RoleModerator))

	repo.On("UpdateUserRoleByUsername", ctx, "ghost", models.RoleBanned).Return(database.ErrNotFound).Once()
	err := svc.SetRoleByUsername(ctx, "ghost", models.RoleBanned)
	assert.ErrorIs(t, err, database.ErrNotFound)
}
