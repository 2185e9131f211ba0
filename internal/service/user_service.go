package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aoqbot/internal/config"
	"aoqbot/internal/database"
	"aoqbot/internal/domain"
	"aoqbot/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo   domain.Repository
	config *config.Config
	logger *zerolog.Logger
}

func NewUserService(repo domain.Repository, cfg *config.Config, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		config: cfg,
		logger: logger,
	}
}

// EnsureUser создает пользователя при первом контакте и обновляет
// username/имя, если они поменялись в Telegram. Username хранится в
// нижнем регистре, иначе поиск по @username зависел бы от написания.
func (s *UserService) EnsureUser(ctx context.Context, tgID int64, username, fullName string) (*models.User, error) {
	username = strings.ToLower(username)
	user, err := s.repo.GetUserByTgID(ctx, tgID)
	if errors.Is(err, database.ErrNotFound) {
		user = &models.User{
			TgID:     tgID,
			Username: username,
			FullName: fullName,
		}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to ensure user: %w", err)
		}
		s.logger.Info().Int64("tg_id", tgID).Str("username", username).Msg("Новый пользователь")
		return user, nil
	}
	if err != nil {
		return nil, err
	}

	if user.Username != username || user.FullName != fullName {
		if err := s.repo.UpdateUserIdentity(ctx, tgID, username, fullName); err != nil {
			return nil, err
		}
		user.Username = username
		user.FullName = fullName
	}

	return user, nil
}

// PromotePrivileged поддерживает роль admin у владельца из конфигурации,
// даже если кто-то понизил его через команды.
func (s *UserService) PromotePrivileged(ctx context.Context, tgID int64) error {
	if tgID != s.config.Bot.AdminID {
		return nil
	}
	user, err := s.repo.GetUserByTgID(ctx, tgID)
	if err != nil {
		return err
	}
	if user.Role == models.RoleAdmin {
		return nil
	}
	return s.repo.UpdateUserRole(ctx, tgID, models.RoleAdmin)
}

func (s *UserService) SetRoleByUsername(ctx context.Context, username, role string) error {
	return s.repo.UpdateUserRoleByUsername(ctx, strings.ToLower(username), role)
}

func (s *UserService) SetSubcategory(ctx context.Context, tgID int64, subcategoryID string) error {
	return s.repo.UpdateUserSubcategory(ctx, tgID, subcategoryID)
}

func (s *UserService) GetByTgID(ctx context.Context, tgID int64) (*models.User, error) {
	return s.repo.GetUserByTgID(ctx, tgID)
}

func (s *UserService) GetAll(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

func (s *UserService) GetAdmins(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetUsersByRole(ctx, models.RoleAdmin)
}
