package bot

import (
	"context"
	"strings"

	"aoqbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type userCtxKey struct{}

func withUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

func userFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userCtxKey{}).(*models.User)
	return user
}

// ensureIdentity выполняется перед любым обработчиком: создает или
// обновляет пользователя и заново выдает роль admin привилегированному
// ID из конфигурации. Забаненные пользователи отсекаются здесь же.
func (b *Bot) ensureIdentity(ctx context.Context, from *tgbotapi.User) (*models.User, bool) {
	if from.IsBot {
		return nil, false
	}

	user, err := b.users.EnsureUser(ctx, from.ID, from.UserName, displayName(from))
	if err != nil {
		b.logger.Error().Err(err).Int64("tg_id", from.ID).Msg("Failed to ensure user")
		return nil, false
	}

	if from.ID == b.config.Bot.AdminID && user.Role != models.RoleAdmin {
		if err := b.users.PromotePrivileged(ctx, from.ID); err != nil {
			b.logger.Error().Err(err).Int64("tg_id", from.ID).Msg("Failed to promote privileged user")
		} else {
			user.Role = models.RoleAdmin
		}
	}

	if user.Role == models.RoleBanned {
		return nil, false
	}

	return user, true
}

// displayName собирает отображаемое имя из профиля Telegram.
// Пустой профиль дает пустое имя, username сюда не подставляется.
func displayName(from *tgbotapi.User) string {
	return strings.TrimSpace(from.FirstName + " " + from.LastName)
}
