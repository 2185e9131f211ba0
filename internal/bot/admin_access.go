package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aoqbot/internal/database"
	"aoqbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleAccessMenu(ctx context.Context, update tgbotapi.Update) {
	admins, err := b.users.GetAdmins(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to load admins")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	var message strings.Builder
	message.WriteString("🔑 Управление доступами\n\nТекущие сотрудники:\n")
	for _, admin := range admins {
		message.WriteString(fmt.Sprintf("• @%s — %s\n", admin.Username, admin.Role))
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Администратор", FormatCallback(Callback{Action: "acc", Entity: "grant", ID: models.RoleAdmin})),
			tgbotapi.NewInlineKeyboardButtonData("➕ Модератор", FormatCallback(Callback{Action: "acc", Entity: "grant", ID: models.RoleModerator})),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖ Снять доступ", FormatCallback(Callback{Action: "acc", Entity: "revoke", ID: models.RoleUser})),
		),
	)

	if _, err := b.tgService.SendWithInlineKeyboard(update.Message.Chat.ID, message.String(), kb); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send access menu")
	}
}

// handleAccessAction ставит пользователя в ожидание @username;
// целевая роль едет в TempData.
func (b *Bot) handleAccessAction(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	c, err := ParseCallback(cb.Data)
	if err != nil {
		return
	}
	b.answerCallback(cb.ID, "")

	switch c.ID {
	case models.RoleAdmin, models.RoleModerator, models.RoleUser:
	default:
		return
	}

	b.setUserState(ctx, cb.From.ID, models.StateAwaitingUsername, map[string]interface{}{
		"target_role": c.ID,
	})

	prompt := "Отправьте @username пользователя, которому нужно выдать роль: " + c.ID
	if c.Entity == "revoke" {
		prompt = "Отправьте @username сотрудника, у которого нужно снять доступ."
	}
	b.editOrResend(update, prompt, nil)
}

func (b *Bot) handleUsernameInput(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	state := b.getUserState(ctx, userID)
	role := state.GetString("target_role")
	if role == "" {
		b.clearUserState(ctx, userID)
		return
	}

	username := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "@"))
	if username == "" {
		b.sendMessage(update.Message.Chat.ID, "Отправьте @username одним сообщением.")
		return
	}

	if err := b.users.SetRoleByUsername(ctx, username, role); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			b.sendMessage(update.Message.Chat.ID,
				"Пользователь с таким username не найден. Он должен хотя бы раз написать боту.")
			return
		}
		b.logger.Error().Err(err).Str("username", username).Msg("Failed to set role")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	b.clearUserState(ctx, userID)
	b.sendMessage(update.Message.Chat.ID, fmt.Sprintf("Готово: @%s теперь %s.", username, role))
}
