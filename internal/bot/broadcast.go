package bot

import (
	"context"
	"fmt"

	"aoqbot/internal/events"
	"aoqbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

func (b *Bot) handleBroadcastStart(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	b.setUserState(ctx, userID, models.StateAwaitingBroadcastText, nil)
	b.sendMessage(update.Message.Chat.ID,
		"Отправьте сообщение для рассылки (текст, фото или документ). Оно будет скопировано всем пользователям бота.")
}

// handleBroadcastMessage запоминает исходное сообщение и просит
// подтверждение. Копирование по message_id сохраняет вложения без
// пометки «переслано».
func (b *Bot) handleBroadcastMessage(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID

	users, err := b.users.GetAll(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to load users for broadcast")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	b.setUserState(ctx, userID, models.StateAwaitingBroadcastText, map[string]interface{}{
		"broadcast_chat_id":    update.Message.Chat.ID,
		"broadcast_message_id": update.Message.MessageID,
	})

	if _, err := b.tgService.SendWithInlineKeyboard(update.Message.Chat.ID,
		fmt.Sprintf("Отправить рассылку %d получателям?", len(users)),
		confirmBroadcastKeyboard()); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send broadcast confirmation")
	}
}

func (b *Bot) handleBroadcastCancel(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	b.answerCallback(cb.ID, "")
	b.clearUserState(ctx, cb.From.ID)
	b.editOrResend(update, "Рассылка отменена.", nil)
}

func (b *Bot) handleBroadcastConfirm(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	b.answerCallback(cb.ID, "")

	state := b.getUserState(ctx, cb.From.ID)
	srcChatID := state.GetInt64("broadcast_chat_id")
	srcMessageID := state.GetInt("broadcast_message_id")
	if srcChatID == 0 || srcMessageID == 0 {
		b.editOrResend(update, "Сообщение для рассылки не найдено, начните заново.", nil)
		return
	}

	b.clearUserState(ctx, cb.From.ID)
	b.editOrResend(update, "Рассылка запущена.", nil)

	// Рассылка переживает таймаут обработки обновления
	go b.runBroadcast(cb.From.ID, cb.Message.Chat.ID, srcChatID, srcMessageID)
}

// runBroadcast копирует сообщение всем пользователям с ограничением
// темпа и отчетом о прогрессе каждые несколько получателей.
func (b *Bot) runBroadcast(adminTgID, progressChatID, srcChatID int64, srcMessageID int) {
	ctx := context.Background()

	users, err := b.users.GetAll(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Broadcast aborted: failed to load users")
		b.sendMessage(progressChatID, b.getErrorMessage(err))
		return
	}

	limiter := rate.NewLimiter(rate.Every(b.config.BroadcastInterval()), 1)

	var sent, failed int
	progressMsg, _ := b.tgService.SendMessage(progressChatID, fmt.Sprintf("Рассылка: 0 из %d", len(users)))

	for i, user := range users {
		if err := limiter.Wait(ctx); err != nil {
			break
		}

		if err := b.tgService.CopyMessage(user.TgID, srcChatID, srcMessageID); err != nil {
			// Заблокировавшие бота пользователи — ожидаемые потери
			b.logger.Warn().Err(err).Int64("tg_id", user.TgID).Msg("Broadcast delivery failed")
			failed++
			if b.metrics != nil {
				b.metrics.BroadcastFailed.Inc()
			}
		} else {
			sent++
			if b.metrics != nil {
				b.metrics.BroadcastDelivered.Inc()
			}
		}

		if (i+1)%models.BroadcastProgressEvery == 0 && progressMsg.MessageID != 0 {
			if _, err := b.tgService.EditMessage(progressChatID, progressMsg.MessageID,
				fmt.Sprintf("Рассылка: %d из %d", i+1, len(users)), nil); err != nil {
				b.logger.Warn().Err(err).Msg("Failed to update broadcast progress")
			}
		}
	}

	summary := fmt.Sprintf("Рассылка завершена.\nВсего: %d\nДоставлено: %d\nОшибок: %d", len(users), sent, failed)
	b.sendMessage(progressChatID, summary)

	if err := b.eventBus.PublishJSON(events.EventBroadcastFinished, events.BroadcastEventPayload{
		AdminTgID: adminTgID,
		Sent:      sent,
		Failed:    failed,
	}); err != nil {
		b.logger.Error().Err(err).Msg("Failed to publish broadcast event")
	}
}
