package bot

import (
	"context"
	"testing"

	"aoqbot/internal/events"
	"aoqbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastTallyCountsFailures(t *testing.T) {
	b, tg, users, _, _, _, bus := newTestBot(t)

	users.users = map[int64]*models.User{
		101: {ID: "a", TgID: 101, Role: models.RoleUser},
		102: {ID: "b", TgID: 102, Role: models.RoleUser},
		103: {ID: "c", TgID: 103, Role: models.RoleUser},
	}
	// Один получатель заблокировал бота
	tg.copyFailFor = map[int64]bool{102: true}

	b.runBroadcast(999, 999, 999, 42)

	assert.Len(t, tg.copiedTo, 2)

	texts := tg.texts()
	require.NotEmpty(t, texts)
	final := texts[len(texts)-1]
	assert.Contains(t, final, "Всего: 3")
	assert.Contains(t, final, "Доставлено: 2")
	assert.Contains(t, final, "Ошибок: 1")

	require.Len(t, bus.events, 1)
	assert.Equal(t, events.EventBroadcastFinished, bus.events[0])
}

func TestBroadcastConfirmWithoutStagedMessage(t *testing.T) {
	b, tg, _, _, _, _, bus := newTestBot(t)

	upd := callbackUpdate("bc:confirm:-")
	upd.CallbackQuery.From = &tgbotapi.User{ID: 999, UserName: "boss"}
	upd.CallbackQuery.Message = &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: 999}}

	// Пользователь 999 — привилегированный админ из конфигурации
	b.processUpdate(context.Background(), upd)

	require.NotEmpty(t, tg.editedTexts)
	assert.Contains(t, tg.editedTexts[0], "начните заново")
	assert.Empty(t, bus.events)
}
