package bot

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func messageUpdate(text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: 1},
		Chat: &tgbotapi.Chat{ID: 1},
		Text: text,
	}
	if len(text) > 0 && text[0] == '/' {
		end := len(text)
		for i, r := range text {
			if r == ' ' {
				end = i
				break
			}
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	}
	return tgbotapi.Update{Message: msg}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb1",
		From: &tgbotapi.User{ID: 1},
		Data: data,
	}}
}

func TestRouterMessagePrecedence(t *testing.T) {
	var got string
	record := func(name string) HandlerFunc {
		return func(ctx context.Context, u tgbotapi.Update) { got = name }
	}

	r := NewRouter()
	r.Command("start", record("command"))
	r.Text("Меню", record("text"))
	r.StateText("awaiting_name", record("state"))
	r.Fallback(record("fallback"))

	ctx := context.Background()

	t.Run("command wins over state", func(t *testing.T) {
		assert.True(t, r.RouteMessage(ctx, messageUpdate("/start abc"), "awaiting_name"))
		assert.Equal(t, "command", got)
	})

	t.Run("button text wins over state", func(t *testing.T) {
		assert.True(t, r.RouteMessage(ctx, messageUpdate("Меню"), "awaiting_name"))
		assert.Equal(t, "text", got)
	})

	t.Run("state handler catches free text", func(t *testing.T) {
		assert.True(t, r.RouteMessage(ctx, messageUpdate("Иванов Иван"), "awaiting_name"))
		assert.Equal(t, "state", got)
	})

	t.Run("fallback when nothing matches", func(t *testing.T) {
		assert.True(t, r.RouteMessage(ctx, messageUpdate("произвольный текст"), ""))
		assert.Equal(t, "fallback", got)
	})
}

func TestRouterCallbackLongestPrefixWins(t *testing.T) {
	var got string
	record := func(name string) HandlerFunc {
		return func(ctx context.Context, u tgbotapi.Update) { got = name }
	}

	r := NewRouter()
	r.CallbackPrefix("spec:", record("short"))
	r.CallbackPrefix("spec:page:", record("long"))
	r.Callback("spec:page:-@0", record("exact"))

	ctx := context.Background()

	assert.True(t, r.RouteCallback(ctx, callbackUpdate("spec:page:-@0")))
	assert.Equal(t, "exact", got)

	assert.True(t, r.RouteCallback(ctx, callbackUpdate("spec:page:-@5")))
	assert.Equal(t, "long", got)

	assert.True(t, r.RouteCallback(ctx, callbackUpdate("spec:del:abc")))
	assert.Equal(t, "short", got)

	assert.False(t, r.RouteCallback(ctx, callbackUpdate("unknown:x:y")))
}

func TestRouterCallbackRegistrationOrderBreaksTies(t *testing.T) {
	var got string
	record := func(name string) HandlerFunc {
		return func(ctx context.Context, u tgbotapi.Update) { got = name }
	}

	r := NewRouter()
	r.CallbackPrefix("aa:", record("first"))
	r.CallbackPrefix("ab:", record("second"))

	assert.True(t, r.RouteCallback(context.Background(), callbackUpdate("aa:x:y")))
	assert.Equal(t, "first", got)
	assert.True(t, r.RouteCallback(context.Background(), callbackUpdate("ab:x:y")))
	assert.Equal(t, "second", got)
}
