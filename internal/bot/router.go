package bot

import (
	"context"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type HandlerFunc func(ctx context.Context, update tgbotapi.Update)

type prefixRoute struct {
	prefix  string
	order   int
	handler HandlerFunc
}

// Router — явный реестр обработчиков вместо разросшегося switch.
// Порядок диспетчеризации сообщений: команда (точно) -> текст кнопки
// (точно) -> текстовый обработчик текущего шага -> fallback. Для
// callback: точное совпадение -> самый длинный зарегистрированный
// префикс (при равной длине побеждает более ранняя регистрация).
type Router struct {
	commands        map[string]HandlerFunc
	texts           map[string]HandlerFunc
	callbackExact   map[string]HandlerFunc
	callbackPrefix  []prefixRoute
	stateText       map[string]HandlerFunc
	messageFallback HandlerFunc
}

func NewRouter() *Router {
	return &Router{
		commands:      make(map[string]HandlerFunc),
		texts:         make(map[string]HandlerFunc),
		callbackExact: make(map[string]HandlerFunc),
		stateText:     make(map[string]HandlerFunc),
	}
}

// Command регистрирует обработчик команды по имени без слеша ("start").
func (r *Router) Command(name string, h HandlerFunc) {
	r.commands[name] = h
}

// Text регистрирует точное совпадение текста reply-кнопки.
func (r *Router) Text(text string, h HandlerFunc) {
	r.texts[text] = h
}

// Callback регистрирует точное совпадение callback-данных.
func (r *Router) Callback(data string, h HandlerFunc) {
	r.callbackExact[data] = h
}

// CallbackPrefix регистрирует обработчик по префиксу callback-данных.
func (r *Router) CallbackPrefix(prefix string, h HandlerFunc) {
	r.callbackPrefix = append(r.callbackPrefix, prefixRoute{
		prefix:  prefix,
		order:   len(r.callbackPrefix),
		handler: h,
	})
	// Более длинный префикс всегда проверяется раньше; стабильность
	// сортировки сохраняет порядок регистрации при равной длине.
	sort.SliceStable(r.callbackPrefix, func(i, j int) bool {
		return len(r.callbackPrefix[i].prefix) > len(r.callbackPrefix[j].prefix)
	})
}

// StateText регистрирует обработчик произвольного текста для шага диалога.
func (r *Router) StateText(step string, h HandlerFunc) {
	r.stateText[step] = h
}

// Fallback вызывается, когда сообщение не подошло ни одному маршруту.
func (r *Router) Fallback(h HandlerFunc) {
	r.messageFallback = h
}

// RouteMessage диспетчеризует входящее сообщение. step — текущий шаг
// диалога пользователя (пустая строка, если состояния нет).
func (r *Router) RouteMessage(ctx context.Context, update tgbotapi.Update, step string) bool {
	msg := update.Message
	if msg == nil {
		return false
	}

	if msg.IsCommand() {
		if h, ok := r.commands[msg.Command()]; ok {
			h(ctx, update)
			return true
		}
	}

	if h, ok := r.texts[strings.TrimSpace(msg.Text)]; ok {
		h(ctx, update)
		return true
	}

	if step != "" {
		if h, ok := r.stateText[step]; ok {
			h(ctx, update)
			return true
		}
	}

	if r.messageFallback != nil {
		r.messageFallback(ctx, update)
		return true
	}
	return false
}

// RouteCallback диспетчеризует callback от inline-кнопки.
func (r *Router) RouteCallback(ctx context.Context, update tgbotapi.Update) bool {
	cb := update.CallbackQuery
	if cb == nil {
		return false
	}

	if h, ok := r.callbackExact[cb.Data]; ok {
		h(ctx, update)
		return true
	}

	for _, route := range r.callbackPrefix {
		if strings.HasPrefix(cb.Data, route.prefix) {
			route.handler(ctx, update)
			return true
		}
	}
	return false
}
