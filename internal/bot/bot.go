package bot

import (
	"context"
	"os"
	"time"

	"aoqbot/internal/config"
	"aoqbot/internal/database"
	"aoqbot/internal/domain"
	"aoqbot/internal/export"
	"aoqbot/internal/importer"
	"aoqbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Bot struct {
	tgService   domain.TelegramService
	config      *config.Config
	states      domain.StateManager
	users       domain.UserDirectory
	assessments domain.AssessmentManager
	repo        domain.Repository
	npsPlanner  domain.NPSPlanner
	qrWorker    domain.QRWorker
	eventBus    domain.EventPublisher
	roster      *importer.RosterImporter
	taxonomy    *importer.TaxonomyImporter
	excel       *export.ExcelExporter
	word        *export.WordExporter
	backups     *database.BackupService
	router      *Router
	metrics     *Metrics
	logger      *zerolog.Logger
}

func NewBot(
	tgService domain.TelegramService,
	config *config.Config,
	states domain.StateManager,
	users domain.UserDirectory,
	assessments domain.AssessmentManager,
	repo domain.Repository,
	npsPlanner domain.NPSPlanner,
	qrWorker domain.QRWorker,
	eventBus domain.EventPublisher,
	roster *importer.RosterImporter,
	taxonomy *importer.TaxonomyImporter,
	excel *export.ExcelExporter,
	word *export.WordExporter,
	backups *database.BackupService,
	metrics *Metrics,
	logger *zerolog.Logger,
) (*Bot, error) {
	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	b := &Bot{
		tgService:   tgService,
		config:      config,
		states:      states,
		users:       users,
		assessments: assessments,
		repo:        repo,
		npsPlanner:  npsPlanner,
		qrWorker:    qrWorker,
		eventBus:    eventBus,
		roster:      roster,
		taxonomy:    taxonomy,
		excel:       excel,
		word:        word,
		backups:     backups,
		metrics:     metrics,
		logger:      logger,
	}
	b.router = b.buildRouter()
	return b, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) Stop() {
	b.tgService.StopReceivingUpdates()
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		}
	}()

	// Создаем контекст для обработки каждого обновления
	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	requestID := uuid.New().String()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		from := updateSender(update)
		if from == nil {
			return
		}

		user, ok := b.ensureIdentity(updateCtx, from)
		if !ok {
			return
		}
		updateCtx = withUser(updateCtx, user)

		if !user.IsStaff() {
			allowed, err := b.states.CheckRateLimit(updateCtx, from.ID, b.config.Bot.RateLimitMessages, time.Duration(b.config.Bot.RateLimitWindow)*time.Second)
			if err != nil {
				b.logger.Error().Err(err).Int64("user_id", from.ID).Msg("Rate limit check failed")
			} else if !allowed {
				b.logger.Warn().Int64("user_id", from.ID).Msg("Rate limit exceeded")
				if update.Message != nil {
					b.sendMessage(update.Message.Chat.ID, "⚠️ Вы отправляете сообщения слишком часто. Пожалуйста, подождите немного.")
				}
				return
			}
		}

		if update.CallbackQuery != nil {
			if b.metrics != nil {
				b.metrics.CallbacksProcessed.Inc()
			}
			if !b.router.RouteCallback(updateCtx, update) {
				b.logger.Warn().Str("callback_data", update.CallbackQuery.Data).Msg("Unknown callback data")
				b.answerCallback(update.CallbackQuery.ID, "")
			}
			return
		}

		if update.Message == nil {
			return
		}

		if b.metrics != nil {
			b.metrics.MessagesProcessed.Inc()
		}

		state, err := b.states.GetUserState(updateCtx, from.ID)
		if err != nil {
			b.logger.Error().Err(err).Int64("user_id", from.ID).Msg("Failed to load user state")
		}

		b.router.RouteMessage(updateCtx, update, state.Step())
	})
}

func (b *Bot) withRecovery(handler func()) {
	defer func() {
		if r := recover(); r != nil {
			if b.metrics != nil {
				b.metrics.ErrorsTotal.Inc()
			}
			b.logger.Error().Interface("panic", r).Msg("Recovered from panic in update handler")
		}
	}()
	handler()
}

func updateSender(update tgbotapi.Update) *tgbotapi.User {
	if update.Message != nil {
		return update.Message.From
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From
	}
	return nil
}

// chatID возвращает чат, в который следует отвечать.
func chatID(update tgbotapi.Update) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.tgService.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	if err := b.tgService.AnswerCallback(callbackID, text); err != nil {
		b.logger.Error().Err(err).Msg("Failed to answer callback")
	}
}

// editOrResend правит сообщение inline-кнопки; при неудаче (например,
// сообщение слишком старое) удаляет его и отправляет новое.
func (b *Bot) editOrResend(update tgbotapi.Update, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	cb := update.CallbackQuery
	if cb == nil || cb.Message == nil {
		return
	}
	if _, err := b.tgService.EditMessage(cb.Message.Chat.ID, cb.Message.MessageID, text, keyboard); err != nil {
		b.logger.Warn().Err(err).Msg("Edit failed, resending message")
		if delErr := b.tgService.DeleteMessage(cb.Message.Chat.ID, cb.Message.MessageID); delErr != nil {
			b.logger.Warn().Err(delErr).Msg("Failed to delete stale message")
		}
		if keyboard != nil {
			if _, err := b.tgService.SendWithInlineKeyboard(cb.Message.Chat.ID, text, *keyboard); err != nil {
				b.logger.Error().Err(err).Msg("Failed to resend message")
			}
			return
		}
		b.sendMessage(cb.Message.Chat.ID, text)
	}
}

func (b *Bot) clearUserState(ctx context.Context, userID int64) {
	if err := b.states.ClearUserState(ctx, userID); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to clear user state")
	}
}

func (b *Bot) setUserState(ctx context.Context, userID int64, step string, tempData map[string]interface{}) {
	if tempData == nil {
		tempData = make(map[string]interface{})
	}
	if err := b.states.SetUserState(ctx, userID, step, tempData); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to set user state")
	}
}

func (b *Bot) getUserState(ctx context.Context, userID int64) *models.UserState {
	state, err := b.states.GetUserState(ctx, userID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to get user state")
		return nil
	}
	return state
}
