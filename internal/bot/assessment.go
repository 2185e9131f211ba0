package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"aoqbot/internal/database"
	"aoqbot/internal/models"
	"aoqbot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	greetingText = "Здравствуйте! Этот бот собирает оценки качества работы специалистов. " +
		"Чтобы оценить работу, перейдите по персональной ссылке специалиста или отсканируйте его QR-код."
	thanksText = "Спасибо! Ваша оценка принята."
)

// handleStart обрабатывает /start; аргумент команды — ID специалиста
// из deep-link. Без аргумента показывается приветствие (и меню для
// сотрудников).
func (b *Bot) handleStart(ctx context.Context, update tgbotapi.Update) {
	user := userFrom(ctx)
	userID := update.Message.From.ID

	// Новая оценка отменяет отложенный запрос NPS
	b.npsPlanner.Cancel(userID)
	b.clearUserState(ctx, userID)

	specialistID := strings.TrimSpace(update.Message.CommandArguments())
	if specialistID == "" {
		if kb := mainMenuKeyboard(user); kb != nil {
			if _, err := b.tgService.SendWithKeyboard(update.Message.Chat.ID, "Добро пожаловать! Выберите раздел:", *kb); err != nil {
				b.logger.Error().Err(err).Msg("Failed to send main menu")
			}
			return
		}
		b.sendMessage(update.Message.Chat.ID, greetingText)
		return
	}

	specialist, err := b.repo.GetSpecialist(ctx, specialistID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			b.sendMessage(update.Message.Chat.ID, "⚠️ Ссылка недействительна: специалист не найден.")
			return
		}
		b.logger.Error().Err(err).Str("specialist_id", specialistID).Msg("Failed to load specialist")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	if err := b.assessments.CanAssess(ctx, user.ID, b.now()); err != nil {
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	tempData := map[string]interface{}{"specialist_id": specialist.ID}
	b.sendMessage(update.Message.Chat.ID,
		fmt.Sprintf("Вы оцениваете работу специалиста:\n%s\n%s, %s", specialist.Fullname, specialist.Position, specialist.Organization))

	b.advanceToCategoryStep(ctx, update.Message.Chat.ID, userID, tempData)
}

// advanceToCategoryStep показывает выбор социальной категории или, если
// справочник пуст, сразу переходит к выбору услуги.
func (b *Bot) advanceToCategoryStep(ctx context.Context, chatID, userID int64, tempData map[string]interface{}) {
	categories, err := b.repo.GetAllSocialCategories(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to load social categories")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if len(categories) == 0 {
		b.advanceToServiceStep(ctx, chatID, userID, tempData)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, cat := range categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(cat.Name, FormatCallback(Callback{Action: "cat", Entity: "pick", ID: cat.ID})),
		))
	}

	b.setUserState(ctx, userID, models.StateAwaitingSocialCategory, tempData)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, "К какой социальной категории вы относитесь?", tgbotapi.NewInlineKeyboardMarkup(rows...)); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send category keyboard")
	}
}

func (b *Bot) handleCategoryPick(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	c, err := ParseCallback(cb.Data)
	if err != nil {
		return
	}
	b.answerCallback(cb.ID, "")

	state := b.getUserState(ctx, cb.From.ID)
	if state.Step() != models.StateAwaitingSocialCategory || state.GetString("specialist_id") == "" {
		return
	}

	subs, err := b.repo.GetSubcategoriesByCategory(ctx, c.ID)
	if err != nil {
		b.logger.Error().Err(err).Str("category_id", c.ID).Msg("Failed to load subcategories")
		b.editOrResend(update, b.getErrorMessage(err), nil)
		return
	}

	if len(subs) == 0 {
		// Категория без подкатегорий: сразу к выбору услуги
		b.advanceToServiceStep(ctx, cb.Message.Chat.ID, cb.From.ID, state.TempData)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, sub := range subs {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(sub.Name, FormatCallback(Callback{Action: "sub", Entity: "pick", ID: sub.ID})),
		))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.editOrResend(update, "Уточните, пожалуйста:", &kb)
}

func (b *Bot) handleSubcategoryPick(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	c, err := ParseCallback(cb.Data)
	if err != nil {
		return
	}
	b.answerCallback(cb.ID, "")

	state := b.getUserState(ctx, cb.From.ID)
	if state.Step() != models.StateAwaitingSocialCategory || state.GetString("specialist_id") == "" {
		return
	}

	// Подкатегория запоминается на пользователе
	if err := b.users.SetSubcategory(ctx, cb.From.ID, c.ID); err != nil {
		b.logger.Error().Err(err).Int64("tg_id", cb.From.ID).Msg("Failed to set user subcategory")
	}

	b.advanceToServiceStep(ctx, cb.Message.Chat.ID, cb.From.ID, state.TempData)
}

func (b *Bot) advanceToServiceStep(ctx context.Context, chatID, userID int64, tempData map[string]interface{}) {
	services, err := b.repo.GetAllServices(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to load services")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if len(services) == 0 {
		b.advanceToScoreStep(ctx, chatID, userID, tempData)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, svc := range services {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(svc.Name, FormatCallback(Callback{Action: "svc", Entity: "pick", ID: svc.ID})),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Другое / без услуги", FormatCallback(Callback{Action: "svc", Entity: "skip", ID: "-"})),
	))

	b.setUserState(ctx, userID, models.StateAwaitingServiceSelection, tempData)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, "Какой услугой вы воспользовались?", tgbotapi.NewInlineKeyboardMarkup(rows...)); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send services keyboard")
	}
}

func (b *Bot) handleServicePick(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	c, err := ParseCallback(cb.Data)
	if err != nil {
		return
	}
	b.answerCallback(cb.ID, "")

	state := b.getUserState(ctx, cb.From.ID)
	if state.Step() != models.StateAwaitingServiceSelection || state.GetString("specialist_id") == "" {
		return
	}

	state.TempData["service_id"] = c.ID
	b.advanceToScoreStep(ctx, cb.Message.Chat.ID, cb.From.ID, state.TempData)
}

func (b *Bot) handleServiceSkip(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	b.answerCallback(cb.ID, "")

	state := b.getUserState(ctx, cb.From.ID)
	if state.Step() != models.StateAwaitingServiceSelection || state.GetString("specialist_id") == "" {
		return
	}

	delete(state.TempData, "service_id")
	b.advanceToScoreStep(ctx, cb.Message.Chat.ID, cb.From.ID, state.TempData)
}

func (b *Bot) advanceToScoreStep(ctx context.Context, chatID, userID int64, tempData map[string]interface{}) {
	b.setUserState(ctx, userID, models.StateAwaitingQualityScore, tempData)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, "Оцените качество работы специалиста от 1 до 5:", scoreKeyboard()); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send score keyboard")
	}
}

func (b *Bot) handleScorePick(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	c, err := ParseCallback(cb.Data)
	if err != nil {
		return
	}

	state := b.getUserState(ctx, cb.From.ID)
	if state.Step() != models.StateAwaitingQualityScore || state.GetString("specialist_id") == "" {
		b.answerCallback(cb.ID, "")
		return
	}

	score, err := strconv.Atoi(c.ID)
	if err != nil {
		b.answerCallback(cb.ID, "")
		return
	}

	user := userFrom(ctx)
	aoq, err := b.assessments.CreateAssessment(ctx, user.ID, state.GetString("specialist_id"), state.GetString("service_id"), score)
	if err != nil {
		b.answerCallback(cb.ID, "")
		b.editOrResend(update, b.getErrorMessage(err), nil)
		if !isUserFacing(err) {
			b.logger.Error().Err(err).Int64("tg_id", cb.From.ID).Msg("Failed to create assessment")
		}
		return
	}

	if b.metrics != nil {
		b.metrics.AssessmentsCreated.WithLabelValues(c.ID).Inc()
	}

	b.answerCallback(cb.ID, "Оценка сохранена")
	b.setUserState(ctx, cb.From.ID, models.StateAwaitingImprovementComment, map[string]interface{}{
		"aoq_id": aoq.ID,
	})
	b.npsPlanner.Schedule(cb.From.ID, aoq.ID)

	b.editOrResend(update,
		"Спасибо за оценку! Напишите, пожалуйста, что мы могли бы улучшить, или отправьте /cancel_input, чтобы пропустить.", nil)
}

// handleCommentText принимает комментарий к только что созданной оценке.
func (b *Bot) handleCommentText(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	state := b.getUserState(ctx, userID)
	aoqID := state.GetString("aoq_id")
	if aoqID == "" {
		b.clearUserState(ctx, userID)
		return
	}

	comment := strings.TrimSpace(update.Message.Text)
	if comment == "" {
		return
	}
	if len(comment) > 2000 {
		b.sendMessage(update.Message.Chat.ID, "Комментарий слишком длинный, сократите его, пожалуйста.")
		return
	}

	if err := b.assessments.AttachComment(ctx, aoqID, comment); err != nil {
		b.logger.Error().Err(err).Str("aoq_id", aoqID).Msg("Failed to attach comment")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	b.clearUserState(ctx, userID)
	b.sendMessage(update.Message.Chat.ID, thanksText)
}

// handleNPSPick обрабатывает нажатие на шкале 0–10. Payload: nps:<score>:<aoq_id>.
func (b *Bot) handleNPSPick(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	c, err := ParseCallback(cb.Data)
	if err != nil {
		return
	}

	score, err := strconv.Atoi(c.Entity)
	if err != nil {
		b.answerCallback(cb.ID, "")
		return
	}

	// Кнопка из устаревшей клавиатуры после /start или /cancel_input
	state := b.getUserState(ctx, cb.From.ID)
	if state.Step() != models.StateAwaitingSatisfactionScore || state.GetString("aoq_id") != c.ID {
		b.answerCallback(cb.ID, "")
		return
	}

	user := userFrom(ctx)
	if _, err := b.assessments.CreateNPS(ctx, user.ID, c.ID, score); err != nil {
		b.answerCallback(cb.ID, "")
		b.editOrResend(update, b.getErrorMessage(err), nil)
		if !isUserFacing(err) {
			b.logger.Error().Err(err).Int64("tg_id", cb.From.ID).Msg("Failed to create NPS")
		}
		return
	}

	if b.metrics != nil {
		b.metrics.NPSCreated.WithLabelValues(c.Entity).Inc()
	}

	b.answerCallback(cb.ID, "Спасибо!")
	b.clearUserState(ctx, cb.From.ID)
	b.editOrResend(update, "Спасибо! Ваш ответ записан.", nil)
}

func (b *Bot) handleCancelInput(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	b.npsPlanner.Cancel(userID)
	b.clearUserState(ctx, userID)
	b.sendMessage(update.Message.Chat.ID, "Ввод отменен.")
}

func (b *Bot) handleMyID(ctx context.Context, update tgbotapi.Update) {
	b.sendMessage(update.Message.Chat.ID, fmt.Sprintf("Ваш Telegram ID: %d", update.Message.From.ID))
}

// isUserFacing сообщает, является ли ошибка ожидаемым ответом
// пользователю, а не сбоем.
func isUserFacing(err error) bool {
	var cooldown *service.CooldownError
	return errors.As(err, &cooldown) ||
		errors.Is(err, database.ErrDuplicateNPS) ||
		errors.Is(err, service.ErrScoreOutOfRange) ||
		errors.Is(err, service.ErrForeignAssessment)
}

func (b *Bot) now() time.Time {
	return time.Now().In(b.config.Location())
}
