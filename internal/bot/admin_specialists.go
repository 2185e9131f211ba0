package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"aoqbot/internal/database"
	"aoqbot/internal/events"
	"aoqbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleSpecialistsMenu(ctx context.Context, update tgbotapi.Update) {
	orgs, err := b.repo.GetOrganizations(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to load organizations")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for i, org := range orgs {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏢 "+org, FormatCallback(Callback{Action: "org", Entity: "pick", ID: strconv.Itoa(i)})),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Добавить", FormatCallback(Callback{Action: "spec", Entity: "add", ID: "-"})),
			tgbotapi.NewInlineKeyboardButtonData("🔍 Поиск", FormatCallback(Callback{Action: "spec", Entity: "find", ID: "-"})),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📥 Импорт из Excel", FormatCallback(Callback{Action: "spec", Entity: "import", ID: "-"})),
			tgbotapi.NewInlineKeyboardButtonData("📄 Выгрузка Word", FormatCallback(Callback{Action: "exp", Entity: "word", ID: "all"})),
		),
	)

	if _, err := b.tgService.SendWithInlineKeyboard(update.Message.Chat.ID,
		"👥 Специалисты\n\nВыберите организацию или действие:",
		tgbotapi.NewInlineKeyboardMarkup(rows...)); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send specialists menu")
	}
}

// organizationByIndex переводит индекс из callback обратно в название.
// Список организаций детерминированно отсортирован на уровне запроса.
func (b *Bot) organizationByIndex(ctx context.Context, idx int) (string, error) {
	orgs, err := b.repo.GetOrganizations(ctx)
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(orgs) {
		return "", database.ErrNotFound
	}
	return orgs[idx], nil
}

func (b *Bot) handleOrganizationPick(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	c, err := ParseCallback(cb.Data)
	if err != nil {
		return
	}
	b.answerCallback(cb.ID, "")

	idx, err := strconv.Atoi(c.ID)
	if err != nil {
		return
	}
	b.renderSpecialistsPage(ctx, cb.Message.Chat.ID, cb.Message.MessageID, idx, 0)
}

// handleSpecialistsPage обрабатывает переключение страниц:
// spec:page:<orgIdx>@<page>.
func (b *Bot) handleSpecialistsPage(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	c, err := ParseCallback(cb.Data)
	if err != nil {
		return
	}
	b.answerCallback(cb.ID, "")

	idx, err := strconv.Atoi(c.ID)
	if err != nil {
		return
	}
	b.renderSpecialistsPage(ctx, cb.Message.Chat.ID, cb.Message.MessageID, idx, c.Page)
}

func (b *Bot) renderSpecialistsPage(ctx context.Context, chatID int64, messageID, orgIdx, page int) {
	org, err := b.organizationByIndex(ctx, orgIdx)
	if err != nil {
		b.logger.Error().Err(err).Int("org_idx", orgIdx).Msg("Failed to resolve organization")
		return
	}

	specialists, err := b.repo.GetSpecialistsByOrganization(ctx, org)
	if err != nil {
		b.logger.Error().Err(err).Str("organization", org).Msg("Failed to load specialists")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	params := PaginationParams{
		ChatID:     chatID,
		MessageID:  messageID,
		Page:       page,
		Title:      "🏢 " + org,
		PagePrefix: FormatCallback(Callback{Action: "spec", Entity: "page", ID: strconv.Itoa(orgIdx)}),
	}

	b.renderPaginatedList(params, len(specialists), func(startIdx, endIdx int) (string, [][]tgbotapi.InlineKeyboardButton) {
		var content strings.Builder
		var keyboard [][]tgbotapi.InlineKeyboardButton

		for i, sp := range specialists[startIdx:endIdx] {
			content.WriteString(fmt.Sprintf("%d. %s — %s\n", startIdx+i+1, sp.Fullname, sp.Position))
			keyboard = append(keyboard, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("%d. %s", startIdx+i+1, sp.Fullname),
					FormatCallback(Callback{Action: "spec", Entity: "open", ID: sp.ID}),
				),
			))
		}

		keyboard = append(keyboard, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 Word по организации",
				FormatCallback(Callback{Action: "exp", Entity: "word", ID: strconv.Itoa(orgIdx)})),
		))

		return content.String(), keyboard
	})
}

func (b *Bot) handleSpecialistOpen(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	c, err := ParseCallback(cb.Data)
	if err != nil {
		return
	}
	b.answerCallback(cb.ID, "")

	sp, err := b.repo.GetSpecialist(ctx, c.ID)
	if err != nil {
		b.editOrResend(update, b.getErrorMessage(err), nil)
		return
	}

	var detail strings.Builder
	detail.WriteString(fmt.Sprintf("👤 %s\n", sp.Fullname))
	detail.WriteString(fmt.Sprintf("🏢 %s\n", sp.Organization))
	if sp.Department != "" {
		detail.WriteString(fmt.Sprintf("📁 %s\n", sp.Department))
	}
	detail.WriteString(fmt.Sprintf("💼 %s\n", sp.Position))
	if sp.Link != "" {
		detail.WriteString(fmt.Sprintf("🔗 %s\n", sp.Link))
	}
	if sp.QR != "" {
		detail.WriteString("✅ QR-код сгенерирован\n")
	} else {
		detail.WriteString("⏳ QR-код еще не сгенерирован\n")
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🖼 Сгенерировать QR", FormatCallback(Callback{Action: "spec", Entity: "qr", ID: sp.ID})),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", FormatCallback(Callback{Action: "spec", Entity: "del", ID: sp.ID})),
		),
	)
	b.editOrResend(update, detail.String(), &kb)
}

func (b *Bot) handleSpecialistDelete(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	c, err := ParseCallback(cb.Data)
	if err != nil {
		return
	}

	if err := b.repo.DeleteSpecialist(ctx, c.ID); err != nil {
		b.answerCallback(cb.ID, "")
		b.editOrResend(update, b.getErrorMessage(err), nil)
		return
	}

	b.answerCallback(cb.ID, "Удалено")
	b.editOrResend(update, "Специалист и все его оценки удалены.", nil)
}

func (b *Bot) handleSpecialistQR(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	c, err := ParseCallback(cb.Data)
	if err != nil {
		return
	}

	if err := b.qrWorker.Enqueue(ctx, []string{c.ID}, cb.Message.Chat.ID); err != nil {
		b.answerCallback(cb.ID, "")
		b.editOrResend(update, b.getErrorMessage(err), nil)
		return
	}
	b.answerCallback(cb.ID, "Задача поставлена в очередь")
}

// Пошаговое добавление специалиста: ФИО -> организация -> отдел -> должность.

func (b *Bot) handleSpecialistAddStart(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	b.answerCallback(cb.ID, "")
	b.setUserState(ctx, cb.From.ID, models.StateAwaitingSpecialistName, nil)
	b.editOrResend(update, "Введите ФИО специалиста:", nil)
}

func (b *Bot) handleSpecialistNameInput(ctx context.Context, update tgbotapi.Update) {
	text := strings.TrimSpace(update.Message.Text)
	if len(text) < 2 {
		b.sendMessage(update.Message.Chat.ID, "ФИО слишком короткое, попробуйте еще раз.")
		return
	}
	b.setUserState(ctx, update.Message.From.ID, models.StateAwaitingSpecialistOrg, map[string]interface{}{
		"fullname": text,
	})
	b.sendMessage(update.Message.Chat.ID, "Введите название организации:")
}

func (b *Bot) handleSpecialistOrgInput(ctx context.Context, update tgbotapi.Update) {
	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		b.sendMessage(update.Message.Chat.ID, "Название организации не может быть пустым.")
		return
	}
	state := b.getUserState(ctx, update.Message.From.ID)
	state.TempData["organization"] = text
	b.setUserState(ctx, update.Message.From.ID, models.StateAwaitingSpecialistDept, state.TempData)
	b.sendMessage(update.Message.Chat.ID, "Введите отдел (или «-», если отдела нет):")
}

func (b *Bot) handleSpecialistDeptInput(ctx context.Context, update tgbotapi.Update) {
	text := strings.TrimSpace(update.Message.Text)
	if text == "-" {
		text = ""
	}
	state := b.getUserState(ctx, update.Message.From.ID)
	state.TempData["department"] = text
	b.setUserState(ctx, update.Message.From.ID, models.StateAwaitingSpecialistPos, state.TempData)
	b.sendMessage(update.Message.Chat.ID, "Введите должность:")
}

func (b *Bot) handleSpecialistPosInput(ctx context.Context, update tgbotapi.Update) {
	position := strings.TrimSpace(update.Message.Text)
	if position == "" {
		b.sendMessage(update.Message.Chat.ID, "Должность не может быть пустой.")
		return
	}

	userID := update.Message.From.ID
	state := b.getUserState(ctx, userID)

	sp := &models.Specialist{
		Fullname:     state.GetString("fullname"),
		Organization: state.GetString("organization"),
		Department:   state.GetString("department"),
		Position:     position,
	}
	if sp.Fullname == "" || sp.Organization == "" {
		b.clearUserState(ctx, userID)
		b.sendMessage(update.Message.Chat.ID, "Данные формы потеряны, начните добавление заново.")
		return
	}

	if err := b.repo.CreateSpecialist(ctx, sp); err != nil {
		b.logger.Error().Err(err).Msg("Failed to create specialist")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	link := fmt.Sprintf("https://t.me/%s?start=%s", b.tgService.GetSelf().UserName, sp.ID)
	if err := b.repo.UpdateSpecialistLink(ctx, sp.ID, link); err != nil {
		b.logger.Error().Err(err).Str("specialist_id", sp.ID).Msg("Failed to set specialist link")
	}

	if err := b.qrWorker.Enqueue(ctx, []string{sp.ID}, update.Message.Chat.ID); err != nil {
		b.logger.Error().Err(err).Msg("Failed to enqueue QR task")
	}

	b.clearUserState(ctx, userID)
	b.sendMessage(update.Message.Chat.ID,
		fmt.Sprintf("Специалист добавлен.\n\n%s\n%s\n\nСсылка для оценки:\n%s", sp.Fullname, sp.Position, link))
}

// Поиск

func (b *Bot) handleSpecialistSearchStart(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	b.answerCallback(cb.ID, "")
	b.setUserState(ctx, cb.From.ID, models.StateAwaitingSearchQuery, nil)
	b.editOrResend(update, "Введите ФИО, организацию или должность для поиска:", nil)
}

func (b *Bot) handleSearchQueryInput(ctx context.Context, update tgbotapi.Update) {
	query := strings.TrimSpace(update.Message.Text)
	if query == "" {
		return
	}

	b.clearUserState(ctx, update.Message.From.ID)

	found, err := b.repo.SearchSpecialists(ctx, query)
	if err != nil {
		b.logger.Error().Err(err).Str("query", query).Msg("Specialist search failed")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	if len(found) == 0 {
		b.sendMessage(update.Message.Chat.ID, "Ничего не найдено.")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, sp := range found {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s — %s", sp.Fullname, sp.Organization),
				FormatCallback(Callback{Action: "spec", Entity: "open", ID: sp.ID}),
			),
		))
	}

	if _, err := b.tgService.SendWithInlineKeyboard(update.Message.Chat.ID,
		fmt.Sprintf("Найдено: %d", len(found)),
		tgbotapi.NewInlineKeyboardMarkup(rows...)); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send search results")
	}
}

// Импорт ростера из Excel

func (b *Bot) handleRosterImportStart(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	b.answerCallback(cb.ID, "")
	b.setUserState(ctx, cb.From.ID, models.StateAwaitingRosterImport, nil)
	b.editOrResend(update,
		"Отправьте файл .xlsx с листом «Специалисты» и колонками: Организация, Должность, ФИО, Отдел.", nil)
}

func (b *Bot) handleRosterDocument(ctx context.Context, update tgbotapi.Update) {
	doc := update.Message.Document
	if doc == nil {
		b.sendMessage(update.Message.Chat.ID, "Ожидается файл .xlsx. Отправьте документ или /cancel_input.")
		return
	}

	body, err := b.downloadDocument(ctx, doc.FileID)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to download roster file")
		b.sendMessage(update.Message.Chat.ID, "Не удалось скачать файл, попробуйте еще раз.")
		return
	}
	defer body.Close()

	result, err := b.roster.Import(ctx, body)
	if err != nil {
		b.logger.Error().Err(err).Msg("Roster import failed")
		b.sendMessage(update.Message.Chat.ID, "Импорт не выполнен: "+importErrorText(err))
		return
	}

	b.clearUserState(ctx, update.Message.From.ID)
	b.sendMessage(update.Message.Chat.ID, fmt.Sprintf(
		"Импорт завершен.\nВсего строк: %d\nСоздано: %d\nПропущено (уже есть): %d",
		result.Total, len(result.CreatedIDs), result.Skipped))

	// Генерацию QR-кодов подхватывает подписчик события
	if len(result.CreatedIDs) > 0 {
		if err := b.eventBus.PublishJSON(events.EventSpecialistsImported, events.ImportEventPayload{
			CreatedIDs: result.CreatedIDs,
			AdminTgID:  update.Message.From.ID,
			Total:      result.Total,
		}); err != nil {
			b.logger.Error().Err(err).Msg("Failed to publish import event")
		}
	}
}

// Выгрузка Word

func (b *Bot) handleWordExport(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	c, err := ParseCallback(cb.Data)
	if err != nil {
		return
	}
	b.answerCallback(cb.ID, "Готовлю документ...")

	organization := ""
	if c.ID != "all" {
		idx, convErr := strconv.Atoi(c.ID)
		if convErr != nil {
			return
		}
		organization, err = b.organizationByIndex(ctx, idx)
		if err != nil {
			b.editOrResend(update, b.getErrorMessage(err), nil)
			return
		}
	}

	path, err := b.word.Export(ctx, organization)
	if err != nil {
		b.logger.Error().Err(err).Msg("Word export failed")
		b.editOrResend(update, b.getErrorMessage(err), nil)
		return
	}

	caption := "Реестр специалистов с QR-кодами"
	if organization != "" {
		caption += ": " + organization
	}
	if err := b.tgService.SendDocument(cb.Message.Chat.ID, path, caption); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send word document")
	}
}

func importErrorText(err error) string {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return "данные не найдены"
	default:
		return err.Error()
	}
}
