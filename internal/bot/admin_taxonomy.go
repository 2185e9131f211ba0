package bot

import (
	"context"
	"fmt"
	"strings"

	"aoqbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Категории

func (b *Bot) handleCategoriesMenu(ctx context.Context, update tgbotapi.Update) {
	categories, err := b.repo.GetAllSocialCategories(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to load categories")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, cat := range categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(cat.Name, FormatCallback(Callback{Action: "cat", Entity: "open", ID: cat.ID})),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Добавить", FormatCallback(Callback{Action: "cat", Entity: "add", ID: "-"})),
		tgbotapi.NewInlineKeyboardButtonData("📥 Импорт JSON", FormatCallback(Callback{Action: "cat", Entity: "import", ID: "-"})),
	))

	if _, err := b.tgService.SendWithInlineKeyboard(update.Message.Chat.ID,
		"🗂 Социальные категории:", tgbotapi.NewInlineKeyboardMarkup(rows...)); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send categories menu")
	}
}

func (b *Bot) handleCategoryOpen(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	c, err := ParseCallback(cb.Data)
	if err != nil {
		return
	}
	b.answerCallback(cb.ID, "")

	cat, err := b.repo.GetSocialCategory(ctx, c.ID)
	if err != nil {
		b.editOrResend(update, b.getErrorMessage(err), nil)
		return
	}

	subs, err := b.repo.GetSubcategoriesByCategory(ctx, c.ID)
	if err != nil {
		b.editOrResend(update, b.getErrorMessage(err), nil)
		return
	}

	var body strings.Builder
	body.WriteString(fmt.Sprintf("🗂 %s\n\nПодкатегории:\n", cat.Name))
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, sub := range subs {
		body.WriteString("• " + sub.Name + "\n")
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 "+sub.Name, FormatCallback(Callback{Action: "sub", Entity: "del", ID: sub.ID})),
		))
	}
	if len(subs) == 0 {
		body.WriteString("— пока нет\n")
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Подкатегория", FormatCallback(Callback{Action: "sub", Entity: "add", ID: cat.ID})),
		tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить категорию", FormatCallback(Callback{Action: "cat", Entity: "del", ID: cat.ID})),
	))

	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.editOrResend(update, body.String(), &kb)
}

func (b *Bot) handleCategoryAddStart(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	b.answerCallback(cb.ID, "")
	b.setUserState(ctx, cb.From.ID, models.StateAwaitingCategoryName, nil)
	b.editOrResend(update, "Введите название категории:", nil)
}

func (b *Bot) handleCategoryNameInput(ctx context.Context, update tgbotapi.Update) {
	name := strings.TrimSpace(update.Message.Text)
	if name == "" {
		b.sendMessage(update.Message.Chat.ID, "Название не может быть пустым.")
		return
	}

	if err := b.repo.CreateSocialCategory(ctx, &models.SocialCategory{Name: name}); err != nil {
		b.logger.Error().Err(err).Msg("Failed to create category")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	b.clearUserState(ctx, update.Message.From.ID)
	b.sendMessage(update.Message.Chat.ID, "Категория «"+name+"» добавлена.")
}

func (b *Bot) handleCategoryDelete(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	c, err := ParseCallback(cb.Data)
	if err != nil {
		return
	}

	if err := b.repo.DeleteSocialCategory(ctx, c.ID); err != nil {
		b.answerCallback(cb.ID, "")
		b.editOrResend(update, b.getErrorMessage(err), nil)
		return
	}

	b.answerCallback(cb.ID, "Удалено")
	b.editOrResend(update, "Категория удалена вместе с подкатегориями.", nil)
}

func (b *Bot) handleSubcategoryAddStart(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	c, err := ParseCallback(cb.Data)
	if err != nil {
		return
	}
	b.answerCallback(cb.ID, "")

	b.setUserState(ctx, cb.From.ID, models.StateAwaitingSubcategoryName, map[string]interface{}{
		"category_id": c.ID,
	})
	b.editOrResend(update, "Введите название подкатегории:", nil)
}

func (b *Bot) handleSubcategoryNameInput(ctx context.Context, update tgbotapi.Update) {
	name := strings.TrimSpace(update.Message.Text)
	if name == "" {
		b.sendMessage(update.Message.Chat.ID, "Название не может быть пустым.")
		return
	}

	state := b.getUserState(ctx, update.Message.From.ID)
	categoryID := state.GetString("category_id")
	if categoryID == "" {
		b.clearUserState(ctx, update.Message.From.ID)
		b.sendMessage(update.Message.Chat.ID, "Категория не выбрана, начните заново.")
		return
	}

	if err := b.repo.CreateSocialSubcategory(ctx, &models.SocialSubcategory{Name: name, CategoryID: categoryID}); err != nil {
		b.logger.Error().Err(err).Msg("Failed to create subcategory")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	b.clearUserState(ctx, update.Message.From.ID)
	b.sendMessage(update.Message.Chat.ID, "Подкатегория «"+name+"» добавлена.")
}

func (b *Bot) handleSubcategoryDelete(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	c, err := ParseCallback(cb.Data)
	if err != nil {
		return
	}

	if err := b.repo.DeleteSocialSubcategory(ctx, c.ID); err != nil {
		b.answerCallback(cb.ID, "")
		b.editOrResend(update, b.getErrorMessage(err), nil)
		return
	}

	b.answerCallback(cb.ID, "Удалено")
	b.editOrResend(update, "Подкатегория удалена.", nil)
}

func (b *Bot) handleTaxonomyImportStart(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	b.answerCallback(cb.ID, "")
	b.setUserState(ctx, cb.From.ID, models.StateAwaitingTaxonomyImport, nil)
	b.editOrResend(update,
		"Отправьте JSON-файл вида [{\"name\": \"...\", \"subcategories\": [{\"name\": \"...\"}]}].\n"+
			"Текущий справочник будет полностью заменен.", nil)
}

func (b *Bot) handleTaxonomyDocument(ctx context.Context, update tgbotapi.Update) {
	doc := update.Message.Document
	if doc == nil {
		b.sendMessage(update.Message.Chat.ID, "Ожидается JSON-файл. Отправьте документ или /cancel_input.")
		return
	}

	body, err := b.downloadDocument(ctx, doc.FileID)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to download taxonomy file")
		b.sendMessage(update.Message.Chat.ID, "Не удалось скачать файл, попробуйте еще раз.")
		return
	}
	defer body.Close()

	cats, subs, err := b.taxonomy.ImportCategories(ctx, body)
	if err != nil {
		b.logger.Error().Err(err).Msg("Taxonomy import failed")
		b.sendMessage(update.Message.Chat.ID, "Импорт не выполнен, справочник не изменен: "+err.Error())
		return
	}

	b.clearUserState(ctx, update.Message.From.ID)
	b.sendMessage(update.Message.Chat.ID,
		fmt.Sprintf("Справочник заменен.\nКатегорий: %d\nПодкатегорий: %d", cats, subs))
}

// Услуги

func (b *Bot) handleServicesMenu(ctx context.Context, update tgbotapi.Update) {
	services, err := b.repo.GetAllServices(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to load services")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, svc := range services {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 "+svc.Name, FormatCallback(Callback{Action: "svc", Entity: "del", ID: svc.ID})),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Добавить", FormatCallback(Callback{Action: "svc", Entity: "add", ID: "-"})),
		tgbotapi.NewInlineKeyboardButtonData("📥 Импорт JSON", FormatCallback(Callback{Action: "svc", Entity: "import", ID: "-"})),
	))

	if _, err := b.tgService.SendWithInlineKeyboard(update.Message.Chat.ID,
		"🧾 Услуги:", tgbotapi.NewInlineKeyboardMarkup(rows...)); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send services menu")
	}
}

func (b *Bot) handleServiceAddStart(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	b.answerCallback(cb.ID, "")
	b.setUserState(ctx, cb.From.ID, models.StateAwaitingServiceName, nil)
	b.editOrResend(update, "Введите название услуги:", nil)
}

func (b *Bot) handleServiceNameInput(ctx context.Context, update tgbotapi.Update) {
	name := strings.TrimSpace(update.Message.Text)
	if name == "" {
		b.sendMessage(update.Message.Chat.ID, "Название не может быть пустым.")
		return
	}

	if err := b.repo.CreateService(ctx, &models.Service{Name: name}); err != nil {
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	b.clearUserState(ctx, update.Message.From.ID)
	b.sendMessage(update.Message.Chat.ID, "Услуга «"+name+"» добавлена.")
}

func (b *Bot) handleServiceDelete(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	c, err := ParseCallback(cb.Data)
	if err != nil {
		return
	}

	if err := b.repo.DeleteService(ctx, c.ID); err != nil {
		b.answerCallback(cb.ID, "")
		b.editOrResend(update, b.getErrorMessage(err), nil)
		return
	}

	b.answerCallback(cb.ID, "Удалено")
	b.editOrResend(update, "Услуга удалена. Существующие оценки сохранены.", nil)
}

func (b *Bot) handleServicesImportStart(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	b.answerCallback(cb.ID, "")
	b.setUserState(ctx, cb.From.ID, models.StateAwaitingServiceImport, nil)
	b.editOrResend(update,
		"Отправьте JSON-файл вида [{\"name\": \"...\"}]. Текущий список услуг будет полностью заменен.", nil)
}

func (b *Bot) handleServicesDocument(ctx context.Context, update tgbotapi.Update) {
	doc := update.Message.Document
	if doc == nil {
		b.sendMessage(update.Message.Chat.ID, "Ожидается JSON-файл. Отправьте документ или /cancel_input.")
		return
	}

	body, err := b.downloadDocument(ctx, doc.FileID)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to download services file")
		b.sendMessage(update.Message.Chat.ID, "Не удалось скачать файл, попробуйте еще раз.")
		return
	}
	defer body.Close()

	count, err := b.taxonomy.ImportServices(ctx, body)
	if err != nil {
		b.logger.Error().Err(err).Msg("Services import failed")
		b.sendMessage(update.Message.Chat.ID, "Импорт не выполнен, список услуг не изменен: "+err.Error())
		return
	}

	b.clearUserState(ctx, update.Message.From.ID)
	b.sendMessage(update.Message.Chat.ID, fmt.Sprintf("Список услуг заменен. Услуг: %d", count))
}
