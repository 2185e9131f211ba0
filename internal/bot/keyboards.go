package bot

import (
	"fmt"

	"aoqbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Текст reply-кнопок административного меню.
const (
	btnSpecialists = "👥 Специалисты"
	btnStats       = "📊 Статистика"
	btnExportData  = "💾 Выгрузить данные"
	btnBroadcast   = "📣 Рассылка"
	btnCategories  = "🗂 Категории"
	btnServices    = "🧾 Услуги"
	btnAccesses    = "🔑 Доступы"
)

func mainMenuKeyboard(user *models.User) *tgbotapi.ReplyKeyboardMarkup {
	if user == nil || !user.IsStaff() {
		return nil
	}

	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSpecialists),
			tgbotapi.NewKeyboardButton(btnStats),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBroadcast),
			tgbotapi.NewKeyboardButton(btnExportData),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCategories),
			tgbotapi.NewKeyboardButton(btnServices),
		),
	}

	// Управление доступами — только администраторам
	if user.Role == models.RoleAdmin {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAccesses),
		))
	}

	kb := tgbotapi.NewReplyKeyboard(rows...)
	return &kb
}

// scoreKeyboard — шкала оценки качества 1–5 одним рядом.
func scoreKeyboard() tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, models.QualityScoreMax)
	for score := models.QualityScoreMin; score <= models.QualityScoreMax; score++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d", score),
			FormatCallback(Callback{Action: "score", Entity: "pick", ID: fmt.Sprintf("%d", score)}),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func confirmBroadcastKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Отправить", FormatCallback(Callback{Action: "bc", Entity: "confirm", ID: "-"})),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", FormatCallback(Callback{Action: "bc", Entity: "cancel", ID: "-"})),
		),
	)
}
