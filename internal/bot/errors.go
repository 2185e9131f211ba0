package bot

import (
	"errors"
	"fmt"

	"aoqbot/internal/database"
	"aoqbot/internal/service"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var cooldown *service.CooldownError
	if errors.As(err, &cooldown) {
		return fmt.Sprintf("Вы уже оценивали работу специалиста недавно. Следующая оценка будет доступна %s.",
			cooldown.Until.Format("02.01.2006 15:04"))
	}

	if errors.Is(err, database.ErrDuplicateNPS) {
		return "Вы уже поставили эту оценку. Спасибо!"
	}

	if errors.Is(err, database.ErrNotFound) {
		return "⚠️ Запись не найдена. Возможно, она была удалена."
	}

	if errors.Is(err, database.ErrDuplicate) {
		return "⚠️ Такая запись уже существует."
	}

	if errors.Is(err, service.ErrScoreOutOfRange) {
		return "⚠️ Оценка вне допустимой шкалы."
	}

	// Default error message
	return "❌ Произошла ошибка при обработке вашего запроса. Пожалуйста, попробуйте позже."
}
