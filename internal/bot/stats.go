package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleStatsMenu(ctx context.Context, update tgbotapi.Update) {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 За месяц", FormatCallback(Callback{Action: "stats", Entity: "month", ID: "-"})),
			tgbotapi.NewInlineKeyboardButtonData("📆 За неделю", FormatCallback(Callback{Action: "stats", Entity: "week", ID: "-"})),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Выгрузка в Excel", FormatCallback(Callback{Action: "stats", Entity: "excel", ID: "-"})),
		),
	)
	if _, err := b.tgService.SendWithInlineKeyboard(update.Message.Chat.ID, "📊 Статистика", kb); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send stats menu")
	}
}

func (b *Bot) handleStatsMonth(ctx context.Context, update tgbotapi.Update) {
	b.answerCallback(update.CallbackQuery.ID, "")
	b.sendStats(ctx, update.CallbackQuery.Message.Chat.ID, "за месяц", 30*24*time.Hour)
}

func (b *Bot) handleStatsWeek(ctx context.Context, update tgbotapi.Update) {
	b.answerCallback(update.CallbackQuery.ID, "")
	b.sendStats(ctx, update.CallbackQuery.Message.Chat.ID, "за неделю", 7*24*time.Hour)
}

func (b *Bot) sendStats(ctx context.Context, chatID int64, periodName string, period time.Duration) {
	text, err := b.buildStatsText(ctx, periodName, period)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to build statistics")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendMessage(chatID, text)
}

// buildStatsText собирает сводку: количество оценок, топ-5 специалистов
// по среднему баллу, средние по услугам и средний NPS.
func (b *Bot) buildStatsText(ctx context.Context, periodName string, period time.Duration) (string, error) {
	since := b.now().Add(-period)

	aoqs, err := b.repo.GetAOQsSince(ctx, since)
	if err != nil {
		return "", err
	}
	npss, err := b.repo.GetNPSsSince(ctx, since)
	if err != nil {
		return "", err
	}

	var report strings.Builder
	report.WriteString(fmt.Sprintf("📊 Статистика %s\n\n", periodName))
	report.WriteString(fmt.Sprintf("Оценок качества: %d\n", len(aoqs)))
	report.WriteString(fmt.Sprintf("Ответов NPS: %d\n", len(npss)))

	if len(aoqs) == 0 {
		report.WriteString("\nЗа период оценок не было.")
		return report.String(), nil
	}

	var totalScore int
	perSpecialist := make(map[string][]int)
	perService := make(map[string][]int)
	for _, aoq := range aoqs {
		totalScore += aoq.Score
		perSpecialist[aoq.SpecialistID] = append(perSpecialist[aoq.SpecialistID], aoq.Score)
		if aoq.ServiceID.Valid {
			perService[aoq.ServiceID.String] = append(perService[aoq.ServiceID.String], aoq.Score)
		}
	}
	report.WriteString(fmt.Sprintf("Средний балл: %.2f\n", float64(totalScore)/float64(len(aoqs))))

	if len(npss) > 0 {
		var npsTotal int
		for _, nps := range npss {
			npsTotal += nps.Score
		}
		report.WriteString(fmt.Sprintf("Средний NPS: %.2f\n", float64(npsTotal)/float64(len(npss))))
	}

	report.WriteString("\n🏆 Топ специалистов:\n")
	report.WriteString(b.topSpecialists(ctx, perSpecialist, 5))

	if len(perService) > 0 {
		report.WriteString("\n🧾 Средние баллы по услугам:\n")
		report.WriteString(b.serviceAverages(ctx, perService))
	}

	return report.String(), nil
}

type ranked struct {
	name  string
	avg   float64
	count int
}

func (b *Bot) topSpecialists(ctx context.Context, perSpecialist map[string][]int, limit int) string {
	specialists, err := b.repo.GetAllSpecialists(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to load specialists for stats")
		return "— недоступно\n"
	}
	names := make(map[string]string, len(specialists))
	for _, sp := range specialists {
		names[sp.ID] = sp.Fullname
	}

	rankings := make([]ranked, 0, len(perSpecialist))
	for id, scores := range perSpecialist {
		name := names[id]
		if name == "" {
			continue // специалист удален после оценок
		}
		var sum int
		for _, s := range scores {
			sum += s
		}
		rankings = append(rankings, ranked{
			name:  name,
			avg:   float64(sum) / float64(len(scores)),
			count: len(scores),
		})
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].avg != rankings[j].avg {
			return rankings[i].avg > rankings[j].avg
		}
		return rankings[i].count > rankings[j].count
	})

	if len(rankings) > limit {
		rankings = rankings[:limit]
	}

	var out strings.Builder
	for i, r := range rankings {
		out.WriteString(fmt.Sprintf("%d. %s — %.2f (%d оценок)\n", i+1, r.name, r.avg, r.count))
	}
	if out.Len() == 0 {
		out.WriteString("— нет данных\n")
	}
	return out.String()
}

func (b *Bot) serviceAverages(ctx context.Context, perService map[string][]int) string {
	services, err := b.repo.GetAllServices(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to load services for stats")
		return "— недоступно\n"
	}
	names := make(map[string]string, len(services))
	for _, svc := range services {
		names[svc.ID] = svc.Name
	}

	rankings := make([]ranked, 0, len(perService))
	for id, scores := range perService {
		name := names[id]
		if name == "" {
			continue
		}
		var sum int
		for _, s := range scores {
			sum += s
		}
		rankings = append(rankings, ranked{name: name, avg: float64(sum) / float64(len(scores)), count: len(scores)})
	}
	sort.Slice(rankings, func(i, j int) bool { return rankings[i].avg > rankings[j].avg })

	var out strings.Builder
	for _, r := range rankings {
		out.WriteString(fmt.Sprintf("• %s — %.2f (%d)\n", r.name, r.avg, r.count))
	}
	if out.Len() == 0 {
		out.WriteString("— нет данных\n")
	}
	return out.String()
}

// handleStatsExcel выгружает полную статистику в двухлистовую книгу.
func (b *Bot) handleStatsExcel(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	b.answerCallback(cb.ID, "Готовлю файл...")

	path, err := b.excel.Export(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Excel export failed")
		b.editOrResend(update, b.getErrorMessage(err), nil)
		return
	}

	if err := b.tgService.SendDocument(cb.Message.Chat.ID, path, "Выгрузка оценок качества и NPS"); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send excel document")
	}
}

// handleDataDump делает снимок базы и отправляет его админу.
func (b *Bot) handleDataDump(ctx context.Context, update tgbotapi.Update) {
	b.sendMessage(update.Message.Chat.ID, "Готовлю резервную копию...")

	path, err := b.backups.PerformBackup()
	if err != nil {
		b.logger.Error().Err(err).Msg("On-demand backup failed")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	if err := b.tgService.SendDocument(update.Message.Chat.ID, path, "Резервная копия базы данных"); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send backup file")
	}
}
