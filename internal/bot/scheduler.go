package bot

import (
	"context"
	"time"
)

// StartWeeklyStats по понедельникам в настроенный час отправляет всем
// администраторам сводку за неделю и Excel-выгрузку.
func (b *Bot) StartWeeklyStats(ctx context.Context) {
	b.logger.Info().Int("hour", b.config.Bot.StatsHour).Msg("Weekly stats scheduler started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(b.untilNextMonday()):
			b.sendWeeklyStats(ctx)
		}
	}
}

func (b *Bot) untilNextMonday() time.Duration {
	now := b.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), b.config.Bot.StatsHour, 0, 0, 0, now.Location())
	for next.Weekday() != time.Monday || !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

func (b *Bot) sendWeeklyStats(ctx context.Context) {
	admins, err := b.users.GetAdmins(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Weekly stats: failed to load admins")
		return
	}

	text, err := b.buildStatsText(ctx, "за неделю", 7*24*time.Hour)
	if err != nil {
		b.logger.Error().Err(err).Msg("Weekly stats: failed to build report")
		return
	}

	excelPath, err := b.excel.Export(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Weekly stats: excel export failed")
	}

	for _, admin := range admins {
		b.sendMessage(admin.TgID, text)
		if excelPath != "" {
			if err := b.tgService.SendDocument(admin.TgID, excelPath, "Еженедельная выгрузка"); err != nil {
				b.logger.Error().Err(err).Int64("tg_id", admin.TgID).Msg("Weekly stats: failed to send excel")
			}
		}
	}
}
