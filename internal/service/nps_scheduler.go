package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aoqbot/internal/domain"
	"aoqbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const npsPromptText = "Оцените, пожалуйста, насколько вы готовы рекомендовать наши услуги знакомым — от 0 до 10."

// NPSScheduler откладывает второй вопрос анкеты. Таймер на пользователя
// один: новая оценка до срабатывания старого таймера перезаводит его.
type NPSScheduler struct {
	states   domain.StateManager
	telegram domain.TelegramService
	delay    time.Duration
	logger   *zerolog.Logger

	mu     sync.Mutex
	timers map[int64]*time.Timer
}

func NewNPSScheduler(states domain.StateManager, telegram domain.TelegramService, delay time.Duration, logger *zerolog.Logger) *NPSScheduler {
	if delay <= 0 {
		delay = time.Duration(models.DefaultNPSDelayMinutes) * time.Minute
	}
	return &NPSScheduler{
		states:   states,
		telegram: telegram,
		delay:    delay,
		logger:   logger,
		timers:   make(map[int64]*time.Timer),
	}
}

// Schedule заводит отложенный вопрос NPS для пользователя.
func (s *NPSScheduler) Schedule(userTgID int64, aoqID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[userTgID]; ok {
		timer.Stop()
	}

	s.timers[userTgID] = time.AfterFunc(s.delay, func() {
		s.fire(userTgID, aoqID)
	})

	s.logger.Debug().Int64("tg_id", userTgID).Str("aoq_id", aoqID).Dur("delay", s.delay).Msg("NPS запланирован")
}

// Cancel снимает отложенный вопрос, например при блокировке пользователя.
func (s *NPSScheduler) Cancel(userTgID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[userTgID]; ok {
		timer.Stop()
		delete(s.timers, userTgID)
	}
}

// Stop останавливает все таймеры; запланированные вопросы теряются.
func (s *NPSScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

func (s *NPSScheduler) fire(userTgID int64, aoqID string) {
	s.mu.Lock()
	delete(s.timers, userTgID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Переход разрешен только из ожидания комментария или пустого
	// состояния: если пользователь уже в другом диалоге, вопрос не задаем,
	// чтобы не разорвать его.
	applied, err := s.states.SetUserStateIf(ctx, userTgID,
		[]string{models.StateAwaitingImprovementComment, ""},
		models.StateAwaitingSatisfactionScore,
		map[string]interface{}{"aoq_id": aoqID},
	)
	if err != nil {
		s.logger.Error().Err(err).Int64("tg_id", userTgID).Msg("failed to switch user to nps step")
		return
	}
	if !applied {
		s.logger.Info().Int64("tg_id", userTgID).Str("aoq_id", aoqID).Msg("NPS пропущен: пользователь занят другим диалогом")
		return
	}

	if _, err := s.telegram.SendWithInlineKeyboard(userTgID, npsPromptText, NPSKeyboard(aoqID)); err != nil {
		s.logger.Error().Err(err).Int64("tg_id", userTgID).Msg("failed to send nps prompt")
	}
}

// NPSKeyboard строит шкалу 0–10 в два ряда.
func NPSKeyboard(aoqID string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for score := models.NPSScoreMin; score <= models.NPSScoreMax; score++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d", score),
			fmt.Sprintf("nps:%d:%s", score, aoqID),
		))
		if len(row) == 6 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
