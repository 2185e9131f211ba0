package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"aoqbot/internal/database"
	"aoqbot/internal/domain"
	"aoqbot/internal/events"
	"aoqbot/internal/models"

	"github.com/rs/zerolog"
)

var (
	// ErrScoreOutOfRange — балл вне допустимой шкалы.
	ErrScoreOutOfRange = errors.New("score out of range")

	// ErrForeignAssessment — попытка привязать NPS к чужой оценке.
	ErrForeignAssessment = errors.New("assessment belongs to another user")
)

// CooldownError сообщает, когда пользователь сможет оценить снова.
type CooldownError struct {
	Until time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("assessment cooldown active until %s", e.Until.Format(time.RFC3339))
}

type AssessmentService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	cooldown time.Duration
	loc      *time.Location
	logger   *zerolog.Logger
}

func NewAssessmentService(repo domain.Repository, eventBus domain.EventPublisher, cooldown time.Duration, loc *time.Location, logger *zerolog.Logger) *AssessmentService {
	if cooldown <= 0 {
		cooldown = time.Duration(models.DefaultCooldownDays) * 24 * time.Hour
	}
	return &AssessmentService{
		repo:     repo,
		eventBus: eventBus,
		cooldown: cooldown,
		loc:      loc,
		logger:   logger,
	}
}

// CanAssess проверяет окно повторной оценки. Отсутствие прошлых оценок —
// не ошибка.
func (s *AssessmentService) CanAssess(ctx context.Context, userID string, now time.Time) error {
	latest, err := s.repo.GetLatestAOQByUser(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	until := latest.CreatedAt.Add(s.cooldown)
	if now.Before(until) {
		return &CooldownError{Until: until.In(s.loc)}
	}
	return nil
}

func (s *AssessmentService) CreateAssessment(ctx context.Context, userID, specialistID, serviceID string, score int) (*models.AssessmentOfQuality, error) {
	if score < models.QualityScoreMin || score > models.QualityScoreMax {
		return nil, ErrScoreOutOfRange
	}

	if err := s.CanAssess(ctx, userID, time.Now()); err != nil {
		return nil, err
	}

	aoq := &models.AssessmentOfQuality{
		UserID:       userID,
		SpecialistID: specialistID,
		Score:        score,
	}
	if serviceID != "" {
		aoq.ServiceID = sql.NullString{String: serviceID, Valid: true}
	}

	if err := s.repo.CreateAOQ(ctx, aoq); err != nil {
		return nil, err
	}

	s.publishAOQEvent(ctx, aoq)

	s.logger.Info().
		Str("aoq_id", aoq.ID).
		Str("specialist_id", specialistID).
		Int("score", score).
		Msg("Оценка качества создана")

	return aoq, nil
}

func (s *AssessmentService) AttachComment(ctx context.Context, aoqID, comment string) error {
	return s.repo.UpdateAOQComment(ctx, aoqID, comment)
}

func (s *AssessmentService) CreateNPS(ctx context.Context, userID, aoqID string, score int) (*models.NetPromoterScore, error) {
	if score < models.NPSScoreMin || score > models.NPSScoreMax {
		return nil, ErrScoreOutOfRange
	}

	aoq, err := s.repo.GetAOQ(ctx, aoqID)
	if err != nil {
		return nil, err
	}
	if aoq.UserID != userID {
		return nil, ErrForeignAssessment
	}

	nps := &models.NetPromoterScore{
		UserID: userID,
		AOQID:  aoqID,
		Score:  score,
	}
	if err := s.repo.CreateNPS(ctx, nps); err != nil {
		return nil, err
	}

	if user, uerr := s.repo.GetUserByID(ctx, userID); uerr == nil {
		s.eventBus.PublishJSON(events.EventNPSCreated, events.NPSEventPayload{
			NPSID:    nps.ID,
			AOQID:    aoqID,
			UserTgID: user.TgID,
			Score:    score,
		})
	}

	s.logger.Info().Str("nps_id", nps.ID).Str("aoq_id", aoqID).Int("score", score).Msg("NPS записан")

	return nps, nil
}

func (s *AssessmentService) publishAOQEvent(ctx context.Context, aoq *models.AssessmentOfQuality) {
	payload := events.AOQEventPayload{
		AOQID:        aoq.ID,
		SpecialistID: aoq.SpecialistID,
		Score:        aoq.Score,
		CreatedAt:    aoq.CreatedAt,
	}
	if user, err := s.repo.GetUserByID(ctx, aoq.UserID); err == nil {
		payload.UserTgID = user.TgID
	}
	if sp, err := s.repo.GetSpecialist(ctx, aoq.SpecialistID); err == nil {
		payload.SpecialistName = sp.Fullname
	}

	if err := s.eventBus.PublishJSON(events.EventAOQCreated, payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to publish assessment event")
	}
}
