package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"aoqbot/internal/models"

	"github.com/google/uuid"
)

func (db *DB) CreateAOQ(ctx context.Context, a *models.AssessmentOfQuality) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now()
	a.CreatedAt = now
	a.ModifiedAt = now

	query := `INSERT INTO assessments_of_quality (id, user_id, specialist_id, service_id, score, comment, created_at, modified_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		a.ID, a.UserID, a.SpecialistID, a.ServiceID, a.Score, a.Comment,
		a.CreatedAt, a.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	return nil
}

func (db *DB) GetAOQ(ctx context.Context, id string) (*models.AssessmentOfQuality, error) {
	query := `SELECT id, user_id, specialist_id, service_id, score, comment, created_at, modified_at
              FROM assessments_of_quality WHERE id = ?`
	return db.queryAOQ(ctx, query, id)
}

// GetLatestAOQByUser возвращает последнюю оценку пользователя для проверки
// окна повторной оценки.
func (db *DB) GetLatestAOQByUser(ctx context.Context, userID string) (*models.AssessmentOfQuality, error) {
	query := `SELECT id, user_id, specialist_id, service_id, score, comment, created_at, modified_at
              FROM assessments_of_quality WHERE user_id = ?
              ORDER BY created_at DESC LIMIT 1`
	return db.queryAOQ(ctx, query, userID)
}

func (db *DB) queryAOQ(ctx context.Context, query string, args ...interface{}) (*models.AssessmentOfQuality, error) {
	var a models.AssessmentOfQuality
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&a.ID, &a.UserID, &a.SpecialistID, &a.ServiceID, &a.Score, &a.Comment,
		&a.CreatedAt, &a.ModifiedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (db *DB) UpdateAOQComment(ctx context.Context, id, comment string) error {
	query := `UPDATE assessments_of_quality SET comment = ?, modified_at = ? WHERE id = ?`
	res, err := db.ExecContext(ctx, query, comment, time.Now(), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// GetAOQsSince выбирает оценки начиная с указанного момента, для сводной
// аналитики за период.
func (db *DB) GetAOQsSince(ctx context.Context, since time.Time) ([]*models.AssessmentOfQuality, error) {
	query := `SELECT id, user_id, specialist_id, service_id, score, comment, created_at, modified_at
              FROM assessments_of_quality WHERE created_at >= ? ORDER BY created_at`
	rows, err := db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	var assessments []*models.AssessmentOfQuality
	for rows.Next() {
		a := &models.AssessmentOfQuality{}
		err := rows.Scan(
			&a.ID, &a.UserID, &a.SpecialistID, &a.ServiceID, &a.Score, &a.Comment,
			&a.CreatedAt, &a.ModifiedAt,
		)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, a)
	}
	return assessments, rows.Err()
}

func (db *DB) GetNPSsSince(ctx context.Context, since time.Time) ([]*models.NetPromoterScore, error) {
	query := `SELECT id, user_id, aoq_id, score, created_at, modified_at
              FROM net_promoter_scores WHERE created_at >= ? ORDER BY created_at`
	rows, err := db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query nps: %w", err)
	}
	defer rows.Close()

	var scores []*models.NetPromoterScore
	for rows.Next() {
		n := &models.NetPromoterScore{}
		err := rows.Scan(&n.ID, &n.UserID, &n.AOQID, &n.Score, &n.CreatedAt, &n.ModifiedAt)
		if err != nil {
			return nil, err
		}
		scores = append(scores, n)
	}
	return scores, rows.Err()
}

// CreateNPS падает с ErrDuplicateNPS при повторной попытке для той же оценки:
// таблица держит уникальный индекс по aoq_id.
func (db *DB) CreateNPS(ctx context.Context, n *models.NetPromoterScore) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now()
	n.CreatedAt = now
	n.ModifiedAt = now

	query := `INSERT INTO net_promoter_scores (id, user_id, aoq_id, score, created_at, modified_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, n.ID, n.UserID, n.AOQID, n.Score, n.CreatedAt, n.ModifiedAt)
	if err != nil {
		return translateConstraint(err, ErrDuplicateNPS)
	}
	return nil
}

func (db *DB) GetNPSByAOQ(ctx context.Context, aoqID string) (*models.NetPromoterScore, error) {
	var n models.NetPromoterScore
	err := db.QueryRowContext(ctx,
		`SELECT id, user_id, aoq_id, score, created_at, modified_at
         FROM net_promoter_scores WHERE aoq_id = ?`, aoqID,
	).Scan(&n.ID, &n.UserID, &n.AOQID, &n.Score, &n.CreatedAt, &n.ModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// GetAOQExportRows собирает развернутые строки для выгрузки в Excel.
// Удаленная услуга отображается пустым значением.
func (db *DB) GetAOQExportRows(ctx context.Context) ([]*models.AOQExportRow, error) {
	query := `SELECT a.id, u.username, u.full_name, COALESCE(ssc.name, ''),
                     s.organization, s.fullname, s.department, s.position,
                     COALESCE(sv.name, ''), a.score, COALESCE(a.comment, ''), a.created_at
              FROM assessments_of_quality a
              JOIN users u ON u.id = a.user_id
              JOIN specialists s ON s.id = a.specialist_id
              LEFT JOIN services sv ON sv.id = a.service_id
              LEFT JOIN social_subcategories ssc ON ssc.id = u.social_subcategory_id
              ORDER BY a.created_at`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessment export: %w", err)
	}
	defer rows.Close()

	var result []*models.AOQExportRow
	for rows.Next() {
		r := &models.AOQExportRow{}
		err := rows.Scan(
			&r.ID, &r.Username, &r.UserFullName, &r.SocialCategory,
			&r.Organization, &r.SpecialistName, &r.Department, &r.Position,
			&r.ServiceName, &r.Score, &r.Comment, &r.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (db *DB) GetNPSExportRows(ctx context.Context) ([]*models.NPSExportRow, error) {
	query := `SELECT n.id, u.username, u.full_name, s.organization, s.fullname,
                     n.score, n.created_at
              FROM net_promoter_scores n
              JOIN users u ON u.id = n.user_id
              JOIN assessments_of_quality a ON a.id = n.aoq_id
              JOIN specialists s ON s.id = a.specialist_id
              ORDER BY n.created_at`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query nps export: %w", err)
	}
	defer rows.Close()

	var result []*models.NPSExportRow
	for rows.Next() {
		r := &models.NPSExportRow{}
		err := rows.Scan(
			&r.ID, &r.Username, &r.UserFullName, &r.Organization, &r.SpecialistName,
			&r.Score, &r.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
