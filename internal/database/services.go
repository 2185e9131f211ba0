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

func (db *DB) CreateService(ctx context.Context, s *models.Service) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now()
	s.CreatedAt = now
	s.ModifiedAt = now

	query := `INSERT INTO services (id, name, created_at, modified_at) VALUES (?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, s.ID, s.Name, s.CreatedAt, s.ModifiedAt)
	if err != nil {
		return translateConstraint(err, ErrDuplicate)
	}
	return nil
}

func (db *DB) GetService(ctx context.Context, id string) (*models.Service, error) {
	var s models.Service
	err := db.QueryRowContext(ctx,
		`SELECT id, name, created_at, modified_at FROM services WHERE id = ?`, id,
	).Scan(&s.ID, &s.Name, &s.CreatedAt, &s.ModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (db *DB) GetAllServices(ctx context.Context) ([]*models.Service, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, created_at, modified_at FROM services ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	var services []*models.Service
	for rows.Next() {
		s := &models.Service{}
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.ModifiedAt); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// DeleteService обнуляет ссылку в существующих оценках (ON DELETE SET NULL).
func (db *DB) DeleteService(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteAllServices используется импортом справочника: полная замена списка.
func (db *DB) DeleteAllServices(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `DELETE FROM services`)
	return err
}
