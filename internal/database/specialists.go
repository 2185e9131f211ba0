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

const specialistColumns = `id, organization, position, fullname, department, link, qr, created_at, modified_at`

func (db *DB) CreateSpecialist(ctx context.Context, s *models.Specialist) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now()
	s.CreatedAt = now
	s.ModifiedAt = now

	query := `INSERT INTO specialists (id, organization, position, fullname, department, link, qr, created_at, modified_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		s.ID, s.Organization, s.Position, s.Fullname, s.Department, s.Link, s.QR,
		s.CreatedAt, s.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create specialist: %w", err)
	}
	return nil
}

func (db *DB) GetSpecialist(ctx context.Context, id string) (*models.Specialist, error) {
	query := `SELECT ` + specialistColumns + ` FROM specialists WHERE id = ?`
	return db.querySpecialist(ctx, query, id)
}

// FindSpecialistByNaturalKey ищет точное совпадение по всем четырем полям
// натурального ключа; используется импортом ростера для дедупликации.
func (db *DB) FindSpecialistByNaturalKey(ctx context.Context, organization, position, fullname, department string) (*models.Specialist, error) {
	query := `SELECT ` + specialistColumns + ` FROM specialists
              WHERE organization = ? AND position = ? AND fullname = ? AND department = ?`
	return db.querySpecialist(ctx, query, organization, position, fullname, department)
}

func (db *DB) querySpecialist(ctx context.Context, query string, args ...interface{}) (*models.Specialist, error) {
	var s models.Specialist
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&s.ID, &s.Organization, &s.Position, &s.Fullname, &s.Department,
		&s.Link, &s.QR, &s.CreatedAt, &s.ModifiedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (db *DB) UpdateSpecialistLink(ctx context.Context, id, link string) error {
	query := `UPDATE specialists SET link = ?, modified_at = ? WHERE id = ?`
	res, err := db.ExecContext(ctx, query, link, time.Now(), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (db *DB) UpdateSpecialistQR(ctx context.Context, id, fileID string) error {
	query := `UPDATE specialists SET qr = ?, modified_at = ? WHERE id = ?`
	res, err := db.ExecContext(ctx, query, fileID, time.Now(), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteSpecialist каскадно удаляет и все связанные AOQ (а через них NPS).
func (db *DB) DeleteSpecialist(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM specialists WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (db *DB) GetAllSpecialists(ctx context.Context) ([]*models.Specialist, error) {
	query := `SELECT ` + specialistColumns + ` FROM specialists ORDER BY organization, fullname`
	return db.querySpecialists(ctx, query)
}

func (db *DB) GetSpecialistsByOrganization(ctx context.Context, organization string) ([]*models.Specialist, error) {
	query := `SELECT ` + specialistColumns + ` FROM specialists WHERE organization = ? ORDER BY fullname`
	return db.querySpecialists(ctx, query, organization)
}

func (db *DB) GetOrganizations(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT organization FROM specialists ORDER BY organization`)
	if err != nil {
		return nil, fmt.Errorf("failed to query organizations: %w", err)
	}
	defer rows.Close()

	var orgs []string
	for rows.Next() {
		var org string
		if err := rows.Scan(&org); err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

func (db *DB) SearchSpecialists(ctx context.Context, q string) ([]*models.Specialist, error) {
	query := `SELECT ` + specialistColumns + ` FROM specialists
              WHERE fullname LIKE ? OR organization LIKE ? OR position LIKE ?
              ORDER BY fullname LIMIT 50`
	pattern := "%" + q + "%"
	return db.querySpecialists(ctx, query, pattern, pattern, pattern)
}

func (db *DB) querySpecialists(ctx context.Context, query string, args ...interface{}) ([]*models.Specialist, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query specialists: %w", err)
	}
	defer rows.Close()

	var specialists []*models.Specialist
	for rows.Next() {
		s := &models.Specialist{}
		err := rows.Scan(
			&s.ID, &s.Organization, &s.Position, &s.Fullname, &s.Department,
			&s.Link, &s.QR, &s.CreatedAt, &s.ModifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan specialist: %w", err)
		}
		specialists = append(specialists, s)
	}
	return specialists, rows.Err()
}
