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

const userColumns = `id, tg_id, username, full_name, role, social_subcategory_id, created_at, modified_at`

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	now := time.Now()
	user.CreatedAt = now
	user.ModifiedAt = now

	query := `INSERT INTO users (id, tg_id, username, full_name, role, social_subcategory_id, created_at, modified_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		user.ID, user.TgID, user.Username, user.FullName, user.Role,
		user.SocialSubcategoryID, user.CreatedAt, user.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translateConstraint(err, ErrDuplicate))
	}
	return nil
}

func (db *DB) GetUserByTgID(ctx context.Context, tgID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tg_id = ?`
	return db.queryUser(ctx, query, tgID)
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return db.queryUser(ctx, query, id)
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return db.queryUser(ctx, query, username)
}

func (db *DB) queryUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.TgID, &user.Username, &user.FullName, &user.Role,
		&user.SocialSubcategoryID, &user.CreatedAt, &user.ModifiedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *DB) UpdateUserIdentity(ctx context.Context, tgID int64, username, fullName string) error {
	query := `UPDATE users SET username = ?, full_name = ?, modified_at = ? WHERE tg_id = ?`
	_, err := db.ExecContext(ctx, query, username, fullName, time.Now(), tgID)
	return err
}

func (db *DB) UpdateUserRole(ctx context.Context, tgID int64, role string) error {
	query := `UPDATE users SET role = ?, modified_at = ? WHERE tg_id = ?`
	res, err := db.ExecContext(ctx, query, role, time.Now(), tgID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (db *DB) UpdateUserRoleByUsername(ctx context.Context, username, role string) error {
	query := `UPDATE users SET role = ?, modified_at = ? WHERE username = ?`
	res, err := db.ExecContext(ctx, query, role, time.Now(), username)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (db *DB) UpdateUserSubcategory(ctx context.Context, tgID int64, subcategoryID string) error {
	query := `UPDATE users SET social_subcategory_id = ?, modified_at = ? WHERE tg_id = ?`
	res, err := db.ExecContext(ctx, query, subcategoryID, time.Now(), tgID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (db *DB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	return db.queryUsers(ctx, query)
}

func (db *DB) GetUsersByRole(ctx context.Context, role string) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = ? ORDER BY created_at`
	return db.queryUsers(ctx, query, role)
}

func (db *DB) queryUsers(ctx context.Context, query string, args ...interface{}) ([]*models.User, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		err := rows.Scan(
			&u.ID, &u.TgID, &u.Username, &u.FullName, &u.Role,
			&u.SocialSubcategoryID, &u.CreatedAt, &u.ModifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
