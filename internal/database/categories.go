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

func (db *DB) CreateSocialCategory(ctx context.Context, c *models.SocialCategory) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now()
	c.CreatedAt = now
	c.ModifiedAt = now

	query := `INSERT INTO social_categories (id, name, created_at, modified_at) VALUES (?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, c.ID, c.Name, c.CreatedAt, c.ModifiedAt)
	if err != nil {
		return translateConstraint(err, ErrDuplicate)
	}
	return nil
}

func (db *DB) CreateSocialSubcategory(ctx context.Context, sc *models.SocialSubcategory) error {
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	now := time.Now()
	sc.CreatedAt = now
	sc.ModifiedAt = now

	query := `INSERT INTO social_subcategories (id, name, category_id, created_at, modified_at)
              VALUES (?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, sc.ID, sc.Name, sc.CategoryID, sc.CreatedAt, sc.ModifiedAt)
	if err != nil {
		return translateConstraint(err, ErrDuplicate)
	}
	return nil
}

func (db *DB) GetSocialCategory(ctx context.Context, id string) (*models.SocialCategory, error) {
	var c models.SocialCategory
	err := db.QueryRowContext(ctx,
		`SELECT id, name, created_at, modified_at FROM social_categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.ModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *DB) GetSocialSubcategory(ctx context.Context, id string) (*models.SocialSubcategory, error) {
	var sc models.SocialSubcategory
	err := db.QueryRowContext(ctx,
		`SELECT id, name, category_id, created_at, modified_at FROM social_subcategories WHERE id = ?`, id,
	).Scan(&sc.ID, &sc.Name, &sc.CategoryID, &sc.CreatedAt, &sc.ModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (db *DB) GetAllSocialCategories(ctx context.Context) ([]*models.SocialCategory, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, created_at, modified_at FROM social_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query social categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.SocialCategory
	for rows.Next() {
		c := &models.SocialCategory{}
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.ModifiedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (db *DB) GetSubcategoriesByCategory(ctx context.Context, categoryID string) ([]*models.SocialSubcategory, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, category_id, created_at, modified_at
         FROM social_subcategories WHERE category_id = ? ORDER BY name`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subcategories: %w", err)
	}
	defer rows.Close()

	var subcategories []*models.SocialSubcategory
	for rows.Next() {
		sc := &models.SocialSubcategory{}
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.CategoryID, &sc.CreatedAt, &sc.ModifiedAt); err != nil {
			return nil, err
		}
		subcategories = append(subcategories, sc)
	}
	return subcategories, rows.Err()
}

// DeleteSocialCategory каскадно удаляет подкатегории; ссылки пользователей
// на удаленные подкатегории обнуляются.
func (db *DB) DeleteSocialCategory(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM social_categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (db *DB) DeleteSocialSubcategory(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM social_subcategories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (db *DB) DeleteAllSocialCategories(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `DELETE FROM social_categories`)
	return err
}
