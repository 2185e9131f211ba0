package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound возвращается, когда запись по фильтру отсутствует.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate — нарушение уникальности (например, повторное имя услуги).
	ErrDuplicate = errors.New("duplicate record")

	// ErrDuplicateNPS — попытка создать второй NPS для того же AOQ.
	ErrDuplicateNPS = errors.New("nps already exists for this assessment")
)

type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// foreign_keys обязателен: каскады из схемы иначе не работают
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("База данных инициализирована")
	return &DB{DB: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            tg_id INTEGER UNIQUE NOT NULL,
            username TEXT NOT NULL,
            full_name TEXT,
            role TEXT NOT NULL DEFAULT 'user',
            social_subcategory_id TEXT
                REFERENCES social_subcategories(id) ON DELETE SET NULL,
            created_at DATETIME NOT NULL,
            modified_at DATETIME NOT NULL
        )`,

		`CREATE TABLE IF NOT EXISTS specialists (
            id TEXT PRIMARY KEY,
            organization TEXT NOT NULL,
            position TEXT NOT NULL,
            fullname TEXT NOT NULL,
            department TEXT NOT NULL DEFAULT '',
            link TEXT NOT NULL DEFAULT '',
            qr TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL,
            modified_at DATETIME NOT NULL
        )`,

		`CREATE TABLE IF NOT EXISTS services (
            id TEXT PRIMARY KEY,
            name TEXT UNIQUE NOT NULL,
            created_at DATETIME NOT NULL,
            modified_at DATETIME NOT NULL
        )`,

		`CREATE TABLE IF NOT EXISTS social_categories (
            id TEXT PRIMARY KEY,
            name TEXT UNIQUE NOT NULL,
            created_at DATETIME NOT NULL,
            modified_at DATETIME NOT NULL
        )`,

		`CREATE TABLE IF NOT EXISTS social_subcategories (
            id TEXT PRIMARY KEY,
            name TEXT UNIQUE NOT NULL,
            category_id TEXT NOT NULL
                REFERENCES social_categories(id) ON DELETE CASCADE,
            created_at DATETIME NOT NULL,
            modified_at DATETIME NOT NULL
        )`,

		// Удаление специалиста каскадно сносит его оценки;
		// удаление услуги лишь обнуляет ссылку, оценка остается.
		`CREATE TABLE IF NOT EXISTS assessments_of_quality (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL REFERENCES users(id),
            specialist_id TEXT NOT NULL
                REFERENCES specialists(id) ON DELETE CASCADE,
            service_id TEXT
                REFERENCES services(id) ON DELETE SET NULL,
            score INTEGER NOT NULL,
            comment TEXT,
            created_at DATETIME NOT NULL,
            modified_at DATETIME NOT NULL
        )`,

		`CREATE TABLE IF NOT EXISTS net_promoter_scores (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL REFERENCES users(id),
            aoq_id TEXT UNIQUE NOT NULL
                REFERENCES assessments_of_quality(id) ON DELETE CASCADE,
            score INTEGER NOT NULL,
            created_at DATETIME NOT NULL,
            modified_at DATETIME NOT NULL
        )`,

		`CREATE INDEX IF NOT EXISTS idx_users_tg_id ON users(tg_id)`,
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
		`CREATE INDEX IF NOT EXISTS idx_specialists_org ON specialists(organization)`,
		`CREATE INDEX IF NOT EXISTS idx_aoq_user_id ON assessments_of_quality(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_aoq_specialist_id ON assessments_of_quality(specialist_id)`,
		`CREATE INDEX IF NOT EXISTS idx_aoq_created_at ON assessments_of_quality(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_subcategories_category ON social_subcategories(category_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// translateConstraint приводит нарушения уникальности к сентинелам пакета.
func translateConstraint(err error, unique error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return unique
	}
	return err
}
