package database

import (
	"compress/gzip"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"aoqbot/internal/config"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

type BackupService struct {
	dbPath string
	config config.BackupConfig
	loc    *time.Location
	logger *zerolog.Logger
	notify func(text string)
}

func NewBackupService(dbPath string, cfg config.BackupConfig, loc *time.Location, logger *zerolog.Logger) *BackupService {
	return &BackupService{
		dbPath: dbPath,
		config: cfg,
		loc:    loc,
		logger: logger,
	}
}

// SetNotifier задает канал доставки сообщений об ошибках копирования.
func (s *BackupService) SetNotifier(fn func(text string)) {
	s.notify = fn
}

// Start запускает ежедневное резервное копирование в настроенный час.
func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("Backup service is disabled")
		return
	}

	s.logger.Info().Int("hour", s.config.Hour).Msg("Backup service started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.untilNextRun()):
			if _, err := s.PerformBackup(); err != nil {
				s.logger.Error().Err(err).Msg("Scheduled backup failed")
				if s.notify != nil {
					s.notify(fmt.Sprintf("⚠️ Ошибка резервного копирования: %v", err))
				}
			}
			s.CleanupOldBackups()
		}
	}
}

func (s *BackupService) untilNextRun() time.Duration {
	now := time.Now().In(s.loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.Hour, 0, 0, 0, s.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// PerformBackup делает снимок базы и возвращает путь к созданному файлу.
func (s *BackupService) PerformBackup() (string, error) {
	if _, err := os.Stat(s.config.StoragePath); os.IsNotExist(err) {
		if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
			return "", fmt.Errorf("failed to create backup directory: %w", err)
		}
	}

	timestamp := time.Now().In(s.loc).Format("20060102_150405")
	rawPath := filepath.Join(s.config.StoragePath, fmt.Sprintf("backup_%s.db", timestamp))

	s.logger.Info().Str("path", rawPath).Msg("Performing database backup using VACUUM INTO")

	db, err := sql.Open("sqlite3", s.dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	// VACUUM INTO дает консистентный снимок без остановки записи
	if _, err = db.Exec(fmt.Sprintf("VACUUM INTO '%s'", rawPath)); err != nil {
		s.logger.Warn().Err(err).Msg("VACUUM INTO failed, falling back to file copy")
		if err := s.performBackupFallback(rawPath); err != nil {
			return "", err
		}
	}

	backupPath, err := s.compressBackup(rawPath)
	if err != nil {
		return "", err
	}

	s.logger.Info().Str("path", backupPath).Msg("Backup completed successfully")
	return backupPath, nil
}

// compressBackup упаковывает сырой снимок в gzip и удаляет исходник.
func (s *BackupService) compressBackup(rawPath string) (string, error) {
	source, err := os.Open(rawPath)
	if err != nil {
		return "", err
	}
	defer source.Close()

	gzPath := rawPath + ".gz"
	destination, err := os.Create(gzPath)
	if err != nil {
		return "", err
	}
	defer destination.Close()

	gw := gzip.NewWriter(destination)
	if _, err := io.Copy(gw, source); err != nil {
		gw.Close()
		return "", err
	}
	if err := gw.Close(); err != nil {
		return "", err
	}

	source.Close()
	if err := os.Remove(rawPath); err != nil {
		s.logger.Warn().Err(err).Str("path", rawPath).Msg("Failed to remove raw backup file")
	}
	return gzPath, nil
}

func (s *BackupService) performBackupFallback(backupPath string) error {
	source, err := os.Open(s.dbPath)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(backupPath)
	if err != nil {
		return err
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return err
	}

	s.logger.Info().Msg("Fallback backup completed successfully")
	return nil
}

// CleanupOldBackups оставляет только KeepLatest самых свежих снимков.
func (s *BackupService) CleanupOldBackups() {
	if s.config.KeepLatest <= 0 {
		return
	}

	entries, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read backup directory for cleanup")
		return
	}

	type backupFile struct {
		name  string
		mtime time.Time
	}
	var backups []backupFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backupFile{name: entry.Name(), mtime: info.ModTime()})
	}

	if len(backups) <= s.config.KeepLatest {
		return
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].mtime.After(backups[j].mtime)
	})

	for _, old := range backups[s.config.KeepLatest:] {
		s.logger.Info().Str("file", old.name).Msg("Deleting old backup")
		os.Remove(filepath.Join(s.config.StoragePath, old.name))
	}
}
