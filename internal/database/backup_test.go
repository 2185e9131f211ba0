package database

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"aoqbot/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformBackup(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	logger := zerolog.Nop()
	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	backupDir := filepath.Join(tempDir, "backups")
	svc := NewBackupService(dbPath, config.BackupConfig{
		Enabled:     true,
		StoragePath: backupDir,
		KeepLatest:  7,
	}, time.UTC, &logger)

	path, err := svc.PerformBackup()
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.True(t, strings.HasSuffix(path, ".gz"))

	// Сырой снимок удален, остается только архив
	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// Распакованный снимок — валидная база с той же схемой
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gr, err := gzip.NewReader(f)
	require.NoError(t, err)
	restored := filepath.Join(tempDir, "restored.db")
	out, err := os.Create(restored)
	require.NoError(t, err)
	_, err = io.Copy(out, gr)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	backup, err := NewDB(restored, &logger)
	require.NoError(t, err)
	defer backup.Close()

	var count int
	err = backup.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCleanupOldBackups(t *testing.T) {
	tempDir := t.TempDir()
	backupDir := filepath.Join(tempDir, "backups")
	require.NoError(t, os.MkdirAll(backupDir, 0o755))

	// Десять файлов с разным временем модификации
	for i := 0; i < 10; i++ {
		name := filepath.Join(backupDir, "backup_"+time.Now().Add(time.Duration(i)*time.Minute).Format("20060102_150405")+".db")
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
		mtime := time.Now().Add(time.Duration(-i) * time.Hour)
		require.NoError(t, os.Chtimes(name, mtime, mtime))
	}

	logger := zerolog.Nop()
	svc := NewBackupService("", config.BackupConfig{
		StoragePath: backupDir,
		KeepLatest:  3,
	}, time.UTC, &logger)

	svc.CleanupOldBackups()

	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
