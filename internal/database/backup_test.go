package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourbook/internal/config"
)

func TestPerformBackup(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "bookings.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.CreateBooking(context.Background(), sampleBooking()))
	db.Close()

	logger := zerolog.Nop()
	svc := NewBackupService(dbPath, config.BackupConfig{
		Enabled:     true,
		StoragePath: filepath.Join(tmpDir, "backups"),
	}, &logger)

	require.NoError(t, svc.PerformBackup())

	files, err := os.ReadDir(filepath.Join(tmpDir, "backups"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	// Backup must itself be a readable database with the data present
	backup, err := NewDB(filepath.Join(tmpDir, "backups", files[0].Name()))
	require.NoError(t, err)
	defer backup.Close()

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	got, err := backup.GetBookingsByDateRange(context.Background(), from, to)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCleanupOldBackups(t *testing.T) {
	tmpDir := t.TempDir()

	oldFile := filepath.Join(tmpDir, "bookings_old.db")
	require.NoError(t, os.WriteFile(oldFile, []byte("stale"), 0o644))
	past := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(oldFile, past, past))

	freshFile := filepath.Join(tmpDir, "bookings_fresh.db")
	require.NoError(t, os.WriteFile(freshFile, []byte("fresh"), 0o644))

	logger := zerolog.Nop()
	svc := NewBackupService("unused.db", config.BackupConfig{
		Enabled:       true,
		StoragePath:   tmpDir,
		RetentionDays: 7,
	}, &logger)

	svc.CleanupOldBackups()

	_, err := os.Stat(oldFile)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(freshFile)
	assert.NoError(t, err)
}
