package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stockroom/internal/atomicfile"
	"stockroom/internal/config"

	"github.com/rs/zerolog"
)

const filePrefix = "backup_"

type BackupService struct {
	dataPath string
	config   config.BackupConfig
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewBackupService(dataPath string, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	l := logger.With().Str("component", "backup").Logger()
	return &BackupService{
		dataPath: dataPath,
		config:   cfg,
		logger:   &l,
		now:      time.Now,
	}
}

func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("Backup service is disabled")
		return
	}

	s.logger.Info().Str("schedule", s.config.Schedule).Msg("Backup service started")

	interval := 24 * time.Hour
	if s.config.Schedule != "" {
		if d, err := time.ParseDuration(s.config.Schedule); err == nil && d > 0 {
			interval = d
		} else {
			s.logger.Warn().Err(err).Str("schedule", s.config.Schedule).Msg("Failed to parse backup schedule, using default 24h")
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run first backup immediately
	if _, err := s.PerformBackup(); err != nil {
		s.logger.Error().Err(err).Msg("Initial backup failed")
	}
	s.CleanupOldBackups()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PerformBackup(); err != nil {
				s.logger.Error().Err(err).Msg("Scheduled backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

// PerformBackup copies the data file into the storage directory and returns
// the backup path. It returns "" and no error when there is no data file yet.
func (s *BackupService) PerformBackup() (string, error) {
	if _, err := os.Stat(s.dataPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug().Str("path", s.dataPath).Msg("No data file, skipping backup")
			return "", nil
		}
		return "", fmt.Errorf("stat data file: %w", err)
	}

	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	timestamp := s.now().Format("20060102_150405")
	ext := filepath.Ext(s.dataPath)
	if ext == "" {
		ext = ".dat"
	}
	backupPath := filepath.Join(s.config.StoragePath, filePrefix+timestamp+ext)

	s.logger.Info().Str("path", backupPath).Msg("Performing data file backup")

	// the store only ever replaces the file by rename, so this reads one
	// consistent version of it
	if err := atomicfile.CopyFile(backupPath, s.dataPath); err != nil {
		return "", fmt.Errorf("copy data file: %w", err)
	}

	s.logger.Info().Msg("Backup completed successfully")
	return backupPath, nil
}

func (s *BackupService) CleanupOldBackups() {
	if s.config.RetentionDays <= 0 {
		return
	}

	files, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read backup directory for cleanup")
		return
	}

	cutoff := s.now().AddDate(0, 0, -s.config.RetentionDays)

	for _, file := range files {
		if file.IsDir() || !strings.HasPrefix(file.Name(), filePrefix) {
			continue
		}

		info, err := file.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", file.Name()).Msg("Deleting old backup")
			if err := os.Remove(filepath.Join(s.config.StoragePath, file.Name())); err != nil {
				s.logger.Warn().Err(err).Str("file", file.Name()).Msg("Failed to delete old backup")
			}
		}
	}
}
