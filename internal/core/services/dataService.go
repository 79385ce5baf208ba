package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/ports"
)

const backupPrefix = "backups/"

type DataService struct {
	repo    ports.MaintenanceRepository
	backups ports.BackupStorage
	logger  ports.LoggerPort
	now     func() time.Time
}

// NewDataService wires export, import and reset. backups may be nil, in
// which case backup and restore report domain.ErrBackupUnavailable.
func NewDataService(
	repo ports.MaintenanceRepository,
	backups ports.BackupStorage,
	logger ports.LoggerPort,
) *DataService {
	return &DataService{
		repo:    repo,
		backups: backups,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *DataService) Export(ctx context.Context) (string, error) {
	data, err := s.repo.Export(ctx)
	if err != nil {
		s.logger.Error("Failed to export data", map[string]interface{}{
			"error": err.Error(),
		})
		return "", err
	}
	return data, nil
}

func (s *DataService) Import(ctx context.Context, data string) (domain.Document, error) {
	return s.repo.Import(ctx, data)
}

func (s *DataService) Reset(ctx context.Context) (domain.Document, error) {
	return s.repo.Reset(ctx)
}

// Backup uploads the current export and returns its object key.
func (s *DataService) Backup(ctx context.Context) (string, error) {
	if s.backups == nil {
		return "", domain.ErrBackupUnavailable
	}

	data, err := s.Export(ctx)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%sridewise-%s.json", backupPrefix, s.now().UTC().Format("20060102T150405Z"))
	if err := s.backups.Upload(ctx, key, []byte(data)); err != nil {
		s.logger.Error("Failed to upload backup", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
		return "", fmt.Errorf("upload backup: %w", err)
	}

	s.logger.Info("Backup uploaded", map[string]interface{}{
		"key":   key,
		"bytes": len(data),
	})
	return key, nil
}

// Restore imports a stored backup. An empty key restores the newest one.
func (s *DataService) Restore(ctx context.Context, key string) (domain.Document, error) {
	if s.backups == nil {
		return domain.Document{}, domain.ErrBackupUnavailable
	}

	if key == "" {
		keys, err := s.ListBackups(ctx)
		if err != nil {
			return domain.Document{}, err
		}
		if len(keys) == 0 {
			return domain.Document{}, fmt.Errorf("backup: %w", domain.ErrNotFound)
		}
		key = keys[len(keys)-1]
	}

	data, err := s.backups.Download(ctx, key)
	if err != nil {
		s.logger.Error("Failed to download backup", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
		return domain.Document{}, fmt.Errorf("download backup %s: %w", key, err)
	}

	doc, err := s.repo.Import(ctx, string(data))
	if err != nil {
		return domain.Document{}, err
	}

	s.logger.Info("Backup restored", map[string]interface{}{
		"key": key,
	})
	return doc, nil
}

// ListBackups returns backup keys, oldest first.
func (s *DataService) ListBackups(ctx context.Context) ([]string, error) {
	if s.backups == nil {
		return nil, domain.ErrBackupUnavailable
	}
	keys, err := s.backups.List(ctx, backupPrefix)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}
