// Package store implements the persistence adapters the access
// pipelines consume, over gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/filegrid/filegrid-backend/access"
	"github.com/filegrid/filegrid-backend/models"
)

type FileStore struct {
	db *gorm.DB
}

func NewFileStore(db *gorm.DB) *FileStore {
	return &FileStore{db: db}
}

// LookupByUUID fetches a file by its external identifier. Soft-deleted
// rows are still returned; the access pipeline decides what a deleted
// file means for the caller.
func (s *FileStore) LookupByUUID(ctx context.Context, fileUUID string) (*models.File, error) {
	var file models.File
	err := s.db.WithContext(ctx).Where("uuid = ?", fileUUID).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, access.ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup file %s: %w", fileUUID, err)
	}
	return &file, nil
}

// ListOwned returns the requester's own files, name ascending. Files the
// requester can merely reach through a link or a role are excluded from
// the listing surface on purpose.
func (s *FileStore) ListOwned(ctx context.Context, userID uuid.UUID) ([]models.File, error) {
	var files []models.File
	err := s.db.WithContext(ctx).
		Where("owner_user_id = ?", userID).
		Where("deleted_at IS NULL").
		Order("name asc").
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("list files for user %s: %w", userID, err)
	}
	return files, nil
}

func (s *FileStore) Create(ctx context.Context, file *models.File) error {
	if err := s.db.WithContext(ctx).Create(file).Error; err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

func (s *FileStore) Rename(ctx context.Context, fileID uuid.UUID, name string) error {
	err := s.db.WithContext(ctx).Model(&models.File{}).
		Where("id = ?", fileID).
		Update("name", name).Error
	if err != nil {
		return fmt.Errorf("rename file %s: %w", fileID, err)
	}
	return nil
}

func (s *FileStore) SetPublicLinkAccess(ctx context.Context, fileID uuid.UUID, link models.PublicLinkAccess) error {
	err := s.db.WithContext(ctx).Model(&models.File{}).
		Where("id = ?", fileID).
		Update("public_link_access", link).Error
	if err != nil {
		return fmt.Errorf("update sharing for file %s: %w", fileID, err)
	}
	return nil
}

func (s *FileStore) SetThumbnail(ctx context.Context, fileID uuid.UUID, key string) error {
	err := s.db.WithContext(ctx).Model(&models.File{}).
		Where("id = ?", fileID).
		Update("thumbnail_key", key).Error
	if err != nil {
		return fmt.Errorf("update thumbnail for file %s: %w", fileID, err)
	}
	return nil
}

// SetOwner relocates the file to a different owner. Ownership is a
// status, not a role row, so no role records change here.
func (s *FileStore) SetOwner(ctx context.Context, fileID, ownerUserID uuid.UUID) error {
	err := s.db.WithContext(ctx).Model(&models.File{}).
		Where("id = ?", fileID).
		Update("owner_user_id", ownerUserID).Error
	if err != nil {
		return fmt.Errorf("move file %s: %w", fileID, err)
	}
	return nil
}

// SoftDelete marks the file deleted. The single guarded UPDATE keeps it
// atomic with respect to concurrent reads and idempotent if the file was
// already deleted.
func (s *FileStore) SoftDelete(ctx context.Context, fileID uuid.UUID) error {
	err := s.db.WithContext(ctx).Model(&models.File{}).
		Where("id = ? AND deleted_at IS NULL", fileID).
		Update("deleted_at", time.Now()).Error
	if err != nil {
		return fmt.Errorf("delete file %s: %w", fileID, err)
	}
	return nil
}

// ListDeletedBefore returns files soft-deleted before the cutoff, for
// the purge job.
func (s *FileStore) ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]models.File, error) {
	var files []models.File
	err := s.db.WithContext(ctx).
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("list purgeable files: %w", err)
	}
	return files, nil
}

// Purge physically removes a soft-deleted row together with its role and
// invite edges. Active files are never purged.
func (s *FileStore) Purge(ctx context.Context, fileID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND deleted_at IS NOT NULL", fileID).Delete(&models.File{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Where("file_id = ?", fileID).Delete(&models.UserFileRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("file_id = ?", fileID).Delete(&models.TeamFileRole{}).Error; err != nil {
			return err
		}
		return tx.Where("file_id = ?", fileID).Delete(&models.FileInvite{}).Error
	})
	if err != nil {
		return fmt.Errorf("purge file %s: %w", fileID, err)
	}
	return nil
}

// RecordAudit logs a successful mutation. Failures here are reported but
// must not fail the mutation itself, so the caller decides what to do
// with the error.
func (s *FileStore) RecordAudit(ctx context.Context, event *models.FileAuditEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}
	return nil
}
