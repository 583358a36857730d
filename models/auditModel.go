package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FileAuditEvent records a successful mutation on a file (delete,
// rename, sharing change, thumbnail update) and who performed it.
type FileAuditEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	FileID    uuid.UUID `gorm:"type:uuid;index;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	Action    string    `gorm:"not null"`
	IPAddress string
	CreatedAt time.Time
}

func (e *FileAuditEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
