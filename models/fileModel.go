package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PublicLinkAccess is the file-level sharing policy applied to every
// requester who is not the owner and holds no explicit role.
type PublicLinkAccess string

const (
	LinkNotShared PublicLinkAccess = "NOT_SHARED"
	LinkReadOnly  PublicLinkAccess = "READONLY"
	LinkEdit      PublicLinkAccess = "EDIT"
)

type File struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey"`
	UUID             string           `gorm:"uniqueIndex;not null"` // external identifier, immutable
	OwnerUserID      uuid.UUID        `gorm:"type:uuid;index;not null"`
	CreatorUserID    uuid.UUID        `gorm:"type:uuid;not null"`
	Name             string           `gorm:"not null"`
	Contents         []byte
	ThumbnailKey     *string
	PublicLinkAccess PublicLinkAccess `gorm:"default:NOT_SHARED"`
	DeletedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Owner User `gorm:"foreignKey:OwnerUserID"`
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.UUID == "" {
		f.UUID = uuid.New().String()
	}
	if f.PublicLinkAccess == "" {
		f.PublicLinkAccess = LinkNotShared
	}
	return nil
}

// Deleted reports whether the file has been soft-deleted. Rows stay in
// place for audit; only DeletedAt marks the state.
func (f *File) Deleted() bool {
	return f.DeletedAt != nil
}
