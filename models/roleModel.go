package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Team struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type TeamMember struct {
	TeamID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

// UserFileRole is a direct grant of permissions to a user on a file,
// created either explicitly or by accepting a FileInvite.
type UserFileRole struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;index:idx_user_file_role,unique"`
	FileID      uuid.UUID `gorm:"type:uuid;index:idx_user_file_role,unique"`
	Permissions string    `gorm:"not null"` // comma-joined permission names
	CreatedAt   time.Time
}

func (r *UserFileRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TeamFileRole grants permissions on a file to every member of a team.
type TeamFileRole struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TeamID      uuid.UUID `gorm:"type:uuid;index:idx_team_file_role,unique"`
	FileID      uuid.UUID `gorm:"type:uuid;index:idx_team_file_role,unique"`
	Permissions string    `gorm:"not null"`
	CreatedAt   time.Time
}

func (r *TeamFileRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// FileInvite is a pending grant keyed by email. It carries no live
// permission: the resolver only ever sees roles, and an invite becomes a
// UserFileRole when the invited user accepts it.
type FileInvite struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	FileID      uuid.UUID `gorm:"type:uuid;index;not null"`
	Email       string    `gorm:"index;not null"`
	Permissions string    `gorm:"not null"`
	CreatedAt   time.Time
}

func (i *FileInvite) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
