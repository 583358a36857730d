package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/filegrid/filegrid-backend/access"
	"github.com/filegrid/filegrid-backend/models"
)

var ErrInviteNotFound = errors.New("invite not found")

type RoleStore struct {
	db *gorm.DB
}

func NewRoleStore(db *gorm.DB) *RoleStore {
	return &RoleStore{db: db}
}

// PermissionsForUser aggregates every accepted grant the user holds on
// the file: direct roles plus roles derived from team membership. The
// sources compose by union. Pending invites are not roles and never
// contribute.
func (s *RoleStore) PermissionsForUser(ctx context.Context, fileID, userID uuid.UUID) (access.PermissionSet, error) {
	perms := access.NewPermissionSet()

	var direct []string
	err := s.db.WithContext(ctx).Model(&models.UserFileRole{}).
		Where("file_id = ? AND user_id = ?", fileID, userID).
		Pluck("permissions", &direct).Error
	if err != nil {
		return nil, fmt.Errorf("lookup direct roles: %w", err)
	}

	var derived []string
	err = s.db.WithContext(ctx).Model(&models.TeamFileRole{}).
		Joins("JOIN team_members ON team_members.team_id = team_file_roles.team_id").
		Where("team_file_roles.file_id = ? AND team_members.user_id = ?", fileID, userID).
		Pluck("team_file_roles.permissions", &derived).Error
	if err != nil {
		return nil, fmt.Errorf("lookup team roles: %w", err)
	}

	for _, raw := range append(direct, derived...) {
		perms.Union(access.ParsePermissions(raw))
	}
	return perms, nil
}

// grantRole upserts a direct role inside tx, unioning permissions with
// any existing grant so that sharing twice never narrows access.
func grantRole(tx *gorm.DB, fileID, userID uuid.UUID, perms access.PermissionSet) error {
	var existing models.UserFileRole
	err := tx.Where("file_id = ? AND user_id = ?", fileID, userID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&models.UserFileRole{
			UserID:      userID,
			FileID:      fileID,
			Permissions: perms.String(),
		}).Error
	}
	if err != nil {
		return err
	}
	merged := access.ParsePermissions(existing.Permissions)
	merged.Union(perms)
	return tx.Model(&existing).Update("permissions", merged.String()).Error
}

func (s *RoleStore) GrantUserRole(ctx context.Context, fileID, userID uuid.UUID, perms access.PermissionSet) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return grantRole(tx, fileID, userID, perms)
	})
	if err != nil {
		return fmt.Errorf("grant role on file %s: %w", fileID, err)
	}
	return nil
}

func (s *RoleStore) CreateInvite(ctx context.Context, invite *models.FileInvite) error {
	if err := s.db.WithContext(ctx).Create(invite).Error; err != nil {
		return fmt.Errorf("create invite: %w", err)
	}
	return nil
}

// AcceptInvite converts a pending invite addressed to the user's email
// into a live direct role and removes the invite, in one transaction.
// An existing role on the file is widened, never replaced, so accepting
// a second invite keeps the union semantics.
func (s *RoleStore) AcceptInvite(ctx context.Context, inviteID uuid.UUID, user *models.User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invite models.FileInvite
		err := tx.Where("id = ? AND email = ?", inviteID, user.Email).First(&invite).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		if err != nil {
			return err
		}
		if err := grantRole(tx, invite.FileID, user.ID, access.ParsePermissions(invite.Permissions)); err != nil {
			return err
		}
		return tx.Delete(&invite).Error
	})
	if err != nil {
		if errors.Is(err, ErrInviteNotFound) {
			return err
		}
		return fmt.Errorf("accept invite %s: %w", inviteID, err)
	}
	return nil
}
