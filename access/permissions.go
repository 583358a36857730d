// Package access computes a requester's effective permissions on a file
// and maps each request onto a boundary outcome: allowed, unauthenticated,
// not found, forbidden, or gone.
package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/filegrid/filegrid-backend/models"
)

type Permission string

const (
	FileView   Permission = "FILE_VIEW"
	FileEdit   Permission = "FILE_EDIT"
	FileDelete Permission = "FILE_DELETE"
	FileMove   Permission = "FILE_MOVE"
)

// canonical order, used everywhere a set is rendered
var allPermissions = []Permission{FileView, FileEdit, FileDelete, FileMove}

type PermissionSet map[Permission]struct{}

func NewPermissionSet(perms ...Permission) PermissionSet {
	s := make(PermissionSet, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// FullSet returns every permission. This is what ownership grants.
func FullSet() PermissionSet {
	return NewPermissionSet(allPermissions...)
}

func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

func (s PermissionSet) Add(p Permission) {
	s[p] = struct{}{}
}

// Union folds other into s. Permissions only ever accumulate; no tier
// subtracts what another tier established.
func (s PermissionSet) Union(other PermissionSet) {
	for p := range other {
		s[p] = struct{}{}
	}
}

// Slice renders the set in canonical order.
func (s PermissionSet) Slice() []Permission {
	out := make([]Permission, 0, len(s))
	for _, p := range allPermissions {
		if s.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s PermissionSet) String() string {
	parts := make([]string, 0, len(s))
	for _, p := range s.Slice() {
		parts = append(parts, string(p))
	}
	return strings.Join(parts, ",")
}

// ParsePermissions decodes a comma-joined permission column. Unknown
// names are skipped rather than rejected so stale rows cannot lock out a
// lookup.
func ParsePermissions(raw string) PermissionSet {
	s := NewPermissionSet()
	for _, part := range strings.Split(raw, ",") {
		switch p := Permission(strings.TrimSpace(part)); p {
		case FileView, FileEdit, FileDelete, FileMove:
			s.Add(p)
		}
	}
	return s
}

// RoleStore aggregates the accepted role grants (direct and
// team-derived) a user holds on a file. Pending invites are never
// included.
type RoleStore interface {
	PermissionsForUser(ctx context.Context, fileID, userID uuid.UUID) (PermissionSet, error)
}

// Resolve computes the requester's effective permission set on a file.
//
// Ownership dominates and short-circuits every other signal. Otherwise
// the set is seeded from the file's public link policy, which applies
// identically to anonymous and authenticated non-owners, and then
// unioned with the requester's role grants.
func Resolve(ctx context.Context, file *models.File, req Requester, roles RoleStore) (PermissionSet, error) {
	if userID, ok := req.UserID(); ok && userID == file.OwnerUserID {
		return FullSet(), nil
	}

	perms := NewPermissionSet()
	switch file.PublicLinkAccess {
	case models.LinkReadOnly:
		perms.Add(FileView)
	case models.LinkEdit:
		perms.Add(FileView)
		perms.Add(FileEdit)
	}

	if userID, ok := req.UserID(); ok {
		granted, err := roles.PermissionsForUser(ctx, file.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("resolve roles for user %s on file %s: %w", userID, file.ID, err)
		}
		perms.Union(granted)
	}

	return perms, nil
}
