package access

import (
	"context"

	"github.com/filegrid/filegrid-backend/models"
)

// FileStore is the lookup contract the pipelines consume. A missing
// uuid yields ErrFileNotFound; any other error is a store failure.
type FileStore interface {
	LookupByUUID(ctx context.Context, fileUUID string) (*models.File, error)
}

// ReadResult is what an allowed read returns: the file plus what the
// requester may do with it.
type ReadResult struct {
	File        *models.File
	Permissions PermissionSet
	IsOwner     bool
}

// ReadFile runs the read-tolerant pipeline. Anonymous requesters are
// acceptable here; whether they get anything depends entirely on the
// resolved permission set.
//
// Check order is fixed: existence, then permission, then lifecycle. The
// permission check deliberately precedes the deleted check so that a
// requester without FILE_VIEW learns nothing about deletion state.
func ReadFile(ctx context.Context, files FileStore, roles RoleStore, req Requester, fileUUID string) (*ReadResult, error) {
	file, err := files.LookupByUUID(ctx, fileUUID)
	if err != nil {
		return nil, err
	}

	perms, err := Resolve(ctx, file, req, roles)
	if err != nil {
		return nil, err
	}
	if !perms.Has(FileView) {
		return nil, ErrPermissionDenied
	}
	if file.Deleted() {
		return nil, ErrFileDeleted
	}

	return &ReadResult{
		File:        file,
		Permissions: perms,
		IsOwner:     req.Is(file.OwnerUserID),
	}, nil
}

// AuthorizeWrite runs the write-required pipeline and returns the file
// the caller may mutate. Anonymous requesters are rejected before any
// lookup happens, so an unauthenticated caller cannot distinguish
// existing-but-forbidden files from nonexistent ones.
func AuthorizeWrite(ctx context.Context, files FileStore, roles RoleStore, req Requester, fileUUID string, need Permission) (*models.File, error) {
	if req.IsAnonymous() {
		return nil, ErrNoToken
	}

	file, err := files.LookupByUUID(ctx, fileUUID)
	if err != nil {
		return nil, err
	}

	perms, err := Resolve(ctx, file, req, roles)
	if err != nil {
		return nil, err
	}
	if !perms.Has(need) {
		return nil, ErrPermissionDenied
	}

	return file, nil
}

// RequireUser gates operations that need authentication but have no
// target file, such as listing. It is the degenerate write-required
// pipeline.
func RequireUser(req Requester) error {
	if req.IsAnonymous() {
		return ErrNoToken
	}
	return nil
}
