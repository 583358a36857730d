package access

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filegrid/filegrid-backend/models"
)

type fakeFileStore struct {
	files  map[string]*models.File
	err    error
	called bool
}

func (f *fakeFileStore) LookupByUUID(ctx context.Context, fileUUID string) (*models.File, error) {
	f.called = true
	if f.err != nil {
		return nil, f.err
	}
	if file, ok := f.files[fileUUID]; ok {
		return file, nil
	}
	return nil, ErrFileNotFound
}

func newTestFile(link models.PublicLinkAccess) *models.File {
	return &models.File{
		ID:               uuid.New(),
		UUID:             uuid.New().String(),
		OwnerUserID:      uuid.New(),
		Name:             "test_file",
		PublicLinkAccess: link,
	}
}

func storeWith(files ...*models.File) *fakeFileStore {
	m := make(map[string]*models.File, len(files))
	for _, f := range files {
		m[f.UUID] = f
	}
	return &fakeFileStore{files: m}
}

func TestReadFile_NotFound(t *testing.T) {
	files := storeWith()
	roles := &fakeRoleStore{}

	// independent of authentication
	for _, req := range []Requester{Anonymous(), AuthenticatedUser(uuid.New())} {
		_, err := ReadFile(context.Background(), files, roles, req, uuid.New().String())
		assert.ErrorIs(t, err, ErrFileNotFound)
	}
}

func TestReadFile_NotSharedForbidden(t *testing.T) {
	file := newTestFile(models.LinkNotShared)
	files := storeWith(file)
	roles := &fakeRoleStore{}

	// forbidden whether or not a credential was supplied
	for _, req := range []Requester{Anonymous(), AuthenticatedUser(uuid.New())} {
		_, err := ReadFile(context.Background(), files, roles, req, file.UUID)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	}
}

func TestReadFile_SharedReadonlyAllowed(t *testing.T) {
	file := newTestFile(models.LinkReadOnly)
	files := storeWith(file)
	roles := &fakeRoleStore{}

	res, err := ReadFile(context.Background(), files, roles, AuthenticatedUser(uuid.New()), file.UUID)
	require.NoError(t, err)
	assert.Equal(t, file.UUID, res.File.UUID)
	assert.Equal(t, []Permission{FileView}, res.Permissions.Slice())
	assert.False(t, res.IsOwner)
}

func TestReadFile_OwnerAllowed(t *testing.T) {
	file := newTestFile(models.LinkNotShared)
	files := storeWith(file)
	roles := &fakeRoleStore{}

	res, err := ReadFile(context.Background(), files, roles, AuthenticatedUser(file.OwnerUserID), file.UUID)
	require.NoError(t, err)
	assert.True(t, res.IsOwner)
	assert.Equal(t, FullSet().Slice(), res.Permissions.Slice())
}

func TestReadFile_OwnerAnonymousIsForbidden(t *testing.T) {
	// a browser that dropped the token gets no ownership treatment:
	// ownership requires an authenticated identity match
	file := newTestFile(models.LinkNotShared)
	files := storeWith(file)
	roles := &fakeRoleStore{}

	_, err := ReadFile(context.Background(), files, roles, Anonymous(), file.UUID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestReadFile_DeletedYieldsGone(t *testing.T) {
	file := newTestFile(models.LinkNotShared)
	now := time.Now()
	file.DeletedAt = &now
	files := storeWith(file)
	roles := &fakeRoleStore{}

	_, err := ReadFile(context.Background(), files, roles, AuthenticatedUser(file.OwnerUserID), file.UUID)
	assert.ErrorIs(t, err, ErrFileDeleted)
}

func TestReadFile_ForbiddenShadowsGone(t *testing.T) {
	// a requester without FILE_VIEW on a deleted file sees Forbidden,
	// never Gone: deletion state must not leak to the unauthorized
	file := newTestFile(models.LinkNotShared)
	now := time.Now()
	file.DeletedAt = &now
	files := storeWith(file)
	roles := &fakeRoleStore{}

	for _, req := range []Requester{Anonymous(), AuthenticatedUser(uuid.New())} {
		_, err := ReadFile(context.Background(), files, roles, req, file.UUID)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	}
}

func TestReadFile_DeletedButLinkSharedYieldsGone(t *testing.T) {
	file := newTestFile(models.LinkReadOnly)
	now := time.Now()
	file.DeletedAt = &now
	files := storeWith(file)
	roles := &fakeRoleStore{}

	_, err := ReadFile(context.Background(), files, roles, Anonymous(), file.UUID)
	assert.ErrorIs(t, err, ErrFileDeleted)
}

func TestReadFile_StoreFailureIsNotNotFound(t *testing.T) {
	files := &fakeFileStore{err: errors.New("connection refused")}
	roles := &fakeRoleStore{}

	_, err := ReadFile(context.Background(), files, roles, Anonymous(), uuid.New().String())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrFileNotFound))
	assert.Equal(t, 500, HTTPStatus(err))
}

func TestAuthorizeWrite_AnonymousRejectedBeforeLookup(t *testing.T) {
	files := storeWith()

	_, err := AuthorizeWrite(context.Background(), files, &fakeRoleStore{}, Anonymous(), uuid.New().String(), FileDelete)
	assert.ErrorIs(t, err, ErrNoToken)
	assert.False(t, files.called, "anonymous write must not touch the file store")
}

func TestAuthorizeWrite_NotFound(t *testing.T) {
	files := storeWith()

	_, err := AuthorizeWrite(context.Background(), files, &fakeRoleStore{}, AuthenticatedUser(uuid.New()), uuid.New().String(), FileDelete)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestAuthorizeWrite_MissingPermissionForbidden(t *testing.T) {
	// link-shared readonly grants FILE_VIEW only; delete needs FILE_DELETE
	file := newTestFile(models.LinkReadOnly)
	files := storeWith(file)

	_, err := AuthorizeWrite(context.Background(), files, &fakeRoleStore{}, AuthenticatedUser(uuid.New()), file.UUID, FileDelete)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestAuthorizeWrite_OwnerAllowed(t *testing.T) {
	file := newTestFile(models.LinkNotShared)
	files := storeWith(file)

	got, err := AuthorizeWrite(context.Background(), files, &fakeRoleStore{}, AuthenticatedUser(file.OwnerUserID), file.UUID, FileDelete)
	require.NoError(t, err)
	assert.Equal(t, file.ID, got.ID)
}

func TestAuthorizeWrite_RoleGrantAllows(t *testing.T) {
	userID := uuid.New()
	file := newTestFile(models.LinkNotShared)
	files := storeWith(file)
	roles := &fakeRoleStore{grants: map[uuid.UUID]PermissionSet{
		userID: NewPermissionSet(FileView, FileEdit),
	}}

	_, err := AuthorizeWrite(context.Background(), files, roles, AuthenticatedUser(userID), file.UUID, FileEdit)
	require.NoError(t, err)

	_, err = AuthorizeWrite(context.Background(), files, roles, AuthenticatedUser(userID), file.UUID, FileMove)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestRequireUser(t *testing.T) {
	assert.ErrorIs(t, RequireUser(Anonymous()), ErrNoToken)
	assert.NoError(t, RequireUser(AuthenticatedUser(uuid.New())))
}

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, 401, HTTPStatus(ErrNoToken))
	assert.Equal(t, 404, HTTPStatus(ErrFileNotFound))
	assert.Equal(t, 403, HTTPStatus(ErrPermissionDenied))
	assert.Equal(t, 410, HTTPStatus(ErrFileDeleted))
	assert.Equal(t, 500, HTTPStatus(errors.New("boom")))
}
