package jobs

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/filegrid/filegrid-backend/models"
	"github.com/filegrid/filegrid-backend/store"
)

type fakeThumbs struct {
	deleted []string
}

func (f *fakeThumbs) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	return nil
}

func (f *fakeThumbs) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func TestPurgeExpiredFiles(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.File{},
		&models.UserFileRole{},
		&models.TeamFileRole{},
		&models.FileInvite{},
	))

	owner := &models.User{Email: "owner@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(owner).Error)

	thumbKey := "thumbnails/abc.png"
	expired := &models.File{
		OwnerUserID:   owner.ID,
		CreatorUserID: owner.ID,
		Name:          "long_gone",
		ThumbnailKey:  &thumbKey,
	}
	require.NoError(t, db.Create(expired).Error)
	old := time.Now().Add(-purgeRetention - time.Hour)
	require.NoError(t, db.Model(expired).Update("deleted_at", old).Error)

	recent := &models.File{OwnerUserID: owner.ID, CreatorUserID: owner.ID, Name: "just_deleted"}
	require.NoError(t, db.Create(recent).Error)
	require.NoError(t, db.Model(recent).Update("deleted_at", time.Now()).Error)

	active := &models.File{OwnerUserID: owner.ID, CreatorUserID: owner.ID, Name: "active"}
	require.NoError(t, db.Create(active).Error)

	thumbs := &fakeThumbs{}
	purgeExpiredFiles(context.Background(), store.NewFileStore(db), thumbs, zap.NewNop())

	var count int64
	require.NoError(t, db.Model(&models.File{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, []string{thumbKey}, thumbs.deleted)

	var remaining []models.File
	require.NoError(t, db.Order("name asc").Find(&remaining).Error)
	assert.Equal(t, "active", remaining[0].Name)
	assert.Equal(t, "just_deleted", remaining[1].Name)
}
