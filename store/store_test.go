package store

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/filegrid/filegrid-backend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.File{},
		&models.Team{},
		&models.TeamMember{},
		&models.UserFileRole{},
		&models.TeamFileRole{},
		&models.FileInvite{},
		&models.FileAuditEvent{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestFile(t *testing.T, db *gorm.DB, owner *models.User, name string, link models.PublicLinkAccess) *models.File {
	t.Helper()
	file := &models.File{
		OwnerUserID:      owner.ID,
		CreatorUserID:    owner.ID,
		Name:             name,
		Contents:         []byte("contents"),
		PublicLinkAccess: link,
	}
	require.NoError(t, db.Create(file).Error)
	return file
}
