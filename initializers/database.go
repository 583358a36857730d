package initializers

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/filegrid/filegrid-backend/models"
)

var DB *gorm.DB

func ConnectToDatabase(log *zap.Logger) {
	if err := godotenv.Load(); err != nil {
		log.Warn("no .env file found, using system environment variables")
	}

	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal("DB_URL is not set in environment variables")
	}

	var err error
	DB, err = gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to the database", zap.Error(err))
	}

	if err := DB.AutoMigrate(
		&models.User{},
		&models.File{},
		&models.Team{},
		&models.TeamMember{},
		&models.UserFileRole{},
		&models.TeamFileRole{},
		&models.FileInvite{},
		&models.FileAuditEvent{},
	); err != nil {
		log.Fatal("failed to migrate database schema", zap.Error(err))
	}
	log.Info("database connected and migrated")
}
