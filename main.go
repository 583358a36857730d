package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/filegrid/filegrid-backend/auth/middleware"
	"github.com/filegrid/filegrid-backend/handlers"
	"github.com/filegrid/filegrid-backend/initializers"
	"github.com/filegrid/filegrid-backend/jobs"
	"github.com/filegrid/filegrid-backend/routes"
	"github.com/filegrid/filegrid-backend/storage"
	"github.com/filegrid/filegrid-backend/store"
)

const defaultPort = "8080"

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	initializers.ConnectToDatabase(log)

	thumbs, err := storage.NewS3Storage(context.Background())
	if err != nil {
		log.Fatal("S3 storage init failed", zap.Error(err))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	publicBaseURL := os.Getenv("PUBLIC_BASE_URL")
	if publicBaseURL == "" {
		publicBaseURL = "http://localhost:" + port
	}

	files := store.NewFileStore(initializers.DB)
	roles := store.NewRoleStore(initializers.DB)
	users := store.NewUserStore(initializers.DB)

	fileHandler := handlers.NewFileHandler(files, roles, users, thumbs, publicBaseURL, log)
	userHandler := handlers.NewUserHandler(users, log)

	jobs.StartPurgeJob(files, thumbs, log)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	limiter := middleware.NewRateLimiter(rate.Every(time.Second), 5)
	router.Use(
		limiter.Middleware(),
		middleware.AuthOptional(),
	)

	routes.RegisterFileRoutes(router, fileHandler)
	routes.RegisterUserRoutes(router, userHandler)

	log.Info("listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
