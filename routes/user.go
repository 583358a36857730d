package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/filegrid/filegrid-backend/handlers"
)

func RegisterUserRoutes(r *gin.Engine, h *handlers.UserHandler) {
	users := r.Group("/v0/users")
	users.POST("/signup", h.Signup)
	users.POST("/login", h.Login)
}
