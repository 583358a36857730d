package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/filegrid/filegrid-backend/auth"
	"github.com/filegrid/filegrid-backend/models"
	"github.com/filegrid/filegrid-backend/store"
)

type UserHandler struct {
	users *store.UserStore
	log   *zap.Logger
}

func NewUserHandler(users *store.UserStore, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

type credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *UserHandler) Signup(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid input"}})
		return
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		h.log.Error("password hash failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Internal server error"}})
		return
	}

	if _, err := h.users.ByEmail(c.Request.Context(), body.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": gin.H{"message": "Email already registered"}})
		return
	} else if !errors.Is(err, store.ErrUserNotFound) {
		h.log.Error("email lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Internal server error"}})
		return
	}

	user := models.User{Email: body.Email, PasswordHash: string(hashBytes)}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		h.log.Error("user create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Internal server error"}})
		return
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		h.log.Error("token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Internal server error"}})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"accessToken": token})
}

func (h *UserHandler) Login(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid input"}})
		return
	}

	user, err := h.users.ByEmail(c.Request.Context(), body.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Invalid email or password"}})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Invalid email or password"}})
		return
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		h.log.Error("token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Internal server error"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": token})
}
