package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/filegrid/filegrid-backend/auth"
)

const UserIDKey = "userID"

// AuthOptional resolves the requester's identity without ever rejecting
// the request. A missing, malformed, or unverifiable credential just
// leaves the request anonymous; whether anonymity is acceptable is the
// access pipeline's decision, not the middleware's.
func AuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				if userID, err := auth.ValidateToken(parts[1]); err == nil {
					c.Set(UserIDKey, userID)
				}
			}
		}
		c.Next()
	}
}
