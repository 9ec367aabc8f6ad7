package middleware

import (
	"errors"
	"net/http"

	"order-service/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const UserContextKey = "userID"
const IdentityContextKey = "identity"

// AuthMiddleware trusts the identity headers injected by the API gateway.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		uid, err := uuid.Parse(userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
			return
		}
		c.Set(UserContextKey, uid)
		c.Set(IdentityContextKey, models.UserIdentity{
			UserID: uid,
			Role:   c.GetHeader("X-User-Role"),
			Name:   c.GetHeader("X-User-Name"),
			Email:  c.GetHeader("X-User-Email"),
			Phone:  c.GetHeader("X-User-Phone"),
		})
		c.Next()
	}
}

// AdminOnly rejects requests whose gateway role header is not admin.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := GetIdentity(c)
		if err != nil || identity.Role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) (uuid.UUID, error) {
	if val, ok := c.Get(UserContextKey); ok {
		if id, ok := val.(uuid.UUID); ok {
			return id, nil
		}
	}
	return uuid.Nil, errors.New("user ID not found in context")
}

func GetIdentity(c *gin.Context) (models.UserIdentity, error) {
	if val, ok := c.Get(IdentityContextKey); ok {
		if id, ok := val.(models.UserIdentity); ok {
			return id, nil
		}
	}
	return models.UserIdentity{}, errors.New("identity not found in context")
}
