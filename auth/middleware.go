package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kulinara/models"
)

const currentUserKey = "current_user"

// RequireAuth rejects requests without a valid Bearer token.
func (a *AuthModule) RequireAuth(c *gin.Context) {
	user, ok := a.resolveUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
		c.Abort()
		return
	}

	c.Set(currentUserKey, user)
	c.Next()
}

// OptionalAuth resolves the current user when a valid token is present and
// lets anonymous requests through.
func (a *AuthModule) OptionalAuth(c *gin.Context) {
	if user, ok := a.resolveUser(c); ok {
		c.Set(currentUserKey, user)
	}
	c.Next()
}

func (a *AuthModule) resolveUser(c *gin.Context) (*models.User, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	claims, err := ValidateToken(tokenString, a.secret)
	if err != nil {
		return nil, false
	}

	var user models.User
	if err := a.db.First(&user, claims.UserID).Error; err != nil {
		return nil, false
	}
	return &user, true
}

// CurrentUser returns the authenticated user stored by the auth middleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
