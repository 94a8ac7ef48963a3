package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"kulinara/common"
	"kulinara/models"
)

type AuthModule struct {
	db     *gorm.DB
	secret []byte
}

func NewAuthModule(db *gorm.DB, secret []byte) *AuthModule {
	return &AuthModule{db: db, secret: secret}
}

func (a *AuthModule) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/auth/token/login/", a.login)
	router.POST("/api/auth/token/logout/", a.RequireAuth, a.logout)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *AuthModule) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid request body"})
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "unable to log in with provided credentials"})
		return
	}

	if !CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "unable to log in with provided credentials"})
		return
	}

	token, err := GenerateToken(user.ID, a.secret)
	if err != nil {
		common.Log().Error("failed to sign token: " + err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"auth_token": token})
}

// logout is a no-op for stateless tokens; clients discard the token.
func (a *AuthModule) logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
