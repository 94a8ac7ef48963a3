package users

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"kulinara/auth"
	"kulinara/common"
	"kulinara/models"
)

type UserModule struct {
	db   *gorm.DB
	auth *auth.AuthModule
}

func NewUserModule(db *gorm.DB, authModule *auth.AuthModule) *UserModule {
	return &UserModule{db: db, auth: authModule}
}

// RegisterRoutes wires the user endpoints. gin cannot mix static and param
// segments at the same position, so "me", "subscriptions" and "set_password"
// are dispatched inside the :id handlers.
func (u *UserModule) RegisterRoutes(router *gin.Engine) {
	usersGroup := router.Group("/api/users")
	{
		usersGroup.GET("/", u.auth.OptionalAuth, u.list)
		usersGroup.POST("/", u.create)
		usersGroup.GET("/:id/", u.auth.OptionalAuth, u.retrieveDispatch)
		usersGroup.PATCH("/:id/", u.auth.RequireAuth, u.patchDispatch)
		usersGroup.POST("/:id/", u.auth.RequireAuth, u.postDispatch)
		usersGroup.POST("/:id/subscribe/", u.auth.RequireAuth, u.subscribe)
		usersGroup.DELETE("/:id/subscribe/", u.auth.RequireAuth, u.unsubscribe)
	}
}

func (u *UserModule) create(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid request body"})
		return
	}

	if errs := req.validate(u.db); !errs.Empty() {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to create account"})
		return
	}

	user := models.User{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: passwordHash,
	}

	if err := u.db.Create(&user).Error; err != nil {
		// A concurrent signup can still hit the unique constraints.
		c.JSON(http.StatusBadRequest, gin.H{"errors": "a user with this username or email already exists"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	})
}

func (u *UserModule) list(c *gin.Context) {
	requester, _ := auth.CurrentUser(c)
	page := common.PageFromQuery(c)

	var count int64
	u.db.Model(&models.User{}).Count(&count)

	var users []models.User
	if err := u.db.Order("username").
		Offset(page.Offset()).Limit(page.Size).
		Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to load users"})
		return
	}

	results := make([]gin.H, 0, len(users))
	for i := range users {
		results = append(results, UserResponse(u.db, &users[i], requester))
	}

	c.JSON(http.StatusOK, common.Paginated(c, page, count, results))
}

func (u *UserModule) retrieveDispatch(c *gin.Context) {
	switch c.Param("id") {
	case "me":
		u.me(c)
	case "subscriptions":
		u.subscriptions(c)
	default:
		u.retrieve(c)
	}
}

func (u *UserModule) patchDispatch(c *gin.Context) {
	if c.Param("id") != "me" {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	u.updateMe(c)
}

func (u *UserModule) postDispatch(c *gin.Context) {
	if c.Param("id") != "set_password" {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	u.setPassword(c)
}

func (u *UserModule) retrieve(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	var user models.User
	if err := u.db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	requester, _ := auth.CurrentUser(c)
	c.JSON(http.StatusOK, UserResponse(u.db, &user, requester))
}

func (u *UserModule) me(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
		return
	}
	c.JSON(http.StatusOK, UserResponse(u.db, user, user))
}

type updateMeRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (u *UserModule) updateMe(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid request body"})
		return
	}

	errs := ValidationErrors{}
	if req.FirstName != nil {
		if *req.FirstName == "" || len(*req.FirstName) > 150 {
			errs.add("first_name", "Ensure this field is between 1 and 150 characters.")
		} else {
			user.FirstName = *req.FirstName
		}
	}
	if req.LastName != nil {
		if *req.LastName == "" || len(*req.LastName) > 150 {
			errs.add("last_name", "Ensure this field is between 1 and 150 characters.")
		} else {
			user.LastName = *req.LastName
		}
	}
	if !errs.Empty() {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	if err := u.db.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, UserResponse(u.db, user, user))
}

type setPasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (u *UserModule) setPassword(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	var req setPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid request body"})
		return
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		c.JSON(http.StatusBadRequest, gin.H{"current_password": []string{"Wrong password."}})
		return
	}
	if msg := validatePassword(req.NewPassword); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"new_password": []string{msg}})
		return
	}
	if req.NewPassword == req.CurrentPassword {
		c.JSON(http.StatusBadRequest, gin.H{"new_password": []string{"New password matches the current one."}})
		return
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to update password"})
		return
	}

	user.PasswordHash = passwordHash
	if err := u.db.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to update password"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (u *UserModule) subscribe(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	var author models.User
	if err := u.db.First(&author, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	if author.ID == user.ID {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "you cannot subscribe to yourself"})
		return
	}

	var count int64
	u.db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", user.ID, author.ID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "you are already subscribed to this author"})
		return
	}

	follow := models.Follow{UserID: user.ID, AuthorID: author.ID}
	if err := u.db.Create(&follow).Error; err != nil {
		// Concurrent subscribe loses to the unique (user, author) index.
		c.JSON(http.StatusBadRequest, gin.H{"errors": "you are already subscribed to this author"})
		return
	}

	c.JSON(http.StatusCreated, SubscriptionResponse(u.db, &author, user, recipesLimit(c)))
}

func (u *UserModule) unsubscribe(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	var author models.User
	if err := u.db.First(&author, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	result := u.db.Where("user_id = ? AND author_id = ?", user.ID, author.ID).
		Delete(&models.Follow{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to unsubscribe"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "you are not subscribed to this author"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (u *UserModule) subscriptions(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
		return
	}

	page := common.PageFromQuery(c)

	var count int64
	u.db.Model(&models.Follow{}).Where("user_id = ?", user.ID).Count(&count)

	var authors []models.User
	if err := u.db.
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", user.ID).
		Order("users.username").
		Offset(page.Offset()).Limit(page.Size).
		Find(&authors).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to load subscriptions"})
		return
	}

	limit := recipesLimit(c)
	results := make([]gin.H, 0, len(authors))
	for i := range authors {
		results = append(results, SubscriptionResponse(u.db, &authors[i], user, limit))
	}

	c.JSON(http.StatusOK, common.Paginated(c, page, count, results))
}

func recipesLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
