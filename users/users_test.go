package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kulinara/auth"
	"kulinara/models"
)

var testSecret = []byte("secret")

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.AutoMigrate(
		&models.User{}, &models.Recipe{}, &models.Follow{},
		&models.Favorite{}, &models.ShoppingCart{},
	)
	return db
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	authModule := auth.NewAuthModule(db, testSecret)
	userModule := NewUserModule(db, authModule)
	userModule.RegisterRoutes(router)
	return router
}

func createTestUser(db *gorm.DB, username string) *models.User {
	hash, _ := auth.HashPassword("password123")
	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: hash,
	}
	db.Create(user)
	return user
}

func authHeader(user *models.User) string {
	token, _ := auth.GenerateToken(user.ID, testSecret)
	return "Bearer " + token
}

func doJSON(router *gin.Engine, method, path string, payload gin.H, user *models.User) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, body)
	if user != nil {
		req.Header.Set("Authorization", authHeader(user))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateUser_Success(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)

	w := doJSON(router, "POST", "/api/users/", gin.H{
		"username":   "alice",
		"email":      "a@x.com",
		"password":   "Str0ngPass!",
		"first_name": "A",
		"last_name":  "B",
	}, nil)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.NotZero(t, response["id"])
	assert.Equal(t, "alice", response["username"])
	assert.NotContains(t, response, "password")

	var saved models.User
	assert.NoError(t, db.Where("username = ?", "alice").First(&saved).Error)
	assert.NotEqual(t, "Str0ngPass!", saved.PasswordHash)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)

	payload := gin.H{
		"username":   "alice",
		"email":      "a@x.com",
		"password":   "Str0ngPass!",
		"first_name": "A",
		"last_name":  "B",
	}
	w := doJSON(router, "POST", "/api/users/", payload, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	payload["email"] = "other@x.com"
	w = doJSON(router, "POST", "/api/users/", payload, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateUser_ReservedUsername(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)

	w := doJSON(router, "POST", "/api/users/", gin.H{
		"username":   "me",
		"email":      "me@x.com",
		"password":   "Str0ngPass!",
		"first_name": "A",
		"last_name":  "B",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string][]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.NotEmpty(t, response["username"])
}

func TestCreateUser_InvalidUsernamePattern(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)

	w := doJSON(router, "POST", "/api/users/", gin.H{
		"username":   "bad name!",
		"email":      "bad@x.com",
		"password":   "Str0ngPass!",
		"first_name": "A",
		"last_name":  "B",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateUser_ShortPassword(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)

	w := doJSON(router, "POST", "/api/users/", gin.H{
		"username":   "bob",
		"email":      "bob@x.com",
		"password":   "short",
		"first_name": "A",
		"last_name":  "B",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMe_RequiresAuth(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)

	w := doJSON(router, "GET", "/api/users/me/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe_Success(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)
	user := createTestUser(db, "carol")

	w := doJSON(router, "GET", "/api/users/me/", nil, user)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "carol", response["username"])
}

func TestListUsers_Paginated(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)

	for i := 0; i < 8; i++ {
		createTestUser(db, fmt.Sprintf("user%d", i))
	}

	w := doJSON(router, "GET", "/api/users/?limit=3&page=2", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(8), response["count"])
	assert.Len(t, response["results"], 3)
	assert.NotNil(t, response["next"])
	assert.NotNil(t, response["previous"])
}

func TestSetPassword_WrongCurrent(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)
	user := createTestUser(db, "dave")

	w := doJSON(router, "POST", "/api/users/set_password/", gin.H{
		"current_password": "wrongpass",
		"new_password":     "newpassword1",
	}, user)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetPassword_SameAsCurrent(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)
	user := createTestUser(db, "dave")

	w := doJSON(router, "POST", "/api/users/set_password/", gin.H{
		"current_password": "password123",
		"new_password":     "password123",
	}, user)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetPassword_Success(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)
	user := createTestUser(db, "dave")

	w := doJSON(router, "POST", "/api/users/set_password/", gin.H{
		"current_password": "password123",
		"new_password":     "newpassword1",
	}, user)

	assert.Equal(t, http.StatusNoContent, w.Code)

	var saved models.User
	db.First(&saved, user.ID)
	assert.True(t, auth.CheckPasswordHash("newpassword1", saved.PasswordHash))
}

func TestSubscribe_Self(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)
	user := createTestUser(db, "erin")

	w := doJSON(router, "POST", fmt.Sprintf("/api/users/%d/subscribe/", user.ID), nil, user)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscribe_Success(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)
	user := createTestUser(db, "erin")
	author := createTestUser(db, "frank")

	db.Create(&models.Recipe{AuthorID: author.ID, Name: "Soup", Text: "boil", Image: "/media/x.png", CookingTime: 10})

	w := doJSON(router, "POST", fmt.Sprintf("/api/users/%d/subscribe/", author.ID), nil, user)
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, true, response["is_subscribed"])
	assert.Equal(t, float64(1), response["recipes_count"])
	assert.Len(t, response["recipes"], 1)
}

func TestSubscribe_Duplicate(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)
	user := createTestUser(db, "erin")
	author := createTestUser(db, "frank")

	w := doJSON(router, "POST", fmt.Sprintf("/api/users/%d/subscribe/", author.ID), nil, user)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "POST", fmt.Sprintf("/api/users/%d/subscribe/", author.ID), nil, user)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnsubscribe_NotSubscribed(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)
	user := createTestUser(db, "erin")
	author := createTestUser(db, "frank")

	w := doJSON(router, "DELETE", fmt.Sprintf("/api/users/%d/subscribe/", author.ID), nil, user)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnsubscribe_Success(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)
	user := createTestUser(db, "erin")
	author := createTestUser(db, "frank")
	db.Create(&models.Follow{UserID: user.ID, AuthorID: author.ID})

	w := doJSON(router, "DELETE", fmt.Sprintf("/api/users/%d/subscribe/", author.ID), nil, user)
	assert.Equal(t, http.StatusNoContent, w.Code)

	var count int64
	db.Model(&models.Follow{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSubscriptions_List(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)
	user := createTestUser(db, "erin")
	first := createTestUser(db, "frank")
	second := createTestUser(db, "grace")
	db.Create(&models.Follow{UserID: user.ID, AuthorID: first.ID})
	db.Create(&models.Follow{UserID: user.ID, AuthorID: second.ID})

	for i := 0; i < 5; i++ {
		db.Create(&models.Recipe{AuthorID: first.ID, Name: fmt.Sprintf("Dish %d", i), Text: "t", Image: "/media/x.png", CookingTime: 5})
	}

	w := doJSON(router, "GET", "/api/users/subscriptions/?recipes_limit=2", nil, user)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(2), response["count"])

	results := response["results"].([]interface{})
	assert.Len(t, results, 2)

	frank := results[0].(map[string]interface{})
	assert.Equal(t, "frank", frank["username"])
	assert.Equal(t, float64(5), frank["recipes_count"])
	assert.Len(t, frank["recipes"], 2)
}

func TestRetrieveUser_NotFound(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)

	w := doJSON(router, "GET", "/api/users/999/", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRetrieveUser_IsSubscribedFlag(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(db)
	user := createTestUser(db, "erin")
	author := createTestUser(db, "frank")
	db.Create(&models.Follow{UserID: user.ID, AuthorID: author.ID})

	w := doJSON(router, "GET", fmt.Sprintf("/api/users/%d/", author.ID), nil, user)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, true, response["is_subscribed"])

	// anonymous requests always see false
	w = doJSON(router, "GET", fmt.Sprintf("/api/users/%d/", author.ID), nil, nil)
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, false, response["is_subscribed"])
}
