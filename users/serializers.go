package users

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"kulinara/models"
)

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidationErrors maps field names to human-readable messages, matching the
// field-keyed 400 bodies of the public API.
type ValidationErrors map[string][]string

func (v ValidationErrors) add(field, message string) {
	v[field] = append(v[field], message)
}

func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

type signupRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

func (r *signupRequest) validate(db *gorm.DB) ValidationErrors {
	errs := ValidationErrors{}

	switch {
	case r.Email == "":
		errs.add("email", "This field is required.")
	case len(r.Email) > 254:
		errs.add("email", "Ensure this field has no more than 254 characters.")
	case !emailRe.MatchString(r.Email):
		errs.add("email", "Enter a valid email address.")
	default:
		var count int64
		db.Model(&models.User{}).Where("email = ?", r.Email).Count(&count)
		if count > 0 {
			errs.add("email", "A user with this email already exists.")
		}
	}

	switch {
	case r.Username == "":
		errs.add("username", "This field is required.")
	case len(r.Username) > 150:
		errs.add("username", "Ensure this field has no more than 150 characters.")
	case !usernameRe.MatchString(r.Username):
		errs.add("username", "Enter a valid username. Letters, digits and @/./+/-/_ only.")
	case strings.EqualFold(r.Username, "me"):
		errs.add("username", "Username 'me' is reserved.")
	default:
		var count int64
		db.Model(&models.User{}).Where("username = ?", r.Username).Count(&count)
		if count > 0 {
			errs.add("username", "A user with this username already exists.")
		}
	}

	if r.FirstName == "" {
		errs.add("first_name", "This field is required.")
	} else if len(r.FirstName) > 150 {
		errs.add("first_name", "Ensure this field has no more than 150 characters.")
	}
	if r.LastName == "" {
		errs.add("last_name", "This field is required.")
	} else if len(r.LastName) > 150 {
		errs.add("last_name", "Ensure this field has no more than 150 characters.")
	}

	if msg := validatePassword(r.Password); msg != "" {
		errs.add("password", msg)
	}

	return errs
}

func validatePassword(password string) string {
	switch {
	case password == "":
		return "This field is required."
	case len(password) < 8:
		return "This password is too short. It must contain at least 8 characters."
	case len(password) > 150:
		return "Ensure this field has no more than 150 characters."
	}
	return ""
}

// UserResponse is the public user shape. is_subscribed is computed against
// the requesting user and is always false for anonymous requests.
func UserResponse(db *gorm.DB, user *models.User, requester *models.User) gin.H {
	return gin.H{
		"id":            user.ID,
		"email":         user.Email,
		"username":      user.Username,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"is_subscribed": isSubscribed(db, requester, user.ID),
	}
}

func isSubscribed(db *gorm.DB, requester *models.User, authorID int) bool {
	if requester == nil {
		return false
	}
	var count int64
	db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", requester.ID, authorID).
		Count(&count)
	return count > 0
}

// SubscriptionResponse is the followed-author shape: the user shape plus the
// author's recipes (short form, optionally capped) and their total count.
func SubscriptionResponse(db *gorm.DB, author *models.User, requester *models.User, recipesLimit int) gin.H {
	var recipes []models.Recipe
	query := db.Where("author_id = ?", author.ID).Order("pub_date DESC")
	if recipesLimit > 0 {
		query = query.Limit(recipesLimit)
	}
	query.Find(&recipes)

	var count int64
	db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&count)

	shortRecipes := make([]gin.H, 0, len(recipes))
	for i := range recipes {
		shortRecipes = append(shortRecipes, gin.H{
			"id":           recipes[i].ID,
			"name":         recipes[i].Name,
			"image":        recipes[i].Image,
			"cooking_time": recipes[i].CookingTime,
		})
	}

	response := UserResponse(db, author, requester)
	response["recipes"] = shortRecipes
	response["recipes_count"] = count
	return response
}
