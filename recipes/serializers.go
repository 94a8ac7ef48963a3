package recipes

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"kulinara/models"
	"kulinara/users"
)

const (
	minCookingTime = 1
	maxCookingTime = 300
	minAmount      = 1
	maxAmount      = 100
)

type ingredientAmountRequest struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

type recipeWriteRequest struct {
	Ingredients []ingredientAmountRequest `json:"ingredients"`
	Tags        []int                     `json:"tags"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	CookingTime int                       `json:"cooking_time"`
}

func (r *recipeWriteRequest) validate(db *gorm.DB, imageRequired bool) users.ValidationErrors {
	errs := users.ValidationErrors{}

	if r.Name == "" {
		errs["name"] = append(errs["name"], "This field is required.")
	} else if len(r.Name) > 200 {
		errs["name"] = append(errs["name"], "Ensure this field has no more than 200 characters.")
	}
	if r.Text == "" {
		errs["text"] = append(errs["text"], "This field is required.")
	}
	if r.CookingTime < minCookingTime || r.CookingTime > maxCookingTime {
		errs["cooking_time"] = append(errs["cooking_time"], "Cooking time must be between 1 and 300 minutes.")
	}
	if imageRequired && r.Image == "" {
		errs["image"] = append(errs["image"], "This field is required.")
	}

	if len(r.Tags) == 0 {
		errs["tags"] = append(errs["tags"], "At least one tag is required.")
	} else {
		seen := map[int]bool{}
		for _, tagID := range r.Tags {
			if seen[tagID] {
				errs["tags"] = append(errs["tags"], "Tags must be unique.")
				break
			}
			seen[tagID] = true
		}
		var count int64
		db.Model(&models.Tag{}).Where("id IN ?", r.Tags).Count(&count)
		if count != int64(len(seen)) {
			errs["tags"] = append(errs["tags"], "One of the tags does not exist.")
		}
	}

	if len(r.Ingredients) == 0 {
		errs["ingredients"] = append(errs["ingredients"], "At least one ingredient is required.")
	} else {
		seen := map[int]bool{}
		ids := make([]int, 0, len(r.Ingredients))
		for _, ingredient := range r.Ingredients {
			if seen[ingredient.ID] {
				errs["ingredients"] = append(errs["ingredients"], "Ingredients must be unique.")
				break
			}
			seen[ingredient.ID] = true
			ids = append(ids, ingredient.ID)
			if ingredient.Amount < minAmount || ingredient.Amount > maxAmount {
				errs["ingredients"] = append(errs["ingredients"], "Amount must be between 1 and 100.")
				break
			}
		}
		if len(errs["ingredients"]) == 0 {
			var count int64
			db.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count)
			if count != int64(len(seen)) {
				errs["ingredients"] = append(errs["ingredients"], "One of the ingredients does not exist.")
			}
		}
	}

	return errs
}

// decodeBase64Image splits a data URI ("data:image/png;base64,...") into the
// raw bytes, file extension and content type.
func decodeBase64Image(data string) ([]byte, string, string, error) {
	if !strings.HasPrefix(data, "data:image") {
		return nil, "", "", errors.New("expected a base64-encoded data URI")
	}

	header, encoded, found := strings.Cut(data, ";base64,")
	if !found {
		return nil, "", "", errors.New("expected a base64-encoded data URI")
	}

	contentType := strings.TrimPrefix(header, "data:")
	ext := contentType[strings.LastIndex(contentType, "/")+1:]

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", "", errors.New("invalid base64 image payload")
	}
	return decoded, ext, contentType, nil
}

type recipeIngredientRow struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse is the full read shape: nested author, expanded tags and
// ingredients, and the two per-requester membership booleans.
func RecipeResponse(db *gorm.DB, recipe *models.Recipe, requester *models.User) gin.H {
	var author models.User
	db.First(&author, recipe.AuthorID)

	var tags []models.Tag
	db.Joins("JOIN recipe_tags ON recipe_tags.tag_id = tags.id").
		Where("recipe_tags.recipe_id = ?", recipe.ID).
		Order("tags.name").
		Find(&tags)

	var ingredients []recipeIngredientRow
	db.Table("ingredient_amounts").
		Select("ingredients.id, ingredients.name, ingredients.measurement_unit, ingredient_amounts.amount").
		Joins("JOIN ingredients ON ingredients.id = ingredient_amounts.ingredient_id").
		Where("ingredient_amounts.recipe_id = ?", recipe.ID).
		Order("ingredients.name").
		Scan(&ingredients)
	if ingredients == nil {
		ingredients = []recipeIngredientRow{}
	}
	if tags == nil {
		tags = []models.Tag{}
	}

	return gin.H{
		"id":                  recipe.ID,
		"tags":                tags,
		"author":              users.UserResponse(db, &author, requester),
		"ingredients":         ingredients,
		"is_favorited":        inRelation(db, &models.Favorite{}, requester, recipe.ID),
		"is_in_shopping_cart": inRelation(db, &models.ShoppingCart{}, requester, recipe.ID),
		"name":                recipe.Name,
		"image":               recipe.Image,
		"text":                recipe.Text,
		"cooking_time":        recipe.CookingTime,
	}
}

// ShortRecipeResponse is the compact shape used by favorites, carts and
// subscription listings.
func ShortRecipeResponse(recipe *models.Recipe) gin.H {
	return gin.H{
		"id":           recipe.ID,
		"name":         recipe.Name,
		"image":        recipe.Image,
		"cooking_time": recipe.CookingTime,
	}
}

func inRelation(db *gorm.DB, model interface{}, requester *models.User, recipeID int) bool {
	if requester == nil {
		return false
	}
	var count int64
	db.Model(model).
		Where("user_id = ? AND recipe_id = ?", requester.ID, recipeID).
		Count(&count)
	return count > 0
}
