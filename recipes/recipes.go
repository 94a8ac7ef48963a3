package recipes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kulinara/auth"
	"kulinara/common"
	"kulinara/models"
	"kulinara/storage"
)

type RecipeModule struct {
	db      *gorm.DB
	auth    *auth.AuthModule
	storage storage.ImageStorage
}

func NewRecipeModule(db *gorm.DB, authModule *auth.AuthModule, imageStorage storage.ImageStorage) *RecipeModule {
	return &RecipeModule{
		db:      db,
		auth:    authModule,
		storage: imageStorage,
	}
}

// RegisterRoutes wires the recipe endpoints. "download_shopping_cart" shares
// the :id position and is dispatched inside the GET handler.
func (r *RecipeModule) RegisterRoutes(router *gin.Engine) {
	recipesGroup := router.Group("/api/recipes")
	{
		recipesGroup.GET("/", r.auth.OptionalAuth, r.list)
		recipesGroup.POST("/", r.auth.RequireAuth, r.create)
		recipesGroup.GET("/:id/", r.auth.OptionalAuth, r.retrieveDispatch)
		recipesGroup.PATCH("/:id/", r.auth.RequireAuth, r.update)
		recipesGroup.DELETE("/:id/", r.auth.RequireAuth, r.delete)
		recipesGroup.POST("/:id/favorite/", r.auth.RequireAuth, r.addFavorite)
		recipesGroup.DELETE("/:id/favorite/", r.auth.RequireAuth, r.removeFavorite)
		recipesGroup.POST("/:id/shopping_cart/", r.auth.RequireAuth, r.addToCart)
		recipesGroup.DELETE("/:id/shopping_cart/", r.auth.RequireAuth, r.removeFromCart)
	}
}

func (r *RecipeModule) list(c *gin.Context) {
	requester, _ := auth.CurrentUser(c)
	page := common.PageFromQuery(c)

	query := r.db.Model(&models.Recipe{})

	if author := c.Query("author"); author != "" {
		query = query.Where("author_id = ?", author)
	}
	if tags := c.QueryArray("tags"); len(tags) > 0 {
		query = query.Where("recipes.id IN (?)",
			r.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", tags))
	}
	if c.Query("is_favorited") == "1" && requester != nil {
		query = query.Where("recipes.id IN (?)",
			r.db.Table("favorites").Select("recipe_id").Where("user_id = ?", requester.ID))
	}
	if c.Query("is_in_shopping_cart") == "1" && requester != nil {
		query = query.Where("recipes.id IN (?)",
			r.db.Table("shopping_carts").Select("recipe_id").Where("user_id = ?", requester.ID))
	}

	var count int64
	query.Count(&count)

	var recipes []models.Recipe
	if err := query.Order("pub_date DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&recipes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to load recipes"})
		return
	}

	results := make([]gin.H, 0, len(recipes))
	for i := range recipes {
		results = append(results, RecipeResponse(r.db, &recipes[i], requester))
	}

	c.JSON(http.StatusOK, common.Paginated(c, page, count, results))
}

func (r *RecipeModule) retrieveDispatch(c *gin.Context) {
	if c.Param("id") == "download_shopping_cart" {
		r.downloadShoppingCart(c)
		return
	}
	r.retrieve(c)
}

func (r *RecipeModule) retrieve(c *gin.Context) {
	recipe, ok := r.findRecipe(c)
	if !ok {
		return
	}
	requester, _ := auth.CurrentUser(c)
	c.JSON(http.StatusOK, RecipeResponse(r.db, recipe, requester))
}

func (r *RecipeModule) create(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	var req recipeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid request body"})
		return
	}

	if errs := req.validate(r.db, true); !errs.Empty() {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	imageURL, ok := r.saveImage(c, req.Image)
	if !ok {
		return
	}

	recipe := models.Recipe{
		AuthorID:    user.ID,
		Name:        req.Name,
		Text:        req.Text,
		Image:       imageURL,
		CookingTime: req.CookingTime,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		return writeRelations(tx, recipe.ID, req)
	})
	if err != nil {
		common.Log().Error("recipe create failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"errors": "failed to create recipe"})
		return
	}

	c.JSON(http.StatusCreated, RecipeResponse(r.db, &recipe, user))
}

func (r *RecipeModule) update(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	recipe, ok := r.findRecipe(c)
	if !ok {
		return
	}
	if recipe.AuthorID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
		return
	}

	var req recipeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid request body"})
		return
	}

	// Image is optional on update; the stored one is kept when absent.
	if errs := req.validate(r.db, false); !errs.Empty() {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	if req.Image != "" {
		imageURL, ok := r.saveImage(c, req.Image)
		if !ok {
			return
		}
		recipe.Image = imageURL
	}

	recipe.Name = req.Name
	recipe.Text = req.Text
	recipe.CookingTime = req.CookingTime

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientAmount{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		if err := writeRelations(tx, recipe.ID, req); err != nil {
			return err
		}
		return tx.Save(recipe).Error
	})
	if err != nil {
		common.Log().Error("recipe update failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"errors": "failed to update recipe"})
		return
	}

	c.JSON(http.StatusOK, RecipeResponse(r.db, recipe, user))
}

func (r *RecipeModule) delete(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	recipe, ok := r.findRecipe(c)
	if !ok {
		return
	}
	if recipe.AuthorID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
		return
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{
			&models.IngredientAmount{}, &models.RecipeTag{},
			&models.Favorite{}, &models.ShoppingCart{},
		} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(dependent).Error; err != nil {
				return err
			}
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		common.Log().Error("recipe delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to delete recipe"})
		return
	}

	c.Status(http.StatusNoContent)
}

// writeRelations inserts the ingredient-amount rows and tag links for a
// recipe. Callers run it inside a transaction.
func writeRelations(tx *gorm.DB, recipeID int, req recipeWriteRequest) error {
	for _, ingredient := range req.Ingredients {
		amount := models.IngredientAmount{
			RecipeID:     recipeID,
			IngredientID: ingredient.ID,
			Amount:       ingredient.Amount,
		}
		if err := tx.Create(&amount).Error; err != nil {
			return err
		}
	}
	for _, tagID := range req.Tags {
		link := models.RecipeTag{RecipeID: recipeID, TagID: tagID}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *RecipeModule) saveImage(c *gin.Context, data string) (string, bool) {
	decoded, ext, contentType, err := decodeBase64Image(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"image": []string{err.Error()}})
		return "", false
	}

	url, err := r.storage.Save(c.Request.Context(), storage.RandomKey("recipes", ext), decoded, contentType)
	if err != nil {
		common.Log().Error("image upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to store image"})
		return "", false
	}
	return url, true
}

func (r *RecipeModule) addFavorite(c *gin.Context) {
	r.addRelation(c, "favorite")
}

func (r *RecipeModule) removeFavorite(c *gin.Context) {
	r.removeRelation(c, "favorite")
}

func (r *RecipeModule) addToCart(c *gin.Context) {
	r.addRelation(c, "shopping_cart")
}

func (r *RecipeModule) removeFromCart(c *gin.Context) {
	r.removeRelation(c, "shopping_cart")
}

func (r *RecipeModule) addRelation(c *gin.Context, relation string) {
	user, _ := auth.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "recipe does not exist"})
		return
	}

	var recipe models.Recipe
	if err := r.db.First(&recipe, id).Error; err != nil {
		// Adding a non-existent recipe is a validation error, not a 404.
		c.JSON(http.StatusBadRequest, gin.H{"errors": "recipe does not exist"})
		return
	}

	var count int64
	r.db.Model(relationModel(relation)).
		Where("user_id = ? AND recipe_id = ?", user.ID, recipe.ID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": alreadyMessage(relation)})
		return
	}

	var createErr error
	if relation == "favorite" {
		createErr = r.db.Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error
	} else {
		createErr = r.db.Create(&models.ShoppingCart{UserID: user.ID, RecipeID: recipe.ID}).Error
	}
	if createErr != nil {
		// Concurrent adds lose to the unique (user, recipe) index.
		c.JSON(http.StatusBadRequest, gin.H{"errors": alreadyMessage(relation)})
		return
	}

	c.JSON(http.StatusCreated, ShortRecipeResponse(&recipe))
}

func (r *RecipeModule) removeRelation(c *gin.Context, relation string) {
	user, _ := auth.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	var recipe models.Recipe
	if err := r.db.First(&recipe, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	result := r.db.Where("user_id = ? AND recipe_id = ?", user.ID, recipe.ID).
		Delete(relationModel(relation))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to remove recipe"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": missingMessage(relation)})
		return
	}

	c.Status(http.StatusNoContent)
}

func relationModel(relation string) interface{} {
	if relation == "favorite" {
		return &models.Favorite{}
	}
	return &models.ShoppingCart{}
}

func alreadyMessage(relation string) string {
	if relation == "favorite" {
		return "recipe is already in favorites"
	}
	return "recipe is already in the shopping cart"
}

func missingMessage(relation string) string {
	if relation == "favorite" {
		return "recipe is not in favorites"
	}
	return "recipe is not in the shopping cart"
}

func (r *RecipeModule) findRecipe(c *gin.Context) (*models.Recipe, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return nil, false
	}

	var recipe models.Recipe
	if err := r.db.First(&recipe, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return nil, false
	}
	return &recipe, true
}
