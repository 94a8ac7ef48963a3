package catalog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"kulinara/cache"
	"kulinara/models"
)

// CatalogModule serves the read-only reference data: tags and ingredients.
// Both are managed out of band and never change through the API, so list
// responses go through the response cache.
type CatalogModule struct {
	db *gorm.DB
}

func NewCatalogModule(db *gorm.DB) *CatalogModule {
	return &CatalogModule{db: db}
}

func (m *CatalogModule) RegisterRoutes(router *gin.Engine) {
	cached := cache.Middleware(5 * time.Minute)

	tagsGroup := router.Group("/api/tags")
	{
		tagsGroup.GET("/", cached, m.listTags)
		tagsGroup.GET("/:id/", m.retrieveTag)
	}

	ingredientsGroup := router.Group("/api/ingredients")
	{
		ingredientsGroup.GET("/", cached, m.listIngredients)
		ingredientsGroup.GET("/:id/", m.retrieveIngredient)
	}
}

func (m *CatalogModule) listTags(c *gin.Context) {
	var tags []models.Tag
	if err := m.db.Order("name").Find(&tags).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to load tags"})
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (m *CatalogModule) retrieveTag(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	var tag models.Tag
	if err := m.db.First(&tag, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (m *CatalogModule) listIngredients(c *gin.Context) {
	query := m.db.Order("name")

	// Prefix search on the ingredient name, case-insensitive.
	if name := c.Query("name"); name != "" {
		query = query.Where("LOWER(name) LIKE ?", strings.ToLower(name)+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to load ingredients"})
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (m *CatalogModule) retrieveIngredient(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	var ingredient models.Ingredient
	if err := m.db.First(&ingredient, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, ingredient)
}
