package recipes

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kulinara/auth"
	"kulinara/models"
)

type shoppingListItem struct {
	Name            string
	MeasurementUnit string
	Total           int
}

// downloadShoppingCart aggregates the cart ingredients by (name, unit), sums
// the amounts and streams the result as a plain-text attachment.
func (r *RecipeModule) downloadShoppingCart(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
		return
	}

	var cartSize int64
	r.db.Model(&models.ShoppingCart{}).Where("user_id = ?", user.ID).Count(&cartSize)
	if cartSize == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "the shopping cart is empty"})
		return
	}

	var items []shoppingListItem
	err := r.db.Table("ingredient_amounts").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredient_amounts.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = ingredient_amounts.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = ingredient_amounts.recipe_id").
		Where("shopping_carts.user_id = ?", user.ID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&items).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "failed to build the shopping list"})
		return
	}

	filename := fmt.Sprintf("%s_shopping_list.txt", user.Username)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(renderShoppingList(user.Username, items)))
}

func renderShoppingList(username string, items []shoppingListItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list for: %s\n\n", username)
	for _, item := range items {
		fmt.Fprintf(&b, "- %s (%s) - %d\n", item.Name, item.MeasurementUnit, item.Total)
	}
	return b.String()
}
