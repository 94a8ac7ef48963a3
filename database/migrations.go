package database

import (
	"kulinara/common"
	"kulinara/models"

	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	common.Log().Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeTag{},
		&models.IngredientAmount{},
		&models.Favorite{},
		&models.ShoppingCart{},
		&models.Follow{},
	)

	if err != nil {
		common.Log().Error("Error running migrations: " + err.Error())
		return err
	}

	common.Log().Info("Migrations completed successfully")
	return nil
}
