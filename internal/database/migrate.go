package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/IstyxI/foodgram/internal/models"
)

// RunMigrations creates the schema from the model declarations. All
// invariants live in the models as constraint tags: composite unique
// indexes for membership sets and ingredient identity, and ON DELETE
// CASCADE on every table referencing users or recipes.
func RunMigrations(db *gorm.DB) error {
	// The tag join table is declared explicitly so its foreign keys
	// cascade like the rest of the dependent tables.
	if err := db.SetupJoinTable(&models.Recipe{}, "Tags", &models.RecipeTag{}); err != nil {
		return fmt.Errorf("failed to set up recipe_tags join table: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCart{},
		&models.Follow{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Printf("Database schema is up to date")
	return nil
}
