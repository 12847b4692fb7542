package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/IstyxI/foodgram/internal/database"
	"github.com/IstyxI/foodgram/internal/models"
	"github.com/IstyxI/foodgram/internal/types"
)

// setupTestDB opens an in-memory sqlite database with foreign keys enabled.
// A single connection keeps the shared in-memory database alive for the
// whole test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigrations(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestIngredient(t *testing.T, db *gorm.DB, name, unit string) models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(&ingredient).Error)
	return ingredient
}

func createTestTag(t *testing.T, db *gorm.DB, name string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Slug: name}
	require.NoError(t, db.Create(&tag).Error)
	return tag
}

// createTestRecipe goes through the service so short-code allocation and
// association writes run exactly as in production.
func createTestRecipe(t *testing.T, db *gorm.DB, authorID uuid.UUID, name string, tag models.Tag, ingredients ...types.RecipeIngredientRequest) *models.Recipe {
	t.Helper()
	svc := NewRecipeService(db, NewShortCodeAllocator(db, nil))
	recipe, err := svc.Create(context.Background(), authorID, types.RecipeRequest{
		Name:        name,
		Text:        "some instructions",
		CookingTime: 10,
		Ingredients: ingredients,
		Tags:        []uuid.UUID{tag.ID},
	}, "")
	require.NoError(t, err)
	return recipe
}
