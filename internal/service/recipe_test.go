package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IstyxI/foodgram/internal/models"
	"github.com/IstyxI/foodgram/internal/types"
)

func TestCreateRecipe(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	tag := createTestTag(t, db, "breakfast")
	flour := createTestIngredient(t, db, "flour", "g")
	sugar := createTestIngredient(t, db, "sugar", "g")

	svc := NewRecipeService(db, NewShortCodeAllocator(db, nil))
	recipe, err := svc.Create(context.Background(), author.ID, types.RecipeRequest{
		Name:        "pancakes",
		Text:        "mix and fry",
		CookingTime: 20,
		Ingredients: []types.RecipeIngredientRequest{
			{ID: flour.ID, Amount: 200},
			{ID: sugar.ID, Amount: 30},
		},
		Tags: []uuid.UUID{tag.ID},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "pancakes", recipe.Name)
	assert.Equal(t, author.ID, recipe.AuthorID)
	assert.Len(t, recipe.ShortCode, models.ShortCodeLength)
	assert.Len(t, recipe.Ingredients, 2)
	assert.Len(t, recipe.Tags, 1)
	assert.Equal(t, "author", recipe.Author.Username)
}

func TestCreateRecipeValidation(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	tag := createTestTag(t, db, "breakfast")
	flour := createTestIngredient(t, db, "flour", "g")

	svc := NewRecipeService(db, NewShortCodeAllocator(db, nil))
	ctx := context.Background()

	cases := []struct {
		name string
		req  types.RecipeRequest
	}{
		{
			name: "empty ingredient list",
			req: types.RecipeRequest{
				Name: "x", Text: "y", CookingTime: 5,
				Tags: []uuid.UUID{tag.ID},
			},
		},
		{
			name: "duplicate ingredient",
			req: types.RecipeRequest{
				Name: "x", Text: "y", CookingTime: 5,
				Ingredients: []types.RecipeIngredientRequest{
					{ID: flour.ID, Amount: 100},
					{ID: flour.ID, Amount: 200},
				},
				Tags: []uuid.UUID{tag.ID},
			},
		},
		{
			name: "zero cooking time",
			req: types.RecipeRequest{
				Name: "x", Text: "y", CookingTime: 0,
				Ingredients: []types.RecipeIngredientRequest{{ID: flour.ID, Amount: 100}},
				Tags:        []uuid.UUID{tag.ID},
			},
		},
		{
			name: "zero amount",
			req: types.RecipeRequest{
				Name: "x", Text: "y", CookingTime: 5,
				Ingredients: []types.RecipeIngredientRequest{{ID: flour.ID, Amount: 0}},
				Tags:        []uuid.UUID{tag.ID},
			},
		},
		{
			name: "empty tag list",
			req: types.RecipeRequest{
				Name: "x", Text: "y", CookingTime: 5,
				Ingredients: []types.RecipeIngredientRequest{{ID: flour.ID, Amount: 100}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, author.ID, tc.req, "")
			assert.True(t, IsValidationError(err), "expected validation error, got %v", err)

			// No partial writes.
			var count int64
			require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}

func TestCreateRecipeUnknownReferences(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	tag := createTestTag(t, db, "breakfast")
	flour := createTestIngredient(t, db, "flour", "g")

	svc := NewRecipeService(db, NewShortCodeAllocator(db, nil))
	ctx := context.Background()

	_, err := svc.Create(ctx, author.ID, types.RecipeRequest{
		Name: "x", Text: "y", CookingTime: 5,
		Ingredients: []types.RecipeIngredientRequest{{ID: uuid.New(), Amount: 100}},
		Tags:        []uuid.UUID{tag.ID},
	}, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(ctx, author.ID, types.RecipeRequest{
		Name: "x", Text: "y", CookingTime: 5,
		Ingredients: []types.RecipeIngredientRequest{{ID: flour.ID, Amount: 100}},
		Tags:        []uuid.UUID{uuid.New()},
	}, "")
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateRecipeReplacesIngredients(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	tag := createTestTag(t, db, "breakfast")
	flour := createTestIngredient(t, db, "flour", "g")
	sugar := createTestIngredient(t, db, "sugar", "g")
	recipe := createTestRecipe(t, db, author.ID, "bread", tag,
		types.RecipeIngredientRequest{ID: flour.ID, Amount: 500})

	svc := NewRecipeService(db, NewShortCodeAllocator(db, nil))
	updated, err := svc.Update(context.Background(), author.ID, recipe.ID, types.RecipeRequest{
		Name:        "sweet bread",
		Text:        "new text",
		CookingTime: 45,
		Ingredients: []types.RecipeIngredientRequest{{ID: sugar.ID, Amount: 80}},
		Tags:        []uuid.UUID{tag.ID},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "sweet bread", updated.Name)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, sugar.ID, updated.Ingredients[0].IngredientID)
	assert.Equal(t, 80, updated.Ingredients[0].Amount)

	// The short code never changes.
	assert.Equal(t, recipe.ShortCode, updated.ShortCode)
}

func TestUpdateRecipeByNonAuthor(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	other := createTestUser(t, db, "other")
	tag := createTestTag(t, db, "breakfast")
	flour := createTestIngredient(t, db, "flour", "g")
	recipe := createTestRecipe(t, db, author.ID, "bread", tag,
		types.RecipeIngredientRequest{ID: flour.ID, Amount: 500})

	svc := NewRecipeService(db, NewShortCodeAllocator(db, nil))
	_, err := svc.Update(context.Background(), other.ID, recipe.ID, types.RecipeRequest{
		Name: "stolen", Text: "x", CookingTime: 5,
		Ingredients: []types.RecipeIngredientRequest{{ID: flour.ID, Amount: 1}},
		Tags:        []uuid.UUID{tag.ID},
	}, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteRecipeCascades(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	fan := createTestUser(t, db, "fan")
	tag := createTestTag(t, db, "breakfast")
	flour := createTestIngredient(t, db, "flour", "g")
	recipe := createTestRecipe(t, db, author.ID, "bread", tag,
		types.RecipeIngredientRequest{ID: flour.ID, Amount: 500})

	ctx := context.Background()
	require.NoError(t, NewFavoriteSet(db).Add(ctx, fan.ID, recipe.ID))
	require.NoError(t, NewShoppingCartSet(db).Add(ctx, fan.ID, recipe.ID))

	svc := NewRecipeService(db, NewShortCodeAllocator(db, nil))
	require.NoError(t, svc.Delete(ctx, &author, recipe.ID))

	for _, model := range []any{
		&models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingCart{}, &models.RecipeTag{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T rows should cascade", model)
	}
}

func TestDeleteRecipeByNonAuthor(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	other := createTestUser(t, db, "other")
	tag := createTestTag(t, db, "breakfast")
	flour := createTestIngredient(t, db, "flour", "g")
	recipe := createTestRecipe(t, db, author.ID, "bread", tag,
		types.RecipeIngredientRequest{ID: flour.ID, Amount: 500})

	svc := NewRecipeService(db, NewShortCodeAllocator(db, nil))
	assert.ErrorIs(t, svc.Delete(context.Background(), &other, recipe.ID), ErrForbidden)

	// Administrators may delete any recipe.
	admin := models.User{
		Email: "admin@example.com", Username: "admin",
		FirstName: "A", LastName: "D", PasswordHash: "x", IsAdmin: true,
	}
	require.NoError(t, db.Create(&admin).Error)
	require.NoError(t, svc.Delete(context.Background(), &admin, recipe.ID))
}

func TestDeleteUserCascades(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	fan := createTestUser(t, db, "fan")
	tag := createTestTag(t, db, "breakfast")
	flour := createTestIngredient(t, db, "flour", "g")
	recipe := createTestRecipe(t, db, author.ID, "bread", tag,
		types.RecipeIngredientRequest{ID: flour.ID, Amount: 500})

	ctx := context.Background()
	require.NoError(t, NewFavoriteSet(db).Add(ctx, fan.ID, recipe.ID))
	require.NoError(t, NewShoppingCartSet(db).Add(ctx, fan.ID, recipe.ID))
	require.NoError(t, NewFollowService(db).Follow(ctx, fan.ID, author.ID))

	require.NoError(t, db.Delete(&models.User{}, "id = ?", fan.ID).Error)

	for _, model := range []any{&models.Favorite{}, &models.ShoppingCart{}, &models.Follow{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T rows should cascade with the user", model)
	}

	// The author's recipe is untouched.
	var recipes int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&recipes).Error)
	assert.EqualValues(t, 1, recipes)
}

func TestListRecipesFilters(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	other := createTestUser(t, db, "other")
	fan := createTestUser(t, db, "fan")
	breakfast := createTestTag(t, db, "breakfast")
	dinner := createTestTag(t, db, "dinner")
	flour := createTestIngredient(t, db, "flour", "g")

	pancakes := createTestRecipe(t, db, author.ID, "pancakes", breakfast,
		types.RecipeIngredientRequest{ID: flour.ID, Amount: 200})
	createTestRecipe(t, db, other.ID, "stew", dinner,
		types.RecipeIngredientRequest{ID: flour.ID, Amount: 10})

	ctx := context.Background()
	require.NoError(t, NewFavoriteSet(db).Add(ctx, fan.ID, pancakes.ID))

	svc := NewRecipeService(db, NewShortCodeAllocator(db, nil))

	recipes, total, err := svc.List(ctx, RecipeFilter{TagSlugs: []string{"breakfast"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, recipes, 1)
	assert.Equal(t, "pancakes", recipes[0].Name)

	recipes, _, err = svc.List(ctx, RecipeFilter{AuthorID: &other.ID})
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "stew", recipes[0].Name)

	recipes, _, err = svc.List(ctx, RecipeFilter{UserID: fan.ID, Favorited: true})
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "pancakes", recipes[0].Name)

	// Anonymous requests ignore per-user filters.
	_, total, err = svc.List(ctx, RecipeFilter{Favorited: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
