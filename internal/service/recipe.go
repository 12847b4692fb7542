package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/IstyxI/foodgram/internal/models"
	"github.com/IstyxI/foodgram/internal/types"
)

// shortCodeInsertRetries bounds commit-time collision retries. The only
// unique constraint a validated recipe insert can trip is the short code,
// so a duplicate-key error here means a concurrent allocation won the race.
const shortCodeInsertRetries = 5

// RecipeFilter narrows and paginates recipe listings. UserID is the
// requesting user and is uuid.Nil for anonymous requests, in which case
// Favorited/InCart filters are ignored.
type RecipeFilter struct {
	TagSlugs  []string
	AuthorID  *uuid.UUID
	Favorited bool
	InCart    bool
	UserID    uuid.UUID
	Page      int
	Limit     int
}

// RecipeService owns recipe CRUD: validation before any write, short-code
// assignment at creation, full ingredient/tag replacement on update, and
// owner-only mutation.
type RecipeService struct {
	db        *gorm.DB
	allocator *ShortCodeAllocator
}

func NewRecipeService(db *gorm.DB, allocator *ShortCodeAllocator) *RecipeService {
	return &RecipeService{db: db, allocator: allocator}
}

// Create validates the payload, assigns a short code and writes the recipe
// with its ingredient and tag associations in one transaction. Nothing is
// written when validation fails.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, req types.RecipeRequest, imageURL string) (*models.Recipe, error) {
	if err := validateRecipePayload(req); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < shortCodeInsertRetries; attempt++ {
		created, err := s.createOnce(ctx, authorID, req, imageURL)
		if err == nil {
			return created, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Short-code collision at commit; redraw and retry.
			continue
		}
		return nil, err
	}
	return nil, ErrShortCodeExhausted
}

func (s *RecipeService) createOnce(ctx context.Context, authorID uuid.UUID, req types.RecipeRequest, imageURL string) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := loadTags(tx, req.Tags)
		if err != nil {
			return err
		}
		if err := ensureIngredientsExist(tx, req.Ingredients); err != nil {
			return err
		}

		code, err := s.allocator.Allocate(tx)
		if err != nil {
			return err
		}

		recipe = models.Recipe{
			AuthorID:    authorID,
			Name:        req.Name,
			Text:        req.Text,
			CookingTime: req.CookingTime,
			ImageURL:    imageURL,
			ShortCode:   code,
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := createIngredientRows(tx, recipe.ID, req.Ingredients); err != nil {
			return err
		}
		return tx.Model(&recipe).Association("Tags").Replace(tags)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, recipe.ID)
}

// Update replaces the recipe's fields and associations. Ingredient rows are
// cleared and re-created rather than diffed. Only the author may update.
// An empty imageURL keeps the stored image.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID uuid.UUID, req types.RecipeRequest, imageURL string) (*models.Recipe, error) {
	if err := validateRecipePayload(req); err != nil {
		return nil, err
	}

	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, ErrForbidden
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := loadTags(tx, req.Tags)
		if err != nil {
			return err
		}
		if err := ensureIngredientsExist(tx, req.Ingredients); err != nil {
			return err
		}

		updates := map[string]any{
			"name":         req.Name,
			"text":         req.Text,
			"cooking_time": req.CookingTime,
		}
		if imageURL != "" {
			updates["image_url"] = imageURL
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := createIngredientRows(tx, recipe.ID, req.Ingredients); err != nil {
			return err
		}
		return tx.Model(&recipe).Association("Tags").Replace(tags)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, recipe.ID)
}

// Delete removes the recipe; the database cascades to its ingredient rows,
// favorites, cart entries and tag links. The author and administrators may
// delete.
func (s *RecipeService) Delete(ctx context.Context, actor *models.User, recipeID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if recipe.AuthorID != actor.ID && !actor.IsAdmin {
		return ErrForbidden
	}

	if err := s.db.WithContext(ctx).Delete(&models.Recipe{}, "id = ?", recipeID).Error; err != nil {
		return err
	}
	// The cascade removed the rows; the cached short-link entry must go
	// with them or the code keeps resolving for up to the cache TTL.
	s.allocator.Invalidate(ctx, recipe.ShortCode)
	return nil
}

// Get loads a recipe with its author, tags and ingredient quantities.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// List returns recipes newest first, narrowed by the filter, plus the total
// match count for pagination.
func (s *RecipeService) List(ctx context.Context, f RecipeFilter) ([]models.Recipe, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if len(f.TagSlugs) > 0 {
		tagged := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if f.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *f.AuthorID)
	}
	if f.UserID != uuid.Nil {
		if f.Favorited {
			query = query.Where("recipes.id IN (?)",
				s.db.Table("favorites").Select("recipe_id").Where("user_id = ?", f.UserID))
		}
		if f.InCart {
			query = query.Where("recipes.id IN (?)",
				s.db.Table("shopping_carts").Select("recipe_id").Where("user_id = ?", f.UserID))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}

	var recipes []models.Recipe
	err := query.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func validateRecipePayload(req types.RecipeRequest) error {
	if req.CookingTime < 1 {
		return validationErrorf("cooking_time must be at least 1 minute")
	}
	if len(req.Ingredients) == 0 {
		return validationErrorf("ingredient list must not be empty")
	}
	seenIngredients := make(map[uuid.UUID]struct{}, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		if ing.Amount < 1 {
			return validationErrorf("ingredient amount must be at least 1")
		}
		if _, dup := seenIngredients[ing.ID]; dup {
			return validationErrorf("ingredient %s listed more than once", ing.ID)
		}
		seenIngredients[ing.ID] = struct{}{}
	}
	if len(req.Tags) == 0 {
		return validationErrorf("tag list must not be empty")
	}
	seenTags := make(map[uuid.UUID]struct{}, len(req.Tags))
	for _, id := range req.Tags {
		if _, dup := seenTags[id]; dup {
			return validationErrorf("tag %s listed more than once", id)
		}
		seenTags[id] = struct{}{}
	}
	return nil
}

func loadTags(tx *gorm.DB, ids []uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, ErrNotFound
	}
	return tags, nil
}

func ensureIngredientsExist(tx *gorm.DB, ingredients []types.RecipeIngredientRequest) error {
	ids := make([]uuid.UUID, len(ingredients))
	for i, ing := range ingredients {
		ids[i] = ing.ID
	}
	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return ErrNotFound
	}
	return nil
}

func createIngredientRows(tx *gorm.DB, recipeID uuid.UUID, ingredients []types.RecipeIngredientRequest) error {
	rows := make([]models.RecipeIngredient, len(ingredients))
	for i, ing := range ingredients {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: ing.ID,
			Amount:       ing.Amount,
		}
	}
	return tx.Create(&rows).Error
}
