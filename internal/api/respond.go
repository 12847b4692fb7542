package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IstyxI/foodgram/internal/models"
	"github.com/IstyxI/foodgram/internal/service"
	"github.com/IstyxI/foodgram/internal/types"
)

// respondError translates domain errors to transport responses. Membership
// conflicts map to 400 for compatibility with the existing API clients.
func respondError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
	case errors.Is(err, service.ErrAlreadyMember), errors.Is(err, service.ErrNotMember):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action"})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// currentUserID returns the authenticated user id, or uuid.Nil for
// anonymous requests.
func currentUserID(c *gin.Context) uuid.UUID {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func toUserResponse(u models.User, isSubscribed bool) types.UserResponse {
	return types.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Avatar:       u.AvatarURL,
		IsSubscribed: isSubscribed,
	}
}

func toTagResponse(t models.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

func toIngredientResponse(i models.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

// recipeFlags carries the per-user read-model flags of one recipe.
type recipeFlags struct {
	favorited bool
	inCart    bool
}

func toRecipeResponse(r models.Recipe, flags recipeFlags) types.RecipeResponse {
	ingredients := make([]types.RecipeIngredientResponse, len(r.Ingredients))
	for i, ri := range r.Ingredients {
		ingredients[i] = types.RecipeIngredientResponse{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		}
	}
	tags := make([]types.TagResponse, len(r.Tags))
	for i, t := range r.Tags {
		tags[i] = toTagResponse(t)
	}

	return types.RecipeResponse{
		ID:               r.ID,
		Author:           toUserResponse(r.Author, false),
		Name:             r.Name,
		Image:            r.ImageURL,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		Ingredients:      ingredients,
		Tags:             tags,
		IsFavorited:      flags.favorited,
		IsInShoppingCart: flags.inCart,
		ShortLink:        "/s/" + r.ShortCode,
	}
}
