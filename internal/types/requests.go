package types

import "github.com/google/uuid"

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RecipeIngredientRequest references an existing ingredient with the
// quantity used by the recipe.
type RecipeIngredientRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount"`
}

// RecipeRequest is the payload for recipe creation and update. Image is a
// base64 data URI; an empty image on update keeps the stored one.
type RecipeRequest struct {
	Name        string                    `json:"name" binding:"required"`
	Text        string                    `json:"text" binding:"required"`
	CookingTime int                       `json:"cooking_time"`
	Image       string                    `json:"image"`
	Ingredients []RecipeIngredientRequest `json:"ingredients"`
	Tags        []uuid.UUID               `json:"tags"`
}

type AvatarRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}
