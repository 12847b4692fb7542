package types

import "github.com/google/uuid"

type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Avatar       string    `json:"avatar"`
	IsSubscribed bool      `json:"is_subscribed"`
}

type TagResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type IngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
}

// RecipeIngredientResponse flattens the join row with the ingredient's
// identity fields.
type RecipeIngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

// RecipeResponse is the recipe read model. IsFavorited and IsInShoppingCart
// are computed for the requesting user and are always false for anonymous
// requests.
type RecipeResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Author           UserResponse               `json:"author"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	Tags             []TagResponse              `json:"tags"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	ShortLink        string                     `json:"short_link"`
}

// RecipeListResponse is a paginated recipe collection.
type RecipeListResponse struct {
	Count   int64            `json:"count"`
	Results []RecipeResponse `json:"results"`
}

// SubscriptionResponse is an author the user follows, with a capped recipe
// preview.
type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeResponse `json:"recipes"`
	RecipesCount int64            `json:"recipes_count"`
}
