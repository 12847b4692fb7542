package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IstyxI/foodgram/internal/middleware"
	"github.com/IstyxI/foodgram/internal/service"
	"github.com/IstyxI/foodgram/internal/types"
)

type RecipeHandler struct {
	authService   *service.AuthService
	recipeService *service.RecipeService
	favorites     *service.MembershipSet
	cart          *service.MembershipSet
	shoppingList  *service.ShoppingListService
	mediaService  *service.MediaService
	shortCodes    *service.ShortCodeAllocator
}

func NewRecipeHandler(
	authService *service.AuthService,
	recipeService *service.RecipeService,
	favorites *service.MembershipSet,
	cart *service.MembershipSet,
	shoppingList *service.ShoppingListService,
	mediaService *service.MediaService,
	shortCodes *service.ShortCodeAllocator,
) *RecipeHandler {
	return &RecipeHandler{
		authService:   authService,
		recipeService: recipeService,
		favorites:     favorites,
		cart:          cart,
		shoppingList:  shoppingList,
		mediaService:  mediaService,
		shortCodes:    shortCodes,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListRecipes)
		recipes.POST("", middleware.AuthMiddleware(h.authService), h.CreateRecipe)
		recipes.GET("/download_shopping_cart", middleware.AuthMiddleware(h.authService), h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetRecipe)
		recipes.PATCH("/:id", middleware.AuthMiddleware(h.authService), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.authService), h.DeleteRecipe)
		recipes.GET("/:id/get-link", h.GetLink)
		recipes.POST("/:id/favorite", middleware.AuthMiddleware(h.authService), h.AddFavorite)
		recipes.DELETE("/:id/favorite", middleware.AuthMiddleware(h.authService), h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", middleware.AuthMiddleware(h.authService), h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", middleware.AuthMiddleware(h.authService), h.RemoveFromCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := service.RecipeFilter{UserID: currentUserID(c)}

	if tags := c.QueryArray("tags"); len(tags) > 0 {
		filter.TagSlugs = tags
	} else if tags := c.Query("tags"); tags != "" {
		filter.TagSlugs = strings.Split(tags, ",")
	}
	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &id
	}
	filter.Favorited = c.Query("is_favorited") == "1"
	filter.InCart = c.Query("is_in_shopping_cart") == "1"
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	recipes, total, err := h.recipeService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]types.RecipeResponse, len(recipes))
	for i, r := range recipes {
		flags, err := h.flagsFor(c, r.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		results[i] = toRecipeResponse(r, flags)
	}

	c.JSON(http.StatusOK, types.RecipeListResponse{Count: total, Results: results})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	flags, err := h.flagsFor(c, recipe.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(*recipe, flags))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imageURL, err := h.storeImage(c, req.Image)
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), currentUserID(c), req, imageURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toRecipeResponse(*recipe, recipeFlags{}))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imageURL, err := h.storeImage(c, req.Image)
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), currentUserID(c), id, req, imageURL)
	if err != nil {
		respondError(c, err)
		return
	}

	flags, err := h.flagsFor(c, recipe.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(*recipe, flags))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actor, err := h.authService.GetUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"short-link": "/s/" + recipe.ShortCode})
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addMembership(c, h.favorites, "recipe added to favorites")
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeMembership(c, h.favorites, "recipe removed from favorites")
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addMembership(c, h.cart, "recipe added to shopping cart")
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeMembership(c, h.cart, "recipe removed from shopping cart")
}

// DownloadShoppingCart exports the consolidated shopping list as plain
// text, one ingredient per line.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	items, err := h.shoppingList.Aggregate(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(h.shoppingList.Render(items)))
}

func (h *RecipeHandler) addMembership(c *gin.Context, set *service.MembershipSet, message string) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := set.Add(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": message})
}

func (h *RecipeHandler) removeMembership(c *gin.Context, set *service.MembershipSet, message string) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := set.Remove(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// flagsFor computes the requesting user's favorite/cart flags for a recipe.
func (h *RecipeHandler) flagsFor(c *gin.Context, recipeID uuid.UUID) (recipeFlags, error) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return recipeFlags{}, nil
	}

	favorited, err := h.favorites.Contains(c.Request.Context(), userID, recipeID)
	if err != nil {
		return recipeFlags{}, err
	}
	inCart, err := h.cart.Contains(c.Request.Context(), userID, recipeID)
	if err != nil {
		return recipeFlags{}, err
	}
	return recipeFlags{favorited: favorited, inCart: inCart}, nil
}

// storeImage uploads an inline base64 image and returns its URL. An empty
// payload or missing media storage yields an empty URL: creation then
// stores no image and update keeps the existing one.
func (h *RecipeHandler) storeImage(c *gin.Context, dataURI string) (string, error) {
	if dataURI == "" || h.mediaService == nil {
		return "", nil
	}
	return h.mediaService.UploadDataURI(c.Request.Context(), dataURI, "recipes")
}
