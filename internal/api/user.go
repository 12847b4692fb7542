package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IstyxI/foodgram/internal/middleware"
	"github.com/IstyxI/foodgram/internal/service"
	"github.com/IstyxI/foodgram/internal/types"
)

type UserHandler struct {
	authService   *service.AuthService
	followService *service.FollowService
	mediaService  *service.MediaService
}

func NewUserHandler(authService *service.AuthService, followService *service.FollowService, mediaService *service.MediaService) *UserHandler {
	return &UserHandler{
		authService:   authService,
		followService: followService,
		mediaService:  mediaService,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListUsers)
		users.GET("/me", middleware.AuthMiddleware(h.authService), h.Me)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.authService), h.Subscriptions)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetUser)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Unsubscribe)
		users.PUT("/me/avatar", middleware.AuthMiddleware(h.authService), h.SetAvatar)
		users.DELETE("/me/avatar", middleware.AuthMiddleware(h.authService), h.DeleteAvatar)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	users, total, err := h.authService.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	followed, err := h.followService.FollowedAuthors(c.Request.Context(), currentUserID(c), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]types.UserResponse, len(users))
	for i, u := range users {
		responses[i] = toUserResponse(u, followed[u.ID])
	}
	c.JSON(http.StatusOK, gin.H{"count": total, "users": responses})
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.authService.GetUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(*user, false))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	subscribed := false
	if viewerID := currentUserID(c); viewerID != user.ID {
		subscribed, err = h.followService.IsFollowing(c.Request.Context(), viewerID, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, toUserResponse(*user, subscribed))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.followService.Follow(c.Request.Context(), currentUserID(c), authorID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "subscribed"})
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.followService.Unfollow(c.Request.Context(), currentUserID(c), authorID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unsubscribed"})
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	recipesLimit := 0
	if v := c.Query("recipes_limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			recipesLimit = n
		}
	}

	subs, err := h.followService.Subscriptions(c.Request.Context(), currentUserID(c), recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]types.SubscriptionResponse, len(subs))
	for i, sub := range subs {
		recipes := make([]types.RecipeResponse, len(sub.Recipes))
		for j, r := range sub.Recipes {
			recipes[j] = toRecipeResponse(r, recipeFlags{})
		}
		responses[i] = types.SubscriptionResponse{
			UserResponse: toUserResponse(sub.Author, true),
			Recipes:      recipes,
			RecipesCount: sub.RecipesCount,
		}
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": responses})
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req types.AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.mediaService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media storage is not configured"})
		return
	}

	url, err := h.mediaService.UploadDataURI(c.Request.Context(), req.Avatar, "avatars")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.authService.SetAvatar(c.Request.Context(), currentUserID(c), url); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar": url})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	if err := h.authService.SetAvatar(c.Request.Context(), currentUserID(c), ""); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
