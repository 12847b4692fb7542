package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/IstyxI/foodgram/internal/service"
)

// Services bundles the service layer for route wiring.
type Services struct {
	Auth         *service.AuthService
	Recipes      *service.RecipeService
	Favorites    *service.MembershipSet
	ShoppingCart *service.MembershipSet
	ShoppingList *service.ShoppingListService
	Catalog      *service.CatalogService
	Follows      *service.FollowService
	Media        *service.MediaService
	ShortCodes   *service.ShortCodeAllocator
}

// NewServices constructs the service layer over the shared GORM handle.
// media may be nil when S3 storage is not configured; shortCodes carries
// its own optional Redis cache.
func NewServices(db *gorm.DB, jwtSecret string, media *service.MediaService, shortCodes *service.ShortCodeAllocator) *Services {
	return &Services{
		Auth:         service.NewAuthService(db, jwtSecret),
		Recipes:      service.NewRecipeService(db, shortCodes),
		Favorites:    service.NewFavoriteSet(db),
		ShoppingCart: service.NewShoppingCartSet(db),
		ShoppingList: service.NewShoppingListService(db),
		Catalog:      service.NewCatalogService(db),
		Follows:      service.NewFollowService(db),
		Media:        media,
		ShortCodes:   shortCodes,
	}
}

// SetupAPI registers every API route on the router.
func SetupAPI(router *gin.Engine, svcs *Services) {
	v1 := router.Group("/api/v1")
	{
		NewAuthHandler(svcs.Auth).RegisterRoutes(v1)
		NewUserHandler(svcs.Auth, svcs.Follows, svcs.Media).RegisterRoutes(v1)
		NewRecipeHandler(svcs.Auth, svcs.Recipes, svcs.Favorites, svcs.ShoppingCart, svcs.ShoppingList, svcs.Media, svcs.ShortCodes).RegisterRoutes(v1)
		NewCatalogHandler(svcs.Catalog).RegisterRoutes(v1)
	}

	NewShortLinkHandler(svcs.ShortCodes).RegisterRoutes(router)
}
