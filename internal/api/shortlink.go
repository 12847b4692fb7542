package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/IstyxI/foodgram/internal/service"
)

// ShortLinkHandler resolves 6-character recipe short codes. Registered on
// the root router so shared links stay compact.
type ShortLinkHandler struct {
	shortCodes *service.ShortCodeAllocator
}

func NewShortLinkHandler(shortCodes *service.ShortCodeAllocator) *ShortLinkHandler {
	return &ShortLinkHandler{shortCodes: shortCodes}
}

func (h *ShortLinkHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/s/:code", h.Redirect)
}

// Redirect maps a short code to the full recipe page. Unknown codes 404.
func (h *ShortLinkHandler) Redirect(c *gin.Context) {
	recipeID, err := h.shortCodes.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/recipes/"+recipeID.String())
}
