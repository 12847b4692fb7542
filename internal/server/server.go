package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/IstyxI/foodgram/internal/api"
	"github.com/IstyxI/foodgram/internal/database"
	"github.com/IstyxI/foodgram/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
}

// New builds the HTTP server: CORS, optional Redis rate limiting on
// mutating endpoints, the API routes, and a health endpoint backed by the
// raw database connection.
func New(db *gorm.DB, sqlDB *database.DB, redisClient *redis.Client, svcs *api.Services) *Server {
	router := gin.Default()
	router.Use(middleware.CORS())

	if redisClient != nil {
		limiter := middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Window:    time.Minute,
			Limit:     120,
			KeyPrefix: "ratelimit",
		})
		router.Use(limiter.RateLimitMiddleware())
	}

	router.GET("/health", func(c *gin.Context) {
		if sqlDB != nil {
			if err := sqlDB.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.SetupAPI(router, svcs)

	return &Server{router: router}
}

// Router exposes the underlying engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
