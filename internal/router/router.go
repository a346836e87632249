package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/admin-auth/internal/config"
	"github.com/stemsi/admin-auth/internal/handler"
	"github.com/stemsi/admin-auth/internal/middleware"
	"github.com/stemsi/admin-auth/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth   *handler.AuthHandler
	System *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	tokens middleware.TokenResolver,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "WWW-Authenticate"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))

	router.GET("/", handlers.System.Root)
	router.GET("/health", handlers.System.Health)

	// ─── Auth ──────────────────────────────────────────────────────────
	auth := router.Group("/auth")
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/forgot-password", handlers.Auth.ForgotPassword)
		auth.POST("/verify-reset-code", handlers.Auth.VerifyResetCode)
		auth.POST("/reset-password", handlers.Auth.ResetPassword)
		auth.GET("/me", middleware.RequireAdmin(tokens), handlers.Auth.Me)
	}

	return router
}
