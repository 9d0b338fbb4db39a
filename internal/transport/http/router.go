package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/vmarchenko/contacts-api/internal/transport/http/handler"
	"github.com/vmarchenko/contacts-api/internal/transport/http/middleware"
	"github.com/vmarchenko/contacts-api/internal/usecase"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(
	logger *slog.Logger,
	authUsecase *usecase.AuthUsecase,
	authHandler *handler.AuthHandler,
	contactHandler *handler.ContactHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	authMW := middleware.Auth(authUsecase)

	// Public auth routes
	auth := r.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.GET("/refresh_token", authHandler.Refresh)
	auth.GET("/verify", authHandler.Verify)
	auth.POST("/resend-verify", authHandler.ResendVerification)

	// Avatar upload needs a verified caller
	auth.POST("/avatar", authMW, authHandler.UpdateAvatar)

	// Protected contact routes
	contacts := r.Group("/contacts", authMW)
	contacts.GET("", contactHandler.List)
	contacts.POST("", contactHandler.Create)
	contacts.GET("/:id", contactHandler.GetByID)
	contacts.PUT("/:id", contactHandler.Update)
	contacts.DELETE("/:id", contactHandler.Delete)

	return r
}
