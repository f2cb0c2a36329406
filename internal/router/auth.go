package router

import (
	"joingo/config"
	"joingo/internal/handler"
	"joingo/internal/middleware"

	"github.com/gin-gonic/gin"
)

const rateLimitScopeAuth = "auth"

type AuthRouter struct {
	config      *config.Configuration
	authHandler *handler.AuthHandler
	auth        *middleware.Auth
	rateLimit   *middleware.RateLimit
}

func NewAuthRouter(
	config *config.Configuration,
	authHandler *handler.AuthHandler,
	auth *middleware.Auth,
	rateLimit *middleware.RateLimit,
) *AuthRouter {
	return &AuthRouter{config: config, authHandler: authHandler, auth: auth, rateLimit: rateLimit}
}

func (ar *AuthRouter) RegisterRoutes(api *gin.RouterGroup) {
	limits := ar.config.RateLimit
	byIP := ar.rateLimit.ByClientIP(rateLimitScopeAuth, limits.AuthLimit, limits.AuthWindowSec)

	g := api.Group("/auth")
	{
		g.POST("/register", byIP, ar.authHandler.Register)
		g.POST("/login", byIP, ar.authHandler.Login)
	}
	secured := g.Group("", ar.auth.Authenticate())
	{
		secured.POST("/logout", ar.authHandler.Logout)
		secured.POST("/change-email", ar.authHandler.ChangeEmail)
		secured.POST("/change-password", ar.authHandler.ChangePassword)
		secured.POST("/provider-sync", ar.authHandler.ProviderSync)
	}
}
