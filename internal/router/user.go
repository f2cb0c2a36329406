package router

import (
	"joingo/internal/handler"
	"joingo/internal/middleware"

	"github.com/gin-gonic/gin"
)

type UserRouter struct {
	userHandler *handler.UserHandler
	auth        *middleware.Auth
}

func NewUserRouter(userHandler *handler.UserHandler, auth *middleware.Auth) *UserRouter {
	return &UserRouter{userHandler: userHandler, auth: auth}
}

func (ur *UserRouter) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/users", ur.auth.Authenticate())
	{
		g.POST("/sync", ur.userHandler.Sync)
		g.GET("/me", ur.userHandler.Me)
		g.PUT("/me", ur.userHandler.UpdateMe)
		g.DELETE("/me", ur.userHandler.DeleteMe)
		g.POST("/me/avatar", ur.userHandler.UploadAvatar)
	}
}
