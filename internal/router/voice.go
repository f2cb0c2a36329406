package router

import (
	"joingo/config"
	"joingo/internal/handler"
	"joingo/internal/middleware"

	"github.com/gin-gonic/gin"
)

const rateLimitScopeVoice = "voice"

type VoiceRouter struct {
	config       *config.Configuration
	voiceHandler *handler.VoiceHandler
	auth         *middleware.Auth
	rateLimit    *middleware.RateLimit
}

func NewVoiceRouter(
	config *config.Configuration,
	voiceHandler *handler.VoiceHandler,
	auth *middleware.Auth,
	rateLimit *middleware.RateLimit,
) *VoiceRouter {
	return &VoiceRouter{config: config, voiceHandler: voiceHandler, auth: auth, rateLimit: rateLimit}
}

func (vr *VoiceRouter) RegisterRoutes(api *gin.RouterGroup) {
	limits := vr.config.RateLimit
	g := api.Group("/voice", vr.auth.Authenticate())
	{
		g.GET("/config", vr.voiceHandler.Config)
		g.POST("/session", vr.rateLimit.ByUser(rateLimitScopeVoice, limits.VoiceLimit, limits.VoiceWindowSec), vr.voiceHandler.Session)
		g.GET("/rooms/:roomId/peers", vr.voiceHandler.Peers)
	}
}
