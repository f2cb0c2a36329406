package router

import (
	"joingo/internal/handler"
	"joingo/internal/middleware"

	"github.com/gin-gonic/gin"
)

type MeetingRouter struct {
	meetingHandler *handler.MeetingHandler
	auth           *middleware.Auth
}

func NewMeetingRouter(meetingHandler *handler.MeetingHandler, auth *middleware.Auth) *MeetingRouter {
	return &MeetingRouter{meetingHandler: meetingHandler, auth: auth}
}

func (mr *MeetingRouter) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/meetings")
	// 會議資訊公開，加入前不需登入
	g.GET("/:id", mr.meetingHandler.Get)

	secured := g.Group("", mr.auth.Authenticate())
	{
		secured.POST("", mr.meetingHandler.Create)
		secured.GET("", mr.meetingHandler.List)
		secured.PATCH("/:id/status", mr.meetingHandler.UpdateStatus)
		secured.GET("/:id/messages", mr.meetingHandler.Messages)
	}
}
