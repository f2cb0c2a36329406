package handler

import (
	"joingo/internal/core"
	cErr "joingo/internal/pkg/error"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
)

// ProviderSet Provider对象集合
var ProviderSet = wire.NewSet(
	NewHealthHandler,
	NewAuthHandler,
	NewUserHandler,
	NewMeetingHandler,
	NewVoiceHandler,
)

// currentUID 由 Auth middleware 寫入；缺少代表路由未掛驗證
func currentUID(c *gin.Context) (string, error) {
	uid := c.GetString(core.ContextUIDKey)
	if uid == "" {
		return "", cErr.Unauthorized("Missing or invalid credentials")
	}
	return uid, nil
}
