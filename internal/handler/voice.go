package handler

import (
	"joingo/internal/dto"
	"joingo/internal/pkg/response"
	"joingo/internal/realtime/presence"
	"joingo/internal/service/voice"
	"joingo/internal/telemetry"
	"joingo/utils/validate"

	"github.com/gin-gonic/gin"
)

type VoiceHandler struct {
	trace    *telemetry.Trace
	issuer   *voice.Issuer
	registry *presence.Registry
}

// NewVoiceHandler registry 與 VoiceBridge 共用同一個實例
func NewVoiceHandler(trace *telemetry.Trace, issuer *voice.Issuer, registry *presence.Registry) *VoiceHandler {
	return &VoiceHandler{trace: trace, issuer: issuer, registry: registry}
}

// Config
// @Summary 語音連線設定
// @Tags Voice
// @Security BearerAuth
// @Produce json
// @Success 200 {object} voice.Config
// @Router /api/voice/config [get]
func (h *VoiceHandler) Config(c *gin.Context) {
	response.Success(c, h.issuer.Config())
}

// Session
// @Summary 取得語音房憑證
// @Tags Voice
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.VoiceSessionDto true "會議"
// @Success 200 {object} voice.Session
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Failure 429 {object} response.ErrorResponse
// @Router /api/voice/session [post]
func (h *VoiceHandler) Session(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	uid, err := currentUID(c)
	if err != nil {
		end(nil)
		response.AbortWithError(c, err)
		return
	}
	var req dto.VoiceSessionDto
	if cause, err := validate.BindAndValidate(c, &req); err != nil {
		end(cause)
		response.AbortWithError(c, err)
		return
	}
	session, err := h.issuer.IssueSession(ctx, req.MeetingID, uid)
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, session)
}

// Peers
// @Summary 語音房目前的連線（僅供參考）
// @Tags Voice
// @Security BearerAuth
// @Produce json
// @Param roomId path string true "Voice room ID"
// @Success 200 {object} dto.PeersResponseDto
// @Router /api/voice/rooms/{roomId}/peers [get]
func (h *VoiceHandler) Peers(c *gin.Context) {
	roomID := c.Param("roomId")
	peers := h.registry.Peers(roomID)
	if peers == nil {
		peers = []string{}
	}
	response.Success(c, dto.PeersResponseDto{RoomID: roomID, Peers: peers})
}
