package handler

import (
	"joingo/internal/database/store/model"
	"joingo/internal/dto"
	"joingo/internal/pkg/response"
	"joingo/internal/service"
	"joingo/internal/telemetry"
	"joingo/utils/validate"

	"github.com/gin-gonic/gin"
)

type MeetingHandler struct {
	trace          *telemetry.Trace
	meetingService *service.MeetingService
	messageService *service.MessageService
}

func NewMeetingHandler(trace *telemetry.Trace, meetingService *service.MeetingService, messageService *service.MessageService) *MeetingHandler {
	return &MeetingHandler{trace: trace, meetingService: meetingService, messageService: messageService}
}

// Create
// @Summary 建立會議（呼叫者為主持人）
// @Tags Meeting
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateMeetingDto false "會議設定"
// @Success 201 {object} model.Meeting
// @Failure 400 {object} response.ErrorResponse
// @Router /api/meetings [post]
func (h *MeetingHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	uid, err := currentUID(c)
	if err != nil {
		end(nil)
		response.AbortWithError(c, err)
		return
	}
	var req dto.CreateMeetingDto
	if c.Request.ContentLength != 0 {
		if cause, err := validate.BindAndValidate(c, &req); err != nil {
			end(cause)
			response.AbortWithError(c, err)
			return
		}
	}
	meeting, err := h.meetingService.Create(ctx, uid, service.CreateMeetingInput{
		MaxParticipants: req.MaxParticipants,
		TTLMinutes:      req.TTLMinutes,
		Metadata:        req.Metadata,
	})
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, meeting)
}

// List
// @Summary 列出自己主持中的會議
// @Tags Meeting
// @Security BearerAuth
// @Produce json
// @Success 200 {array} model.Meeting
// @Router /api/meetings [get]
func (h *MeetingHandler) List(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	uid, err := currentUID(c)
	if err != nil {
		end(nil)
		response.AbortWithError(c, err)
		return
	}
	meetings, err := h.meetingService.ListByHost(ctx, uid)
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	if meetings == nil {
		meetings = []*model.Meeting{}
	}
	response.Success(c, meetings)
}

// Get
// @Summary 取得會議
// @Tags Meeting
// @Produce json
// @Param id path string true "Meeting ID"
// @Success 200 {object} model.Meeting
// @Failure 404 {object} response.ErrorResponse
// @Router /api/meetings/{id} [get]
func (h *MeetingHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	meeting, err := h.meetingService.Get(ctx, c.Param("id"))
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, meeting)
}

// UpdateStatus
// @Summary 變更會議狀態（僅主持人）
// @Tags Meeting
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Meeting ID"
// @Param body body dto.UpdateMeetingStatusDto true "新狀態"
// @Success 200 {object} model.Meeting
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/meetings/{id}/status [patch]
func (h *MeetingHandler) UpdateStatus(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	uid, err := currentUID(c)
	if err != nil {
		end(nil)
		response.AbortWithError(c, err)
		return
	}
	var req dto.UpdateMeetingStatusDto
	if cause, err := validate.BindAndValidate(c, &req); err != nil {
		end(cause)
		response.AbortWithError(c, err)
		return
	}
	meeting, err := h.meetingService.UpdateStatus(ctx, c.Param("id"), uid, req.Status)
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, meeting)
}

// Messages
// @Summary 取得會議最近的聊天訊息（時間正序）
// @Tags Meeting
// @Security BearerAuth
// @Produce json
// @Param id path string true "Meeting ID"
// @Param limit query int false "筆數，預設 50，最多 200"
// @Success 200 {array} dto.MessageResponseDto
// @Failure 404 {object} response.ErrorResponse
// @Router /api/meetings/{id}/messages [get]
func (h *MeetingHandler) Messages(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var query dto.MessagesQuery
	if cause, err := validate.BindQuery(c, &query); err != nil {
		end(cause)
		response.AbortWithError(c, err)
		return
	}
	meetingID := c.Param("id")
	if _, err := h.meetingService.Get(ctx, meetingID); err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	messages, err := h.messageService.Recent(ctx, meetingID, query.Limit)
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	out := make([]dto.MessageResponseDto, 0, len(messages))
	for _, m := range messages {
		out = append(out, dto.MessageResponseDto{
			MessageID: m.ID,
			MeetingID: m.MeetingID,
			UserID:    m.SenderUID,
			UserName:  m.UserName,
			Message:   m.Text,
			Timestamp: m.CreatedAt,
		})
	}
	response.Success(c, out)
}
