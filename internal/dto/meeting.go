package dto

import "joingo/internal/core"

type CreateMeetingDto struct {
	MaxParticipants int            `json:"maxParticipants,omitempty" binding:"omitempty,min=2,max=10"`
	TTLMinutes      int            `json:"ttlMinutes,omitempty" binding:"omitempty,min=1"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

type UpdateMeetingStatusDto struct {
	Status core.MeetingStatus `json:"status" binding:"required,oneof=active inactive closed"`
}

type MessagesQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

// MessageResponseDto 前端沿用的聊天訊息欄位名稱
type MessageResponseDto struct {
	MessageID string `json:"messageId"`
	MeetingID string `json:"meetingId"`
	UserID    string `json:"userId,omitempty"`
	UserName  string `json:"userName,omitempty"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
