package model

import "joingo/internal/core"

type Meeting struct {
	ID              string             `json:"id" bson:"id"`
	HostUID         string             `json:"hostUid" bson:"hostUid"`
	CreatedAt       string             `json:"createdAt" bson:"createdAt"`
	UpdatedAt       string             `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
	ExpiresAt       string             `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
	Status          core.MeetingStatus `json:"status,omitempty" bson:"status,omitempty"`
	MaxParticipants int                `json:"maxParticipants" bson:"maxParticipants"`
	Metadata        map[string]any     `json:"metadata,omitempty" bson:"metadata,omitempty"`
	VoiceEnabled    *bool              `json:"voiceEnabled,omitempty" bson:"voiceEnabled,omitempty"` // nil 視為啟用
	VoiceRoomID     string             `json:"voiceRoomId,omitempty" bson:"voiceRoomId,omitempty"`
	DeletedAt       string             `json:"deletedAt,omitempty" bson:"deletedAt,omitempty"`
}

// RoomID 未指定語音房時沿用會議 ID
func (m *Meeting) RoomID() string {
	if m.VoiceRoomID != "" {
		return m.VoiceRoomID
	}
	return m.ID
}
