package dto

type VoiceSessionDto struct {
	MeetingID string `json:"meetingId" binding:"required,min=4"`
}

type PeersResponseDto struct {
	RoomID string   `json:"roomId"`
	Peers  []string `json:"peers"`
}
