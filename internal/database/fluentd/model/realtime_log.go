package model

// RealtimeLog 記錄 bridge 收到的事件摘要，不含訊息內文
type RealtimeLog struct {
	Bridge    string `json:"bridge"`
	Event     string `json:"event"`
	MeetingID string `json:"meeting_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Result    string `json:"result"`
	Reason    string `json:"reason,omitempty"`
	Version   string `json:"version"`
	LoggedAt  string `json:"logged_at"`
}
