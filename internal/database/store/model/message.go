package model

// Message 會議聊天訊息，key 為 meetingId/id
type Message struct {
	ID        string `json:"id" bson:"id"`
	MeetingID string `json:"meetingId" bson:"meetingId"`
	SenderUID string `json:"senderUid,omitempty" bson:"senderUid,omitempty"`
	UserName  string `json:"userName,omitempty" bson:"userName,omitempty"`
	Text      string `json:"text" bson:"text"`
	CreatedAt string `json:"createdAt" bson:"createdAt"`
}

func (m *Message) Key() string {
	return m.MeetingID + "/" + m.ID
}
