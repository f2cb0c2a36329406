package core

type Role string

const (
	RoleHost        Role = "host"        // 會議主持人
	RoleParticipant Role = "participant" // 一般參與者
)

type Status string

const (
	StatusActive  Status = "active"  // 正常可用
	StatusDeleted Status = "deleted" // 已刪除（軟刪除）
)

type MeetingStatus string

const (
	MeetingActive   MeetingStatus = "active"
	MeetingInactive MeetingStatus = "inactive"
	MeetingClosed   MeetingStatus = "closed"
)

// gin context keys
const (
	ContextUIDKey       = "uid"
	ContextEmailKey     = "email"
	ContextTokenKey     = "bearerToken"
	ContextTokenExpKey  = "bearerTokenExp"
	ContextRequestIDKey = "requestID"
)
