package model

import "joingo/internal/core"

// User 使用者檔案；字串欄位空值視為未設定
type User struct {
	UID              string      `json:"uid" bson:"uid"`                                     // 身分提供者 subject
	DisplayName      string      `json:"displayName,omitempty" bson:"displayName,omitempty"` // 顯示名稱
	FirstName        string      `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName         string      `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Email            string      `json:"email,omitempty" bson:"email,omitempty"`
	AvatarURL        string      `json:"avatarUrl,omitempty" bson:"avatarUrl,omitempty"`
	PhoneNumber      string      `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	Locale           string      `json:"locale,omitempty" bson:"locale,omitempty"`
	Provider         string      `json:"provider,omitempty" bson:"provider,omitempty"`       // 登入方式，如 google.com
	ProviderUID      string      `json:"providerUid,omitempty" bson:"providerUid,omitempty"` // 外部平台上的使用者 ID
	ProviderID       string      `json:"providerId,omitempty" bson:"providerId,omitempty"`
	Role             core.Role   `json:"role,omitempty" bson:"role,omitempty"`
	ProfileCompleted bool        `json:"profileCompleted" bson:"profileCompleted"` // 只會由 false 轉 true
	Status           core.Status `json:"status" bson:"status"`
	CreatedAt        string      `json:"createdAt" bson:"createdAt"`
	UpdatedAt        string      `json:"updatedAt" bson:"updatedAt"`
	DeletedAt        string      `json:"deletedAt,omitempty" bson:"deletedAt,omitempty"`
}
