package dto

import (
	"joingo/internal/core"
	"joingo/internal/service/profile"
)

// SyncProfileDto 自助更新個人資料；未帶的欄位保持不變
type SyncProfileDto struct {
	DisplayName *string    `json:"displayName,omitempty" binding:"omitempty,min=2,max=60"`
	FirstName   *string    `json:"firstName,omitempty" binding:"omitempty,max=80"`
	LastName    *string    `json:"lastName,omitempty" binding:"omitempty,max=80"`
	AvatarURL   *string    `json:"avatarUrl,omitempty" binding:"omitempty,url"`
	PhoneNumber *string    `json:"phoneNumber,omitempty" binding:"omitempty,max=32"`
	Locale      *string    `json:"locale,omitempty" binding:"omitempty,max=16"`
	Role        *core.Role `json:"role,omitempty" binding:"omitempty,oneof=host participant"`
}

func (d SyncProfileDto) Partial() profile.Partial {
	return profile.Partial{
		DisplayName: d.DisplayName,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		AvatarURL:   d.AvatarURL,
		PhoneNumber: d.PhoneNumber,
		Locale:      d.Locale,
		Role:        d.Role,
	}
}

type DeleteAccountQuery struct {
	Full bool `form:"full"`
}
