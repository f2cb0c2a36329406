// Package profile reconciles partial profile updates from self-service
// edits, identity-provider sync and registration into one user document.
package profile

import (
	"time"

	"joingo/internal/core"
	"joingo/internal/database/store/model"
)

// Partial 為一次更新帶入的欄位；nil 代表呼叫端沒有提供
type Partial struct {
	UID         string
	DisplayName *string
	FirstName   *string
	LastName    *string
	Email       *string
	AvatarURL   *string
	PhoneNumber *string
	Locale      *string
	Role        *core.Role

	// 聯邦身分資訊，非空即覆寫
	Provider    string
	ProviderUID string
	ProviderID  string
}

// IsEmpty 沒有任何可套用欄位
func (p Partial) IsEmpty() bool {
	for _, f := range personalFields {
		if f.incoming(&p) != nil {
			return false
		}
	}
	return p.Role == nil && p.Provider == "" && p.ProviderUID == "" && p.ProviderID == ""
}

type Policy struct {
	// IncomingWins 為 false 時，既有非空值優先
	IncomingWins bool
	// PreserveCompleted 為 true 且檔案已完成時，個人欄位一律不覆寫（role 除外）
	PreserveCompleted bool
}

var (
	SelfServicePolicy  = Policy{IncomingWins: true, PreserveCompleted: false}
	ProviderSyncPolicy = Policy{IncomingWins: false, PreserveCompleted: true}
)

type personalField struct {
	name     string
	incoming func(*Partial) *string
	current  func(*model.User) *string
}

// personalFields 套用順序固定
var personalFields = []personalField{
	{"displayName", func(p *Partial) *string { return p.DisplayName }, func(u *model.User) *string { return &u.DisplayName }},
	{"firstName", func(p *Partial) *string { return p.FirstName }, func(u *model.User) *string { return &u.FirstName }},
	{"lastName", func(p *Partial) *string { return p.LastName }, func(u *model.User) *string { return &u.LastName }},
	{"email", func(p *Partial) *string { return p.Email }, func(u *model.User) *string { return &u.Email }},
	{"avatarUrl", func(p *Partial) *string { return p.AvatarURL }, func(u *model.User) *string { return &u.AvatarURL }},
	{"phoneNumber", func(p *Partial) *string { return p.PhoneNumber }, func(u *model.User) *string { return &u.PhoneNumber }},
	{"locale", func(p *Partial) *string { return p.Locale }, func(u *model.User) *string { return &u.Locale }},
}

// Merge computes the next document from current (nil when absent) and
// incoming. It never mutates current.
func Merge(current *model.User, incoming Partial, policy Policy, now time.Time) *model.User {
	ts := core.FormatTime(now)

	var next model.User
	if current != nil {
		next = *current
	} else {
		next = model.User{
			UID:       incoming.UID,
			Status:    core.StatusActive,
			CreatedAt: ts,
		}
	}

	protected := policy.PreserveCompleted && next.ProfileCompleted
	if !protected {
		for _, f := range personalFields {
			value := f.incoming(&incoming)
			if value == nil {
				continue
			}
			target := f.current(&next)
			if policy.IncomingWins || *target == "" {
				*target = *value
			}
		}
	}
	if incoming.Role != nil && (policy.IncomingWins || next.Role == "") {
		next.Role = *incoming.Role
	}

	if incoming.Provider != "" {
		next.Provider = incoming.Provider
	}
	if incoming.ProviderUID != "" {
		next.ProviderUID = incoming.ProviderUID
	}
	if incoming.ProviderID != "" {
		next.ProviderID = incoming.ProviderID
	}

	next.UpdatedAt = ts
	next.ProfileCompleted = next.ProfileCompleted || IsComplete(&next)
	return &next
}

// IsComplete 名、姓、信箱皆有值
func IsComplete(u *model.User) bool {
	return u.FirstName != "" && u.LastName != "" && u.Email != ""
}

// String 轉成 Partial 欄位用的指標；空字串視為未提供
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func RolePtr(r core.Role) *core.Role {
	if r == "" {
		return nil
	}
	return &r
}
