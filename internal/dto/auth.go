package dto

type RegisterDto struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"displayName,omitempty" binding:"omitempty,max=60"`
	FirstName   string `json:"firstName,omitempty" binding:"omitempty,max=80"`
	LastName    string `json:"lastName,omitempty" binding:"omitempty,max=80"`
	// Age 僅為相容既有前端而接受並驗證，不寫入使用者檔案
	Age         *int   `json:"age,omitempty" binding:"omitempty,min=0,max=150"`
}

type LoginDto struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangeEmailDto struct {
	Email string `json:"email" binding:"required,email"`
}

type ChangePasswordDto struct {
	Password string `json:"password" binding:"required,min=6"`
}

// ProviderSyncDto 前端從 IdP 取得的補充資料
type ProviderSyncDto struct {
	DisplayName string `json:"displayName,omitempty" binding:"omitempty,max=100"`
	FirstName   string `json:"firstName,omitempty" binding:"omitempty,max=80"`
	LastName    string `json:"lastName,omitempty" binding:"omitempty,max=80"`
	Email       string `json:"email,omitempty" binding:"omitempty,email"`
	AvatarURL   string `json:"avatarUrl,omitempty" binding:"omitempty,url"`
	PhoneNumber string `json:"phoneNumber,omitempty" binding:"omitempty,max=32"`
	Locale      string `json:"locale,omitempty" binding:"omitempty,max=16"`
	Provider    string `json:"provider,omitempty" binding:"omitempty,max=40"`
}
