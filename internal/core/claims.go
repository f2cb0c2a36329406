package core

import "github.com/golang-jwt/jwt/v4"

// Claims 為本機 HS256 驗證模式使用的 token 內容；subject 即 uid
type Claims struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}
