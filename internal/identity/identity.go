// Package identity talks to the managed identity provider: bearer token
// verification, password sign-in and the account admin API.
package identity

import (
	"context"
	"net/http"
	"time"

	"joingo/config"
	"joingo/internal/core"
	cErr "joingo/internal/pkg/error"

	"github.com/google/wire"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(
	NewTokenVerifier,
	NewDirectory,
	NewPasswordAuthenticator,
)

const (
	VerifierOIDC = "oidc"
	VerifierJWT  = "jwt"

	defaultTimeout = 10 * time.Second
)

// Subject 為驗證後的 token 主體
type Subject struct {
	SubjectID   string
	Email       string
	DisplayName string
	ExpiresAt   time.Time
}

type TokenVerifier interface {
	// Verify 任何失敗都回傳 Unauthorized
	Verify(ctx context.Context, bearer string) (*Subject, error)
}

// FederatedLink 帳號透過外部 IdP（google、github…）登入時的連結資訊
type FederatedLink struct {
	Alias    string
	UserID   string
	UserName string
}

// ProviderProfile 已收斂成固定欄位的 IdP 使用者資料
type ProviderProfile struct {
	SubjectID   string
	Kind        core.ProviderKind
	Email       string
	DisplayName string
	FirstName   string
	LastName    string
	PhotoURL    string
	PhoneNumber string
	Locale      string
	// Link 只有聯邦登入帳號才有
	Link *FederatedLink
}

type NewAccount struct {
	Email       string
	Password    string
	DisplayName string
	FirstName   string
	LastName    string
}

// Directory 身分提供者帳號管理
type Directory interface {
	GetProviderProfile(ctx context.Context, subjectID string) (*ProviderProfile, error)
	CreateAccount(ctx context.Context, account NewAccount) (subjectID string, err error)
	UpdateEmail(ctx context.Context, subjectID, email string) error
	UpdatePassword(ctx context.Context, subjectID, password string) error
	RevokeSessions(ctx context.Context, subjectID string) error
	DeleteAccount(ctx context.Context, subjectID string) error
}

type SignInResult struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int64  `json:"expiresIn"`
	SubjectID    string `json:"uid"`
	Email        string `json:"email,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
}

type PasswordAuthenticator interface {
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
}

func errUnavailable() error {
	return cErr.ServerError("Auth service unavailable")
}

func timeout(conf *config.Configuration) time.Duration {
	if conf.Identity.Timeout > 0 {
		return time.Duration(conf.Identity.Timeout) * time.Millisecond
	}
	return defaultTimeout
}

func tokenURL(issuer string) string {
	return issuer + "/protocol/openid-connect/token"
}

// NewTokenVerifier 依 IDENTITY.VERIFIER 選擇驗證方式
func NewTokenVerifier(logger *zap.Logger, conf *config.Configuration) TokenVerifier {
	switch conf.Identity.Verifier {
	case VerifierJWT:
		logger.Warn("identity: using shared-secret JWT verifier")
		return NewJWTVerifier(conf.Identity.JWTSecret)
	default:
		if conf.Identity.IssuerURL == "" {
			logger.Warn("identity: issuer not configured, every bearer token is rejected")
			return unavailableVerifier{}
		}
		return NewOIDCVerifier(logger, conf.Identity.IssuerURL, conf.Identity.ClientID, &http.Client{Timeout: timeout(conf)})
	}
}

// NewDirectory 未設定 admin API 時進入降級模式
func NewDirectory(logger *zap.Logger, conf *config.Configuration) Directory {
	id := conf.Identity
	if id.AdminURL == "" || id.IssuerURL == "" || id.ClientID == "" {
		logger.Warn("identity: admin API not configured, account operations are disabled")
		return unavailableDirectory{}
	}
	return NewKeycloakDirectory(logger, id.AdminURL, NewClientCredentialsClient(id.IssuerURL, id.ClientID, id.ClientSecret, timeout(conf)))
}

func NewPasswordAuthenticator(logger *zap.Logger, conf *config.Configuration, verifier TokenVerifier) PasswordAuthenticator {
	id := conf.Identity
	if id.IssuerURL == "" || id.ClientID == "" {
		return unavailableAuthenticator{}
	}
	return NewOAuth2PasswordAuthenticator(logger, tokenURL(id.IssuerURL), id.ClientID, id.ClientSecret, verifier, &http.Client{Timeout: timeout(conf)})
}

type unavailableVerifier struct{}

func (unavailableVerifier) Verify(ctx context.Context, bearer string) (*Subject, error) {
	return nil, errUnavailable()
}

type unavailableDirectory struct{}

func (unavailableDirectory) GetProviderProfile(ctx context.Context, subjectID string) (*ProviderProfile, error) {
	return nil, errUnavailable()
}
func (unavailableDirectory) CreateAccount(ctx context.Context, account NewAccount) (string, error) {
	return "", errUnavailable()
}
func (unavailableDirectory) UpdateEmail(ctx context.Context, subjectID, email string) error {
	return errUnavailable()
}
func (unavailableDirectory) UpdatePassword(ctx context.Context, subjectID, password string) error {
	return errUnavailable()
}
func (unavailableDirectory) RevokeSessions(ctx context.Context, subjectID string) error {
	return errUnavailable()
}
func (unavailableDirectory) DeleteAccount(ctx context.Context, subjectID string) error {
	return errUnavailable()
}

type unavailableAuthenticator struct{}

func (unavailableAuthenticator) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	return nil, errUnavailable()
}
