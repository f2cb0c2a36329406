package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"joingo/internal/core"
	cErr "joingo/internal/pkg/error"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

func unauthorized() error {
	return cErr.Unauthorized("Missing or invalid credentials")
}

// OIDCVerifier 驗證 IdP 簽發的 ID token；discovery 延遲到第一次驗證
type OIDCVerifier struct {
	logger     *zap.Logger
	issuer     string
	clientID   string
	httpClient *http.Client

	mu       sync.Mutex
	verifier *oidc.IDTokenVerifier
}

func NewOIDCVerifier(logger *zap.Logger, issuer, clientID string, httpClient *http.Client) *OIDCVerifier {
	return &OIDCVerifier{logger: logger, issuer: issuer, clientID: clientID, httpClient: httpClient}
}

func (v *OIDCVerifier) idTokenVerifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.verifier != nil {
		return v.verifier, nil
	}
	// provider 會保留此 ctx 的 http client 來抓 JWKS，不能帶請求的 cancel
	discoveryCtx := oidc.ClientContext(context.Background(), v.httpClient)
	provider, err := oidc.NewProvider(discoveryCtx, v.issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}
	v.verifier = provider.Verifier(&oidc.Config{ClientID: v.clientID})
	return v.verifier, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, bearer string) (*Subject, error) {
	verifier, err := v.idTokenVerifier(ctx)
	if err != nil {
		v.logger.Error("identity: oidc discovery failed", zap.Error(err))
		return nil, errUnavailable()
	}
	token, err := verifier.Verify(ctx, bearer)
	if err != nil {
		v.logger.Debug("identity: token rejected", zap.Error(err))
		return nil, unauthorized()
	}
	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := token.Claims(&claims); err != nil {
		return nil, unauthorized()
	}
	if token.Subject == "" {
		return nil, unauthorized()
	}
	return &Subject{SubjectID: token.Subject, Email: claims.Email, DisplayName: claims.Name, ExpiresAt: token.Expiry}, nil
}

// JWTVerifier 以共用密鑰驗證 HS256 token，供本機開發與測試
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

var errUnexpectedMethod = errors.New("unexpected signing method")

func (v *JWTVerifier) Verify(ctx context.Context, bearer string) (*Subject, error) {
	if len(v.secret) == 0 {
		return nil, errUnavailable()
	}
	claims := &core.Claims{}
	token, err := jwt.ParseWithClaims(bearer, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedMethod
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, unauthorized()
	}
	return &Subject{
		SubjectID:   claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// Sign 簽發本機用 token
func (v *JWTVerifier) Sign(claims core.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
