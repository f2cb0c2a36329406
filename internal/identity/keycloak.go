package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"joingo/internal/core"
	cErr "joingo/internal/pkg/error"
	"joingo/internal/pkg/httpbody"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// NewClientCredentialsClient 以 service account 取得 admin API 用的 access token，token 會自動更新
func NewClientCredentialsClient(issuer, clientID, clientSecret string, timeout time.Duration) *http.Client {
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL(issuer),
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
	client := conf.Client(ctx)
	client.Timeout = timeout
	return client
}

// KeycloakDirectory 透過 Keycloak admin REST API 管理帳號
// adminURL 形如 https://kc/admin/realms/<realm>
type KeycloakDirectory struct {
	logger   *zap.Logger
	adminURL string
	client   *http.Client
}

func NewKeycloakDirectory(logger *zap.Logger, adminURL string, client *http.Client) *KeycloakDirectory {
	return &KeycloakDirectory{logger: logger, adminURL: strings.TrimRight(adminURL, "/"), client: client}
}

type keycloakCredential struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

type keycloakUser struct {
	ID            string               `json:"id,omitempty"`
	Username      string               `json:"username,omitempty"`
	Email         string               `json:"email,omitempty"`
	FirstName     string               `json:"firstName,omitempty"`
	LastName      string               `json:"lastName,omitempty"`
	Enabled       bool                 `json:"enabled"`
	EmailVerified bool                 `json:"emailVerified"`
	Attributes    map[string][]string  `json:"attributes,omitempty"`
	Credentials   []keycloakCredential `json:"credentials,omitempty"`
}

type keycloakFederatedIdentity struct {
	IdentityProvider string `json:"identityProvider"`
	UserID           string `json:"userId"`
	UserName         string `json:"userName"`
}

func (d *KeycloakDirectory) endpoint(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return d.adminURL + "/" + path.Join(escaped...)
}

// do 送出請求並回傳狀態碼與解壓後內容；連線層錯誤視為 502
func (d *KeycloakDirectory) do(ctx context.Context, method, target string, body any) (int, []byte, http.Header, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, nil, nil, err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br, zstd")

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Error("identity: admin request failed", zap.String("method", method), zap.Error(err))
		return 0, nil, nil, cErr.ExternalRequestError("Identity provider unreachable")
	}
	defer resp.Body.Close()
	raw, err := httpbody.Read(resp)
	if err != nil {
		return resp.StatusCode, nil, resp.Header, cErr.ExternalRequestError("Identity provider response unreadable")
	}
	return resp.StatusCode, raw, resp.Header, nil
}

func (d *KeycloakDirectory) unexpected(op string, status int, body []byte) error {
	d.logger.Error("identity: unexpected admin response",
		zap.String("op", op),
		zap.Int("status", status),
		zap.ByteString("body", truncate(body, 256)),
	)
	return cErr.InternalServer(fmt.Sprintf("Identity provider %s failed", op), cErr.EXTERNAL_REQUEST_ERROR)
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

func (d *KeycloakDirectory) CreateAccount(ctx context.Context, account NewAccount) (string, error) {
	user := keycloakUser{
		Username:  strings.ToLower(account.Email),
		Email:     account.Email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Enabled:   true,
		Credentials: []keycloakCredential{
			{Type: "password", Value: account.Password},
		},
	}
	if account.DisplayName != "" {
		user.Attributes = map[string][]string{"displayName": {account.DisplayName}}
	}
	status, body, header, err := d.do(ctx, http.MethodPost, d.endpoint("users"), user)
	if err != nil {
		return "", err
	}
	switch status {
	case http.StatusCreated:
		// Location: .../users/<id>
		location := header.Get("Location")
		id := path.Base(location)
		if location == "" || id == "" || id == "." || id == "/" {
			return "", d.unexpected("create account", status, body)
		}
		return id, nil
	case http.StatusConflict:
		return "", cErr.Conflict("Email already in use", cErr.EMAIL_EXISTS)
	case http.StatusBadRequest:
		d.logger.Error("identity: create account rejected", zap.ByteString("body", truncate(body, 256)))
		return "", cErr.BadRequest("Identity provider rejected the account; check provider configuration")
	default:
		return "", d.unexpected("create account", status, body)
	}
}

func (d *KeycloakDirectory) GetProviderProfile(ctx context.Context, subjectID string) (*ProviderProfile, error) {
	status, body, _, err := d.do(ctx, http.MethodGet, d.endpoint("users", subjectID), nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, cErr.NotFound("Identity account not found", cErr.USER_NOT_FOUND)
	default:
		return nil, d.unexpected("get account", status, body)
	}
	var user keycloakUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, d.unexpected("decode account", status, body)
	}

	status, body, _, err = d.do(ctx, http.MethodGet, d.endpoint("users", subjectID, "federated-identity"), nil)
	if err != nil {
		return nil, err
	}
	var links []keycloakFederatedIdentity
	if status == http.StatusOK {
		if err := json.Unmarshal(body, &links); err != nil {
			return nil, d.unexpected("decode federated identity", status, body)
		}
	} else {
		d.logger.Warn("identity: federated identity lookup failed", zap.Int("status", status))
	}
	return narrowProfile(subjectID, user, links), nil
}

func (d *KeycloakDirectory) UpdateEmail(ctx context.Context, subjectID, email string) error {
	// PUT 只更新帶出的欄位
	payload := map[string]any{"email": email, "emailVerified": false}
	status, body, _, err := d.do(ctx, http.MethodPut, d.endpoint("users", subjectID), payload)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusConflict:
		return cErr.Conflict("Email already in use", cErr.EMAIL_EXISTS)
	case http.StatusNotFound:
		return cErr.NotFound("Identity account not found", cErr.USER_NOT_FOUND)
	case http.StatusBadRequest:
		return cErr.BadRequest("Invalid email")
	default:
		return d.unexpected("update email", status, body)
	}
}

func (d *KeycloakDirectory) UpdatePassword(ctx context.Context, subjectID, password string) error {
	cred := keycloakCredential{Type: "password", Value: password}
	status, body, _, err := d.do(ctx, http.MethodPut, d.endpoint("users", subjectID, "reset-password"), cred)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusNotFound:
		return cErr.NotFound("Identity account not found", cErr.USER_NOT_FOUND)
	case http.StatusBadRequest:
		// 密碼政策不符
		return cErr.BadRequest("Password rejected by identity provider")
	default:
		return d.unexpected("update password", status, body)
	}
}

func (d *KeycloakDirectory) RevokeSessions(ctx context.Context, subjectID string) error {
	status, body, _, err := d.do(ctx, http.MethodPost, d.endpoint("users", subjectID, "logout"), nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusNotFound:
		return cErr.NotFound("Identity account not found", cErr.USER_NOT_FOUND)
	default:
		return d.unexpected("revoke sessions", status, body)
	}
}

func (d *KeycloakDirectory) DeleteAccount(ctx context.Context, subjectID string) error {
	status, body, _, err := d.do(ctx, http.MethodDelete, d.endpoint("users", subjectID), nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusNotFound:
		return cErr.NotFound("Identity account not found", cErr.USER_NOT_FOUND)
	default:
		return d.unexpected("delete account", status, body)
	}
}

func firstAttr(attrs map[string][]string, names ...string) string {
	for _, name := range names {
		if values := attrs[name]; len(values) > 0 && values[0] != "" {
			return values[0]
		}
	}
	return ""
}

// narrowProfile 將 Keycloak 原始資料收斂為 ProviderProfile；只取第一個聯邦連結
func narrowProfile(subjectID string, user keycloakUser, links []keycloakFederatedIdentity) *ProviderProfile {
	profile := &ProviderProfile{
		SubjectID:   subjectID,
		Kind:        core.ProviderPassword,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		DisplayName: firstAttr(user.Attributes, "displayName", "name"),
		PhotoURL:    firstAttr(user.Attributes, "picture", "avatarUrl"),
		PhoneNumber: firstAttr(user.Attributes, "phoneNumber", "phone_number"),
		Locale:      firstAttr(user.Attributes, "locale"),
	}
	if profile.DisplayName == "" {
		profile.DisplayName = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}
	if len(links) > 0 && links[0].IdentityProvider != "" {
		link := links[0]
		profile.Kind = core.ProviderKindFromAlias(link.IdentityProvider)
		profile.Link = &FederatedLink{Alias: link.IdentityProvider, UserID: link.UserID, UserName: link.UserName}
	}
	return profile
}
