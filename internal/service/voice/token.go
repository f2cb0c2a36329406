package voice

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"joingo/internal/core"
)

var (
	ErrMalformedToken = errors.New("voice: malformed token")
	ErrBadSignature   = errors.New("voice: signature mismatch")
	ErrTokenExpired   = errors.New("voice: token expired")
)

// TokenPayload 欄位順序即序列化順序，語音服務以相同位元組驗證
type TokenPayload struct {
	MeetingID   string `json:"meetingId"`
	VoiceRoomID string `json:"voiceRoomId"`
	UserID      string `json:"userId"`
	Exp         string `json:"exp"`
}

func encodePayload(payload TokenPayload) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(payload); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignToken 產生 base64url(payload "." hex(HMAC-SHA256(secret, payload)))
func SignToken(payload TokenPayload, secret string) (string, error) {
	serialized, err := encodePayload(payload)
	if err != nil {
		return "", err
	}
	raw := string(serialized) + "." + sign(secret, serialized)
	return base64.RawURLEncoding.EncodeToString([]byte(raw)), nil
}

// VerifyToken 驗證簽章與效期；exp 不晚於 now 視為過期
func VerifyToken(token, secret string, now time.Time) (*TokenPayload, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return nil, ErrMalformedToken
	}
	idx := bytes.LastIndexByte(decoded, '.')
	if idx <= 0 || idx == len(decoded)-1 {
		return nil, ErrMalformedToken
	}
	payload, signature := decoded[:idx], string(decoded[idx+1:])

	expected := sign(secret, payload)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrBadSignature
	}

	var claims TokenPayload
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrMalformedToken
	}
	exp, err := core.ParseTime(claims.Exp)
	if err != nil {
		return nil, ErrMalformedToken
	}
	if !exp.After(now) {
		return nil, ErrTokenExpired
	}
	return &claims, nil
}
