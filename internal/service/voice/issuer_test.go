package voice

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"joingo/config"
	"joingo/internal/core"
	"joingo/internal/database/store/model"
	cErr "joingo/internal/pkg/error"
	"joingo/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type meetingMap map[string]*model.Meeting

func (m meetingMap) Get(ctx context.Context, id string) (*model.Meeting, error) {
	if id == "broken" {
		return nil, errors.New("store down")
	}
	return m[id], nil
}

var issuedAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestIssuer(voice config.Voice, meetings meetingMap) *Issuer {
	conf := &config.Configuration{Voice: voice}
	issuer := newIssuer(zap.NewNop(), &telemetry.Trace{}, &telemetry.Metric{}, conf, meetings)
	issuer.now = func() time.Time { return issuedAt }
	return issuer
}

func boolPtr(b bool) *bool { return &b }

func testMeetings() meetingMap {
	return meetingMap{
		"m-active":   {ID: "m-active", HostUID: "h", Status: core.MeetingActive, VoiceEnabled: boolPtr(true), VoiceRoomID: "room-9"},
		"m-legacy":   {ID: "m-legacy", HostUID: "h"},
		"m-closed":   {ID: "m-closed", HostUID: "h", Status: core.MeetingClosed},
		"m-inactive": {ID: "m-inactive", HostUID: "h", Status: core.MeetingInactive},
		"m-novoice":  {ID: "m-novoice", HostUID: "h", Status: core.MeetingActive, VoiceEnabled: boolPtr(false)},
	}
}

func TestIssueSession_Preconditions(t *testing.T) {
	configured := config.Voice{ServiceURL: "wss://voice.example.com", ServiceToken: "s3cret"}

	tests := []struct {
		name      string
		voice     config.Voice
		meetingID string
		code      string
	}{
		{"missing meeting", configured, "nope", cErr.CodeNotFound},
		{"closed meeting", configured, "m-closed", cErr.CodeConflict},
		{"inactive meeting", configured, "m-inactive", cErr.CodeConflict},
		{"voice disabled", configured, "m-novoice", cErr.CodeConflict},
		{"no voice service", config.Voice{}, "m-active", cErr.CodeServerError},
		{"not found checked before configuration", config.Voice{}, "nope", cErr.CodeNotFound},
		{"status checked before configuration", config.Voice{}, "m-closed", cErr.CodeConflict},
		{"store failure", configured, "broken", cErr.CodeServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestIssuer(tt.voice, testMeetings()).IssueSession(context.Background(), tt.meetingID, "u1")
			require.Error(t, err)
			assert.True(t, cErr.Is(err, tt.code), err.Error())
		})
	}
}

func TestIssueSession_SignsToken(t *testing.T) {
	issuer := newTestIssuer(config.Voice{ServiceURL: "wss://voice.example.com", ServiceToken: "s3cret"}, testMeetings())

	session, err := issuer.IssueSession(context.Background(), "m-active", "u1")
	require.NoError(t, err)

	assert.Equal(t, "room-9", session.VoiceRoomID)
	assert.Equal(t, "wss://voice.example.com", session.SignalURL)
	assert.Equal(t, "2024-03-01T10:05:00.000Z", session.ExpiresAt)
	expiresAt, err := core.ParseTime(session.ExpiresAt)
	require.NoError(t, err)
	assert.Equal(t, TokenTTL, expiresAt.Sub(issuedAt))

	// 以語音服務的方式重新計算 HMAC
	raw, err := base64.RawURLEncoding.DecodeString(session.Token)
	require.NoError(t, err)
	idx := strings.LastIndex(string(raw), ".")
	payload, digest := raw[:idx], string(raw[idx+1:])
	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(payload)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), digest)
	assert.Equal(t, `{"meetingId":"m-active","voiceRoomId":"room-9","userId":"u1","exp":"2024-03-01T10:05:00.000Z"}`, string(payload))

	claims, err := VerifyToken(session.Token, "s3cret", issuedAt)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestIssueSession_WithoutSecretOmitsToken(t *testing.T) {
	issuer := newTestIssuer(config.Voice{ServiceURL: "wss://voice.example.com"}, testMeetings())

	session, err := issuer.IssueSession(context.Background(), "m-legacy", "u1")
	require.NoError(t, err)
	assert.Empty(t, session.Token)
	assert.Equal(t, "m-legacy", session.VoiceRoomID)
	assert.False(t, issuer.Config().RequiresToken)
}

func TestVerifyToken_Rejects(t *testing.T) {
	payload := TokenPayload{MeetingID: "m1", VoiceRoomID: "m1", UserID: "u1", Exp: core.FormatTime(issuedAt.Add(TokenTTL))}
	token, err := SignToken(payload, "s3cret")
	require.NoError(t, err)

	raw, _ := base64.RawURLEncoding.DecodeString(token)
	tampered := base64.RawURLEncoding.EncodeToString([]byte(strings.Replace(string(raw), `"userId":"u1"`, `"userId":"u2"`, 1)))

	tests := []struct {
		name   string
		token  string
		secret string
		now    time.Time
		want   error
	}{
		{"wrong secret", token, "other", issuedAt, ErrBadSignature},
		{"tampered payload", tampered, "s3cret", issuedAt, ErrBadSignature},
		{"expired", token, "s3cret", issuedAt.Add(TokenTTL), ErrTokenExpired},
		{"not base64", "%%%", "s3cret", issuedAt, ErrMalformedToken},
		{"no signature", base64.RawURLEncoding.EncodeToString([]byte("payload")), "s3cret", issuedAt, ErrMalformedToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyToken(tt.token, tt.secret, tt.now)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConfig(t *testing.T) {
	cfg := newTestIssuer(config.Voice{}, nil).Config()
	assert.Nil(t, cfg.VoiceServerURL)
	assert.Nil(t, cfg.SignalURL)
	assert.Equal(t, []ICEServer{{URLs: "stun:stun.l.google.com:19302"}}, cfg.ICEServers)

	cfg = newTestIssuer(config.Voice{
		ServiceURL:      "https://voice.example.com",
		WebRTCSignalURL: "wss://signal.example.com",
		ICEServerURL:    "turn:turn.example.com:3478",
		ICEUsername:     "user",
		ICECredential:   "pass",
		ServiceToken:    "s3cret",
	}, nil).Config()
	assert.Equal(t, "https://voice.example.com", *cfg.VoiceServerURL)
	assert.Equal(t, "wss://signal.example.com", *cfg.SignalURL)
	assert.Equal(t, "turn", strings.SplitN(cfg.ICEServers[0].URLs, ":", 2)[0])
	assert.True(t, cfg.RequiresToken)
}
