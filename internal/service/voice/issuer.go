// Package voice issues short-lived, HMAC-signed capability tokens for the
// external voice signaling service.
package voice

import (
	"context"
	"time"

	"joingo/config"
	"joingo/internal/core"
	"joingo/internal/database/store/model"
	"joingo/internal/database/store/repository"
	cErr "joingo/internal/pkg/error"
	"joingo/internal/telemetry"

	"go.uber.org/zap"
)

// TokenTTL 固定五分鐘，沒有續期
const TokenTTL = 5 * time.Minute

const defaultICEServer = "stun:stun.l.google.com:19302"

type ICEServer struct {
	URLs       string `json:"urls"`
	Username   string `json:"username,omitempty"`
	Credential string `json:"credential,omitempty"`
}

type Config struct {
	VoiceServerURL *string     `json:"voiceServerUrl"`
	SignalURL      *string     `json:"signalUrl"`
	ICEServers     []ICEServer `json:"iceServers"`
	RequiresToken  bool        `json:"requiresToken"`
}

type Session struct {
	MeetingID      string      `json:"meetingId"`
	VoiceRoomID    string      `json:"voiceRoomId"`
	UserID         string      `json:"userId"`
	VoiceServerURL string      `json:"voiceServerUrl"`
	SignalURL      string      `json:"signalUrl"`
	ICEServers     []ICEServer `json:"iceServers"`
	Token          string      `json:"token,omitempty"`
	ExpiresAt      string      `json:"expiresAt"`
}

// MeetingReader 不存在時回傳 nil, nil
type MeetingReader interface {
	Get(ctx context.Context, id string) (*model.Meeting, error)
}

type Issuer struct {
	trace    *telemetry.Trace
	metric   *telemetry.Metric
	logger   *zap.Logger
	config   *config.Configuration
	meetings MeetingReader
	now      func() time.Time
}

func NewIssuer(logger *zap.Logger, trace *telemetry.Trace, metric *telemetry.Metric, config *config.Configuration, meetings *repository.MeetingRepository) *Issuer {
	return newIssuer(logger, trace, metric, config, meetings)
}

func newIssuer(logger *zap.Logger, trace *telemetry.Trace, metric *telemetry.Metric, config *config.Configuration, meetings MeetingReader) *Issuer {
	return &Issuer{trace: trace, metric: metric, logger: logger, config: config, meetings: meetings, now: time.Now}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (i *Issuer) iceServers() []ICEServer {
	v := i.config.Voice
	if v.ICEServerURL == "" {
		return []ICEServer{{URLs: defaultICEServer}}
	}
	return []ICEServer{{URLs: v.ICEServerURL, Username: v.ICEUsername, Credential: v.ICECredential}}
}

// Config 提供前端連線語音服務所需設定
func (i *Issuer) Config() Config {
	v := i.config.Voice
	signal := v.WebRTCSignalURL
	if signal == "" {
		signal = v.ServiceURL
	}
	return Config{
		VoiceServerURL: optional(v.ServiceURL),
		SignalURL:      optional(signal),
		ICEServers:     i.iceServers(),
		RequiresToken:  v.ServiceToken != "",
	}
}

// IssueSession 依序檢查：會議存在、狀態為 active、語音未停用、語音服務已設定
func (i *Issuer) IssueSession(ctx context.Context, meetingID, userID string) (_ *Session, returnedError error) {
	ctx, span, end := i.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	meeting, err := i.meetings.Get(ctx, meetingID)
	if err != nil {
		i.metric.IncVoiceSession("error")
		i.logger.Error("voice session meeting lookup failed", zap.String("meetingId", meetingID), zap.Error(err))
		return nil, cErr.DatabaseError("Failed to load meeting")
	}
	if meeting == nil {
		i.metric.IncVoiceSession("not_found")
		return nil, cErr.NotFound("Meeting not found", cErr.MEETING_NOT_FOUND)
	}
	if meeting.Status != "" && meeting.Status != core.MeetingActive {
		i.metric.IncVoiceSession("inactive")
		return nil, cErr.Conflict("Meeting is not active", cErr.MEETING_NOT_ACTIVE)
	}
	if meeting.VoiceEnabled != nil && !*meeting.VoiceEnabled {
		i.metric.IncVoiceSession("disabled")
		return nil, cErr.Conflict("Voice chat disabled for this meeting", cErr.VOICE_DISABLED)
	}
	cfg := i.Config()
	if cfg.VoiceServerURL == nil {
		i.metric.IncVoiceSession("unconfigured")
		return nil, cErr.ServerError("Voice service unavailable")
	}

	session := &Session{
		MeetingID:      meetingID,
		VoiceRoomID:    meeting.RoomID(),
		UserID:         userID,
		VoiceServerURL: *cfg.VoiceServerURL,
		SignalURL:      *cfg.SignalURL,
		ICEServers:     cfg.ICEServers,
		ExpiresAt:      core.FormatTime(i.now().Add(TokenTTL)),
	}
	if secret := i.config.Voice.ServiceToken; secret != "" {
		token, err := SignToken(TokenPayload{
			MeetingID:   session.MeetingID,
			VoiceRoomID: session.VoiceRoomID,
			UserID:      session.UserID,
			Exp:         session.ExpiresAt,
		}, secret)
		if err != nil {
			i.metric.IncVoiceSession("error")
			return nil, cErr.InternalServer("Failed to sign voice token")
		}
		session.Token = token
	}

	i.trace.ApplyTraceAttributes(span, core.TraceVoiceSessionMeta{
		MeetingID:   meetingID,
		VoiceRoomID: session.VoiceRoomID,
		UserID:      userID,
		Signed:      session.Token != "",
		ExpiresAt:   session.ExpiresAt,
	})
	i.metric.IncVoiceSession("issued")
	return session, nil
}
