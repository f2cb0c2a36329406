package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"joingo/config"
	"joingo/internal/core"
	"joingo/internal/database"
	client "joingo/internal/database/client"
	fluentdRepo "joingo/internal/database/fluentd/repository"
	redisRepo "joingo/internal/database/redis/repository"
	"joingo/internal/database/store/model"
	"joingo/internal/database/store/repository"
	"joingo/internal/handler"
	"joingo/internal/identity"
	"joingo/internal/middleware"
	cErr "joingo/internal/pkg/error"
	"joingo/internal/realtime/presence"
	"joingo/internal/service"
	"joingo/internal/service/voice"
	"joingo/internal/telemetry"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testJWTSecret   = "router-test-secret"
	testVoiceSecret = "voice-secret"
)

type noopPoster struct{}

func (noopPoster) Post(ctx context.Context, tag string, rec map[string]any) error { return nil }
func (noopPoster) Close() error                                                 { return nil }

type fakeDirectory struct {
	accounts map[string]string
	revoked  []string
}

func (d *fakeDirectory) GetProviderProfile(ctx context.Context, subjectID string) (*identity.ProviderProfile, error) {
	email, ok := d.accounts[subjectID]
	if !ok {
		return nil, cErr.NotFound("User not found", cErr.USER_NOT_FOUND)
	}
	return &identity.ProviderProfile{
		SubjectID:   subjectID,
		Kind:        core.ProviderGitHub,
		Email:       email,
		DisplayName: "Octo Cat",
		Link:        &identity.FederatedLink{Alias: "github", UserID: "gh-42"},
	}, nil
}

func (d *fakeDirectory) CreateAccount(ctx context.Context, account identity.NewAccount) (string, error) {
	for _, email := range d.accounts {
		if email == account.Email {
			return "", cErr.Conflict("Email already in use", cErr.EMAIL_EXISTS)
		}
	}
	uid := "uid-" + account.Email
	d.accounts[uid] = account.Email
	return uid, nil
}

func (d *fakeDirectory) UpdateEmail(ctx context.Context, subjectID, email string) error {
	d.accounts[subjectID] = email
	return nil
}

func (d *fakeDirectory) UpdatePassword(ctx context.Context, subjectID, password string) error {
	return nil
}

func (d *fakeDirectory) RevokeSessions(ctx context.Context, subjectID string) error {
	d.revoked = append(d.revoked, subjectID)
	return nil
}

func (d *fakeDirectory) DeleteAccount(ctx context.Context, subjectID string) error {
	delete(d.accounts, subjectID)
	return nil
}

type rejectingAuthenticator struct{}

func (rejectingAuthenticator) SignIn(ctx context.Context, email, password string) (*identity.SignInResult, error) {
	return nil, cErr.Unauthorized("Invalid email or password")
}

type testApp struct {
	engine   *gin.Engine
	verifier *identity.JWTVerifier
	messages *service.MessageService
	registry *presence.Registry
}

// newTestApp 與 app 啟動相同：memory driver 的 store，indexed 時先建立索引
func newTestApp(t *testing.T, indexed bool) *testApp {
	t.Helper()
	logger := zap.NewNop()
	trace := &telemetry.Trace{}
	metric := &telemetry.Metric{}

	conf := &config.Configuration{}
	conf.App.Env = "test"
	conf.App.Name = "joingo"
	conf.RateLimit.AuthLimit = 100
	conf.RateLimit.AuthWindowSec = 60
	conf.RateLimit.VoiceLimit = 100
	conf.RateLimit.VoiceWindowSec = 60
	conf.Voice.ServiceURL = "https://voice.example.com"
	conf.Voice.ServiceToken = testVoiceSecret
	conf.Store.Driver = string(core.StoreDriverMemory)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	redisClient := client.NewRedisClientFrom(logger, rdb)
	blacklist := redisRepo.NewTokenBlacklistRepository(trace, redisClient)
	limiter := redisRepo.NewRateLimiterRepository(trace, redisClient)
	logs := fluentdRepo.NewLogRepository(conf, noopPoster{})

	store, cleanup, err := database.NewDocumentStore(logger, conf)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	userRepo := repository.NewUserRepository(logger, trace, store)
	meetingRepo := repository.NewMeetingRepository(logger, trace, store)
	messageRepo := repository.NewMessageRepository(logger, trace, store)
	if indexed {
		require.NoError(t, repository.NewStoreRepository(userRepo, meetingRepo, messageRepo).EnsureIndexes(context.Background()))
	}

	verifier := identity.NewJWTVerifier(testJWTSecret)
	directory := &fakeDirectory{accounts: map[string]string{}}

	users := service.NewUserService(logger, trace, metric, userRepo)
	meetings := service.NewMeetingService(logger, trace, metric, meetingRepo)
	messages := service.NewMessageService(logger, trace, messageRepo)
	auth := service.NewAuthService(logger, trace, directory, rejectingAuthenticator{}, blacklist, users)
	storage, err := client.NewObjectStorage(logger, conf)
	require.NoError(t, err)
	avatars := service.NewAvatarService(logger, trace, storage, users)
	issuer := voice.NewIssuer(logger, trace, metric, conf, meetingRepo)
	registry := presence.NewRegistry()
	health := service.NewHealthService()

	authMiddleware := middleware.NewAuth(logger, trace, verifier, blacklist)
	rateLimit := middleware.NewRateLimit(logger, trace, metric, limiter)
	healthHandler := handler.NewHealthHandler(health, conf)

	engine := NewRouter(
		conf,
		middleware.NewTraceEntry(trace, metric, conf),
		middleware.NewRecovery(logger, trace, metric, logs),
		middleware.NewCors(trace, conf),
		middleware.NewLogger(logger, trace, conf, logs),
		middleware.NewResponse(logger, trace, logs),
		healthHandler,
		NewHealthRouter(healthHandler),
		NewAuthRouter(conf, handler.NewAuthHandler(trace, auth), authMiddleware, rateLimit),
		NewUserRouter(handler.NewUserHandler(trace, users, auth, avatars), authMiddleware),
		NewMeetingRouter(handler.NewMeetingHandler(trace, meetings, messages), authMiddleware),
		NewVoiceRouter(conf, handler.NewVoiceHandler(trace, issuer, registry), authMiddleware, rateLimit),
	)
	return &testApp{engine: engine, verifier: verifier, messages: messages, registry: registry}
}

func (a *testApp) token(t *testing.T, uid string) string {
	t.Helper()
	token, err := a.verifier.Sign(core.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)
	return token
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *testApp) call(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var out envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func TestRouter_Health(t *testing.T) {
	app := newTestApp(t, true)
	w := httptest.NewRecorder()
	app.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	app.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/readiness", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_RegisterAndProfile(t *testing.T) {
	app := newTestApp(t, true)

	status, body := app.call(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "ann@example.com", "password": "123", "firstName": "Ann",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, cErr.CodeBadRequest, body.Error.Code)

	status, body = app.call(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "ann@example.com", "password": "secret1", "firstName": "Ann", "lastName": "Lee",
	})
	require.Equal(t, http.StatusCreated, status)
	var registered service.RegisterResult
	require.NoError(t, json.Unmarshal(body.Data, &registered))
	assert.Equal(t, "uid-ann@example.com", registered.UID)
	assert.Equal(t, "Ann Lee", registered.DisplayName)

	status, _ = app.call(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "ann@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = app.call(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	token := app.token(t, registered.UID)
	status, body = app.call(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	var user model.User
	require.NoError(t, json.Unmarshal(body.Data, &user))
	assert.Equal(t, core.RoleParticipant, user.Role)
	assert.Equal(t, "ann@example.com", user.Email)

	status, body = app.call(t, http.MethodPut, "/api/users/me", token, map[string]any{"displayName": "Annie", "locale": "zh-TW"})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body.Data, &user))
	assert.Equal(t, "Annie", user.DisplayName)
	assert.Equal(t, "Lee", user.LastName)

	status, _ = app.call(t, http.MethodPut, "/api/users/me", app.token(t, "ghost"), map[string]any{"displayName": "Ghost"})
	assert.Equal(t, http.StatusNotFound, status)

	status, body = app.call(t, http.MethodPost, "/api/auth/provider-sync", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body.Data, &user))
	assert.Equal(t, "github.com", user.Provider)
	assert.Equal(t, "gh-42", user.ProviderUID)

	status, body = app.call(t, http.MethodDelete, "/api/users/me?full=true", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body.Data, &user))
	assert.Equal(t, core.StatusDeleted, user.Status)
	assert.NotEmpty(t, user.DeletedAt)
}

func TestRouter_LoginFailureAndLogout(t *testing.T) {
	app := newTestApp(t, true)

	status, body := app.call(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "a@b.co", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, "Invalid email or password", body.Error.Message)

	token := app.token(t, "u-logout")
	status, _ = app.call(t, http.MethodPost, "/api/users/sync", token, map[string]any{"displayName": "Lo"})
	require.Equal(t, http.StatusOK, status)

	status, _ = app.call(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = app.call(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, "Token has been revoked", body.Error.Message)
}

func TestRouter_MeetingLifecycle(t *testing.T) {
	app := newTestApp(t, true)
	host := app.token(t, "host-1")
	guest := app.token(t, "guest-1")

	status, _ := app.call(t, http.MethodPost, "/api/meetings", host, map[string]any{"maxParticipants": 11})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := app.call(t, http.MethodPost, "/api/meetings", host, map[string]any{"maxParticipants": 4})
	require.Equal(t, http.StatusCreated, status)
	var meeting model.Meeting
	require.NoError(t, json.Unmarshal(body.Data, &meeting))
	assert.Equal(t, "host-1", meeting.HostUID)
	assert.Equal(t, core.MeetingActive, meeting.Status)
	assert.Equal(t, 4, meeting.MaxParticipants)

	status, _ = app.call(t, http.MethodGet, "/api/meetings/"+meeting.ID, "", nil)
	require.Equal(t, http.StatusOK, status)

	status, body = app.call(t, http.MethodGet, "/api/meetings", host, nil)
	require.Equal(t, http.StatusOK, status)
	var listed []model.Meeting
	require.NoError(t, json.Unmarshal(body.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, meeting.ID, listed[0].ID)

	status, body = app.call(t, http.MethodGet, "/api/meetings", guest, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body.Data))

	require.NoError(t, app.messages.Save(context.Background(), &model.Message{
		ID: "m1", MeetingID: meeting.ID, SenderUID: "guest-1", UserName: "Guest", Text: "hi", CreatedAt: "2024-03-01T10:00:00.000Z",
	}))
	status, body = app.call(t, http.MethodGet, "/api/meetings/"+meeting.ID+"/messages?limit=10", guest, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"messageId":"m1","meetingId":"`+meeting.ID+`","userId":"guest-1","userName":"Guest","message":"hi","timestamp":"2024-03-01T10:00:00.000Z"}]`, string(body.Data))

	status, _ = app.call(t, http.MethodPatch, "/api/meetings/"+meeting.ID+"/status", guest, map[string]any{"status": "closed"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = app.call(t, http.MethodPatch, "/api/meetings/"+meeting.ID+"/status", host, map[string]any{"status": "paused"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = app.call(t, http.MethodPatch, "/api/meetings/"+meeting.ID+"/status", host, map[string]any{"status": "closed"})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body.Data, &meeting))
	assert.Equal(t, core.MeetingClosed, meeting.Status)

	status, body = app.call(t, http.MethodGet, "/api/meetings/missing-id", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, cErr.CodeNotFound, body.Error.Code)
}

func TestRouter_Voice(t *testing.T) {
	app := newTestApp(t, true)
	host := app.token(t, "host-v")

	status, body := app.call(t, http.MethodGet, "/api/voice/config", host, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"voiceServerUrl":"https://voice.example.com","signalUrl":"https://voice.example.com","iceServers":[{"urls":"stun:stun.l.google.com:19302"}],"requiresToken":true}`, string(body.Data))

	status, body = app.call(t, http.MethodPost, "/api/meetings", host, nil)
	require.Equal(t, http.StatusCreated, status)
	var meeting model.Meeting
	require.NoError(t, json.Unmarshal(body.Data, &meeting))

	status, body = app.call(t, http.MethodPost, "/api/voice/session", host, map[string]any{"meetingId": meeting.ID})
	require.Equal(t, http.StatusOK, status)
	var session voice.Session
	require.NoError(t, json.Unmarshal(body.Data, &session))
	assert.Equal(t, meeting.ID, session.VoiceRoomID)
	payload, err := voice.VerifyToken(session.Token, testVoiceSecret, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "host-v", payload.UserID)

	status, _ = app.call(t, http.MethodPost, "/api/voice/session", host, map[string]any{"meetingId": "abc"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = app.call(t, http.MethodPost, "/api/voice/session", host, map[string]any{"meetingId": "nope-nope"})
	assert.Equal(t, http.StatusNotFound, status)

	app.registry.Join(meeting.ID, "peer-a")
	status, body = app.call(t, http.MethodGet, "/api/voice/rooms/"+meeting.ID+"/peers", host, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"roomId":"`+meeting.ID+`","peers":["peer-a"]}`, string(body.Data))
}

func TestRouter_MessagesWithoutIndexes(t *testing.T) {
	app := newTestApp(t, false)
	host := app.token(t, "host-2")

	status, body := app.call(t, http.MethodPost, "/api/meetings", host, nil)
	require.Equal(t, http.StatusCreated, status)
	var meeting model.Meeting
	require.NoError(t, json.Unmarshal(body.Data, &meeting))

	for i, ts := range []string{"2024-03-01T10:00:00.000Z", "2024-03-01T10:00:02.000Z", "2024-03-01T10:00:01.000Z"} {
		require.NoError(t, app.messages.Save(context.Background(), &model.Message{
			ID: "m" + strconv.Itoa(i), MeetingID: meeting.ID, Text: "hi", CreatedAt: ts,
		}))
	}

	status, body = app.call(t, http.MethodGet, "/api/meetings/"+meeting.ID+"/messages?limit=2", host, nil)
	require.Equal(t, http.StatusOK, status)
	var messages []struct {
		MessageID string `json:"messageId"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &messages))
	require.Len(t, messages, 2)
	assert.Equal(t, "m2", messages[0].MessageID)
	assert.Equal(t, "m1", messages[1].MessageID)

	status, body = app.call(t, http.MethodGet, "/api/meetings", host, nil)
	require.Equal(t, http.StatusOK, status)
	var listed []model.Meeting
	require.NoError(t, json.Unmarshal(body.Data, &listed))
	assert.Len(t, listed, 1)
}

func TestRouter_RegisterAcceptsAgeWithoutStoringIt(t *testing.T) {
	app := newTestApp(t, true)

	status, _ := app.call(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "old@example.com", "password": "secret1", "age": 200,
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := app.call(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "old@example.com", "password": "secret1", "age": 30,
	})
	require.Equal(t, http.StatusCreated, status)
	var registered service.RegisterResult
	require.NoError(t, json.Unmarshal(body.Data, &registered))

	status, body = app.call(t, http.MethodGet, "/api/users/me", app.token(t, registered.UID), nil)
	require.Equal(t, http.StatusOK, status)
	var profile map[string]any
	require.NoError(t, json.Unmarshal(body.Data, &profile))
	assert.NotContains(t, profile, "age")
	assert.Equal(t, "old@example.com", profile["email"])
}
