package service

import (
	"context"
	"strings"
	"time"

	"joingo/internal/core"
	redisRepo "joingo/internal/database/redis/repository"
	"joingo/internal/database/store/model"
	"joingo/internal/identity"
	cErr "joingo/internal/pkg/error"
	"joingo/internal/service/profile"
	"joingo/internal/telemetry"

	"go.uber.org/zap"
)

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	FirstName   string
	LastName    string
}

type RegisterResult struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// ProviderSyncInput 前端補充的資料，IdP 有值時以 IdP 為準
type ProviderSyncInput struct {
	DisplayName string
	FirstName   string
	LastName    string
	Email       string
	AvatarURL   string
	PhoneNumber string
	Locale      string
	Provider    string
}

type AuthService struct {
	trace         *telemetry.Trace
	logger        *zap.Logger
	directory     identity.Directory
	authenticator identity.PasswordAuthenticator
	blacklist     *redisRepo.TokenBlacklistRepository
	users         *UserService
	now           func() time.Time
}

func NewAuthService(
	logger *zap.Logger,
	trace *telemetry.Trace,
	directory identity.Directory,
	authenticator identity.PasswordAuthenticator,
	blacklist *redisRepo.TokenBlacklistRepository,
	users *UserService,
) *AuthService {
	return &AuthService{
		trace:         trace,
		logger:        logger,
		directory:     directory,
		authenticator: authenticator,
		blacklist:     blacklist,
		users:         users,
		now:           time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (_ *RegisterResult, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = strings.TrimSpace(in.FirstName + " " + in.LastName)
	}
	uid, err := s.directory.CreateAccount(ctx, identity.NewAccount{
		Email:       in.Email,
		Password:    in.Password,
		DisplayName: displayName,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
	})
	if err != nil {
		return nil, err
	}
	s.trace.ApplyTraceAttributes(span, core.TraceIdentityMeta{Op: "register", SubjectID: uid})

	if _, err := s.users.Sync(ctx, uid, profile.Partial{
		DisplayName: profile.String(displayName),
		Email:       profile.String(in.Email),
		FirstName:   profile.String(in.FirstName),
		LastName:    profile.String(in.LastName),
		Role:        profile.RolePtr(core.RoleParticipant),
	}); err != nil {
		// 帳號已建立，檔案可由之後的 sync 補上
		s.logger.Error("register: profile sync failed", zap.String("uid", uid), zap.Error(err))
		return nil, err
	}
	s.logger.Info("user registered", zap.String("uid", uid))
	return &RegisterResult{UID: uid, Email: in.Email, DisplayName: displayName}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (_ *identity.SignInResult, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	return s.authenticator.SignIn(ctx, email, password)
}

// Logout 撤銷 IdP session，並將目前的 bearer token 列入黑名單直到過期
func (s *AuthService) Logout(ctx context.Context, uid, bearer string, expiresAt time.Time) (returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()
	s.trace.ApplyTraceAttributes(span, core.TraceIdentityMeta{Op: "logout", SubjectID: uid})

	if err := s.directory.RevokeSessions(ctx, uid); err != nil {
		return err
	}
	if bearer == "" {
		return nil
	}
	if err := s.blacklist.Add(ctx, bearer, expiresAt.Sub(s.now())); err != nil {
		s.logger.Error("logout: blacklist token failed", zap.String("uid", uid), zap.Error(err))
		return cErr.DatabaseError("Failed to revoke token")
	}
	return nil
}

func (s *AuthService) ChangeEmail(ctx context.Context, uid, email string) (returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	if err := s.directory.UpdateEmail(ctx, uid, email); err != nil {
		return err
	}
	_, err := s.users.Sync(ctx, uid, profile.Partial{Email: profile.String(email)})
	return err
}

func (s *AuthService) ChangePassword(ctx context.Context, uid, password string) (returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	return s.directory.UpdatePassword(ctx, uid, password)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// providerPartial 組出 provider sync 的 Partial；IdP 值優先
func providerPartial(p *identity.ProviderProfile, in ProviderSyncInput) profile.Partial {
	partial := profile.Partial{
		DisplayName: profile.String(firstNonEmpty(p.DisplayName, in.DisplayName)),
		FirstName:   profile.String(firstNonEmpty(p.FirstName, in.FirstName)),
		LastName:    profile.String(firstNonEmpty(p.LastName, in.LastName)),
		Email:       profile.String(firstNonEmpty(p.Email, in.Email)),
		AvatarURL:   profile.String(firstNonEmpty(p.PhotoURL, in.AvatarURL)),
		PhoneNumber: profile.String(firstNonEmpty(p.PhoneNumber, in.PhoneNumber)),
		Locale:      profile.String(firstNonEmpty(p.Locale, in.Locale)),
		Provider:    in.Provider,
	}
	if p.Link != nil {
		partial.Provider = string(p.Kind)
		partial.ProviderID = string(p.Kind)
		partial.ProviderUID = p.Link.UserID
	}
	return partial
}

func (s *AuthService) ProviderSync(ctx context.Context, uid string, in ProviderSyncInput) (_ *model.User, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	p, err := s.directory.GetProviderProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	s.trace.ApplyTraceAttributes(span, core.TraceIdentityMeta{Op: "provider_sync:" + string(p.Kind), SubjectID: uid})
	return s.users.SyncFromProvider(ctx, uid, providerPartial(p, in))
}

// DeleteAccount full 時一併刪除 IdP 帳號，檔案一律軟刪除
func (s *AuthService) DeleteAccount(ctx context.Context, uid string, full bool) (_ *model.User, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	if full {
		if err := s.directory.DeleteAccount(ctx, uid); err != nil && !cErr.Is(err, cErr.CodeNotFound) {
			return nil, err
		}
	}
	return s.users.SoftDelete(ctx, uid)
}
