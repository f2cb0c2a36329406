package service

import (
	"context"
	"testing"
	"time"

	"joingo/internal/core"
	client "joingo/internal/database/client"
	redisRepo "joingo/internal/database/redis/repository"
	"joingo/internal/identity"
	cErr "joingo/internal/pkg/error"
	"joingo/internal/telemetry"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDirectory struct {
	profiles map[string]*identity.ProviderProfile
	created  []identity.NewAccount
	revoked  []string
	deleted  []string
	emails   map[string]string
	createID string
	err      error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{profiles: map[string]*identity.ProviderProfile{}, emails: map[string]string{}, createID: "kc-1"}
}

func (d *fakeDirectory) GetProviderProfile(ctx context.Context, subjectID string) (*identity.ProviderProfile, error) {
	if p, ok := d.profiles[subjectID]; ok {
		return p, nil
	}
	return nil, cErr.NotFound("Identity account not found", cErr.USER_NOT_FOUND)
}

func (d *fakeDirectory) CreateAccount(ctx context.Context, account identity.NewAccount) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	d.created = append(d.created, account)
	return d.createID, nil
}

func (d *fakeDirectory) UpdateEmail(ctx context.Context, subjectID, email string) error {
	if d.err != nil {
		return d.err
	}
	d.emails[subjectID] = email
	return nil
}

func (d *fakeDirectory) UpdatePassword(ctx context.Context, subjectID, password string) error {
	return d.err
}

func (d *fakeDirectory) RevokeSessions(ctx context.Context, subjectID string) error {
	d.revoked = append(d.revoked, subjectID)
	return d.err
}

func (d *fakeDirectory) DeleteAccount(ctx context.Context, subjectID string) error {
	d.deleted = append(d.deleted, subjectID)
	return d.err
}

type fakeAuthenticator struct{}

func (fakeAuthenticator) SignIn(ctx context.Context, email, password string) (*identity.SignInResult, error) {
	if password != "secret1" {
		return nil, cErr.Unauthorized("Invalid email or password")
	}
	return &identity.SignInResult{IDToken: "id-token", SubjectID: "kc-1", Email: email}, nil
}

func newAuthService(t *testing.T, clock *fixedClock) (*AuthService, *fakeDirectory, *miniredis.Miniredis) {
	t.Helper()
	users, _ := newUserService(t, clock)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	blacklist := redisRepo.NewTokenBlacklistRepository(&telemetry.Trace{}, client.NewRedisClientFrom(zap.NewNop(), rdb))

	dir := newFakeDirectory()
	svc := NewAuthService(zap.NewNop(), &telemetry.Trace{}, dir, fakeAuthenticator{}, blacklist, users)
	svc.now = clock.Now
	return svc, dir, mr
}

func TestAuthService_Register(t *testing.T) {
	clock := newClock()
	svc, dir, _ := newAuthService(t, clock)
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{Email: "amy@example.com", Password: "secret1", FirstName: "Amy", LastName: "Wu"})
	require.NoError(t, err)
	assert.Equal(t, &RegisterResult{UID: "kc-1", Email: "amy@example.com", DisplayName: "Amy Wu"}, result)
	require.Len(t, dir.created, 1)
	assert.Equal(t, "Amy Wu", dir.created[0].DisplayName)

	user, err := svc.users.GetProfile(ctx, "kc-1")
	require.NoError(t, err)
	assert.Equal(t, "Amy Wu", user.DisplayName)
	assert.Equal(t, core.RoleParticipant, user.Role)
	assert.Equal(t, "amy@example.com", user.Email)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	svc, dir, _ := newAuthService(t, newClock())
	dir.err = cErr.Conflict("Email already in use", cErr.EMAIL_EXISTS)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "amy@example.com", Password: "secret1"})
	assert.True(t, cErr.Is(err, cErr.CodeConflict))

	_, err = svc.users.GetProfile(context.Background(), "kc-1")
	assert.True(t, cErr.Is(err, cErr.CodeNotFound))
}

func TestAuthService_Login(t *testing.T) {
	svc, _, _ := newAuthService(t, newClock())

	result, err := svc.Login(context.Background(), "amy@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "id-token", result.IDToken)

	_, err = svc.Login(context.Background(), "amy@example.com", "nope")
	assert.True(t, cErr.Is(err, cErr.CodeUnauthorized))
}

func TestAuthService_LogoutBlacklistsToken(t *testing.T) {
	clock := newClock()
	svc, dir, mr := newAuthService(t, clock)
	ctx := context.Background()

	require.NoError(t, svc.Logout(ctx, "kc-1", "bearer-xyz", clock.Now().Add(10*time.Minute)))
	assert.Equal(t, []string{"kc-1"}, dir.revoked)

	found, err := svc.blacklist.Contains(ctx, "bearer-xyz")
	require.NoError(t, err)
	assert.True(t, found)

	mr.FastForward(11 * time.Minute)
	found, err = svc.blacklist.Contains(ctx, "bearer-xyz")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAuthService_ChangeEmailSyncsProfile(t *testing.T) {
	svc, dir, _ := newAuthService(t, newClock())
	ctx := context.Background()

	require.NoError(t, svc.ChangeEmail(ctx, "kc-1", "new@example.com"))
	assert.Equal(t, "new@example.com", dir.emails["kc-1"])

	user, err := svc.users.GetProfile(ctx, "kc-1")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
}

func TestAuthService_ProviderSync(t *testing.T) {
	svc, dir, _ := newAuthService(t, newClock())
	ctx := context.Background()
	dir.profiles["kc-1"] = &identity.ProviderProfile{
		SubjectID:   "kc-1",
		Kind:        core.ProviderGoogle,
		Email:       "g@example.com",
		DisplayName: "From Google",
		Link:        &identity.FederatedLink{Alias: "google", UserID: "g-77"},
	}

	user, err := svc.ProviderSync(ctx, "kc-1", ProviderSyncInput{DisplayName: "Typed Name", FirstName: "Typed", Locale: "en"})
	require.NoError(t, err)
	assert.Equal(t, "From Google", user.DisplayName)
	assert.Equal(t, "Typed", user.FirstName)
	assert.Equal(t, "en", user.Locale)
	assert.Equal(t, "google.com", user.Provider)
	assert.Equal(t, "google.com", user.ProviderID)
	assert.Equal(t, "g-77", user.ProviderUID)

	_, err = svc.ProviderSync(ctx, "missing", ProviderSyncInput{})
	assert.True(t, cErr.Is(err, cErr.CodeNotFound))
}

func TestProviderPartial_PasswordAccountUsesSupplementalProvider(t *testing.T) {
	partial := providerPartial(&identity.ProviderProfile{Kind: core.ProviderPassword}, ProviderSyncInput{Provider: "password", Email: "x@example.com"})
	assert.Equal(t, "password", partial.Provider)
	assert.Empty(t, partial.ProviderUID)
	require.NotNil(t, partial.Email)
	assert.Equal(t, "x@example.com", *partial.Email)
	assert.Nil(t, partial.DisplayName)
}

func TestAuthService_DeleteAccount(t *testing.T) {
	svc, dir, _ := newAuthService(t, newClock())
	ctx := context.Background()

	_, err := svc.users.Sync(ctx, "kc-1", providerPartial(&identity.ProviderProfile{DisplayName: "Amy"}, ProviderSyncInput{}))
	require.NoError(t, err)

	user, err := svc.DeleteAccount(ctx, "kc-1", false)
	require.NoError(t, err)
	assert.Equal(t, core.StatusDeleted, user.Status)
	assert.Empty(t, dir.deleted)

	_, err = svc.DeleteAccount(ctx, "kc-1", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"kc-1"}, dir.deleted)

	_, err = svc.DeleteAccount(ctx, "ghost", false)
	assert.True(t, cErr.Is(err, cErr.CodeNotFound))
}
