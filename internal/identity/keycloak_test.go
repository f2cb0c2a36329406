package identity

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"joingo/internal/core"
	cErr "joingo/internal/pkg/error"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeKeycloak 模擬 admin API 的最小子集
type fakeKeycloak struct {
	mu       sync.Mutex
	users    map[string]keycloakUser
	links    map[string][]keycloakFederatedIdentity
	logouts  []string
	gzipGets bool
}

func newFakeKeycloak() *fakeKeycloak {
	return &fakeKeycloak{users: map[string]keycloakUser{}, links: map[string][]keycloakFederatedIdentity{}}
}

func (f *fakeKeycloak) writeJSON(w http.ResponseWriter, v any) {
	raw, _ := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json")
	if f.gzipGets {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, _ = zw.Write(raw)
		_ = zw.Close()
		w.Header().Set("Content-Encoding", "gzip")
		raw = buf.Bytes()
	}
	_, _ = w.Write(raw)
}

func (f *fakeKeycloak) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rest := strings.TrimPrefix(r.URL.Path, "/admin/realms/test/users")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	id := parts[0]

	switch {
	case r.Method == http.MethodPost && id == "":
		var u keycloakUser
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &u)
		if u.Email == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for _, existing := range f.users {
			if existing.Email == u.Email {
				w.WriteHeader(http.StatusConflict)
				return
			}
		}
		u.ID = "kc-" + strings.Split(u.Email, "@")[0]
		f.users[u.ID] = u
		w.Header().Set("Location", "http://"+r.Host+"/admin/realms/test/users/"+u.ID)
		w.WriteHeader(http.StatusCreated)
	case len(parts) == 2 && parts[1] == "federated-identity":
		f.writeJSON(w, f.links[id])
	case len(parts) == 2 && parts[1] == "logout":
		f.logouts = append(f.logouts, id)
		w.WriteHeader(http.StatusNoContent)
	case len(parts) == 2 && parts[1] == "reset-password":
		if _, ok := f.users[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet:
		u, ok := f.users[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.writeJSON(w, u)
	case r.Method == http.MethodPut:
		u, ok := f.users[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var patch struct {
			Email string `json:"email"`
		}
		_ = json.NewDecoder(r.Body).Decode(&patch)
		for otherID, other := range f.users {
			if otherID != id && other.Email == patch.Email {
				w.WriteHeader(http.StatusConflict)
				return
			}
		}
		u.Email = patch.Email
		f.users[id] = u
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodDelete:
		if _, ok := f.users[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(f.users, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusTeapot)
	}
}

func newTestDirectory(t *testing.T) (*KeycloakDirectory, *fakeKeycloak) {
	t.Helper()
	fake := newFakeKeycloak()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewKeycloakDirectory(zap.NewNop(), srv.URL+"/admin/realms/test/", srv.Client()), fake
}

func TestKeycloakDirectory_CreateAccount(t *testing.T) {
	ctx := context.Background()
	dir, fake := newTestDirectory(t)

	id, err := dir.CreateAccount(ctx, NewAccount{Email: "amy@example.com", Password: "secret1", DisplayName: "Amy"})
	require.NoError(t, err)
	assert.Equal(t, "kc-amy", id)
	assert.Equal(t, []string{"Amy"}, fake.users[id].Attributes["displayName"])
	require.Len(t, fake.users[id].Credentials, 1)
	assert.Equal(t, "secret1", fake.users[id].Credentials[0].Value)

	_, err = dir.CreateAccount(ctx, NewAccount{Email: "amy@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, cErr.EMAIL_EXISTS, cErr.From(err).ErrorCode())
	assert.Equal(t, http.StatusConflict, cErr.From(err).HttpCode())

	_, err = dir.CreateAccount(ctx, NewAccount{Password: "secret1"})
	assert.True(t, cErr.Is(err, cErr.CodeBadRequest))
}

func TestKeycloakDirectory_GetProviderProfile(t *testing.T) {
	ctx := context.Background()
	dir, fake := newTestDirectory(t)
	fake.gzipGets = true
	fake.users["u1"] = keycloakUser{
		ID:         "u1",
		Email:      "bo@example.com",
		FirstName:  "Bo",
		LastName:   "Lin",
		Attributes: map[string][]string{"picture": {"https://img/bo.png"}, "locale": {"zh-TW"}},
	}
	fake.links["u1"] = []keycloakFederatedIdentity{
		{IdentityProvider: "github", UserID: "gh-42", UserName: "bolin"},
		{IdentityProvider: "google", UserID: "g-1"},
	}

	profile, err := dir.GetProviderProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, core.ProviderGitHub, profile.Kind)
	assert.Equal(t, "Bo Lin", profile.DisplayName)
	assert.Equal(t, "https://img/bo.png", profile.PhotoURL)
	assert.Equal(t, "zh-TW", profile.Locale)
	require.NotNil(t, profile.Link)
	assert.Equal(t, "gh-42", profile.Link.UserID)

	_, err = dir.GetProviderProfile(ctx, "missing")
	assert.True(t, cErr.Is(err, cErr.CodeNotFound))
}

func TestKeycloakDirectory_AccountMaintenance(t *testing.T) {
	ctx := context.Background()
	dir, fake := newTestDirectory(t)
	fake.users["u1"] = keycloakUser{ID: "u1", Email: "a@example.com"}
	fake.users["u2"] = keycloakUser{ID: "u2", Email: "b@example.com"}

	require.NoError(t, dir.UpdateEmail(ctx, "u1", "c@example.com"))
	assert.Equal(t, "c@example.com", fake.users["u1"].Email)

	err := dir.UpdateEmail(ctx, "u1", "b@example.com")
	assert.True(t, cErr.Is(err, cErr.CodeConflict))

	require.NoError(t, dir.UpdatePassword(ctx, "u1", "another1"))
	require.NoError(t, dir.RevokeSessions(ctx, "u1"))
	assert.Equal(t, []string{"u1"}, fake.logouts)

	require.NoError(t, dir.DeleteAccount(ctx, "u2"))
	err = dir.DeleteAccount(ctx, "u2")
	assert.True(t, cErr.Is(err, cErr.CodeNotFound))
}

func TestKeycloakDirectory_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	dir := NewKeycloakDirectory(zap.NewNop(), srv.URL, srv.Client())

	err := dir.RevokeSessions(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, cErr.EXTERNAL_REQUEST_ERROR, cErr.From(err).ErrorCode())
}

func TestNarrowProfile(t *testing.T) {
	tests := []struct {
		name  string
		user  keycloakUser
		links []keycloakFederatedIdentity
		kind  core.ProviderKind
		link  bool
		disp  string
	}{
		{
			name: "password account",
			user: keycloakUser{Email: "x@example.com", Attributes: map[string][]string{"displayName": {"Xia"}}},
			kind: core.ProviderPassword,
			disp: "Xia",
		},
		{
			name:  "google link",
			user:  keycloakUser{FirstName: "Gina"},
			links: []keycloakFederatedIdentity{{IdentityProvider: "google", UserID: "g-7"}},
			kind:  core.ProviderGoogle,
			link:  true,
			disp:  "Gina",
		},
		{
			name:  "unknown alias is oidc",
			links: []keycloakFederatedIdentity{{IdentityProvider: "corp-sso", UserID: "c-1"}},
			kind:  core.ProviderOIDC,
			link:  true,
		},
		{
			name:  "empty alias ignored",
			links: []keycloakFederatedIdentity{{UserID: "c-1"}},
			kind:  core.ProviderPassword,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := narrowProfile("sub", tt.user, tt.links)
			assert.Equal(t, "sub", p.SubjectID)
			assert.Equal(t, tt.kind, p.Kind)
			assert.Equal(t, tt.link, p.Link != nil)
			assert.Equal(t, tt.disp, p.DisplayName)
		})
	}
}
