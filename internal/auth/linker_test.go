package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/devflow-dev/devflow/internal/apperr"
	"github.com/devflow-dev/devflow/internal/models"
	"github.com/devflow-dev/devflow/internal/store"
	"github.com/devflow-dev/devflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

type fakeGitHub struct {
	profileStatus int
	emailsStatus  int
	emails        []map[string]interface{}
	requests      []*http.Request
}

func (f *fakeGitHub) server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.Clone(context.Background()))
		if f.profileStatus != 0 {
			w.WriteHeader(f.profileStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":         4242,
			"login":      "ada",
			"avatar_url": "https://avatars.example/ada.png",
		})
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		if f.emailsStatus != 0 {
			w.WriteHeader(f.emailsStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(f.emails)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type fakeExchanger struct {
	token string
	err   error
}

func (f fakeExchanger) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return "https://github.com/login/oauth/authorize?state=" + url.QueryEscape(state)
}

func (f fakeExchanger) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.Token{AccessToken: f.token}, nil
}

type linkerFixture struct {
	linker   *Linker
	tokens   *TokenService
	users    *store.Users
	accounts *store.Accounts
}

func newLinkerFixture(t *testing.T, gh *fakeGitHub, exchanger CodeExchanger) *linkerFixture {
	t.Helper()

	srv := gh.server(t)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)

	conn := testutil.NewDB(t)
	f := &linkerFixture{
		tokens:   NewTokenService("secret"),
		users:    store.NewUsers(conn),
		accounts: store.NewAccounts(conn),
	}
	client := NewGitHubClient(srv.Client()).WithBaseURL(base)
	f.linker = NewLinker(exchanger, client, f.users, f.accounts, f.tokens)
	return f
}

func (f *linkerFixture) addUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Name: "Ada", Email: email, PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func TestLinkSuccess(t *testing.T) {
	gh := &fakeGitHub{emails: []map[string]interface{}{
		{"email": "old@devflow.dev", "primary": false, "verified": true},
		{"email": "ada@devflow.dev", "primary": true, "verified": true},
	}}
	f := newLinkerFixture(t, gh, fakeExchanger{token: "gho_abc"})
	user := f.addUser(t, "ada@devflow.dev")

	token, err := f.linker.Callback(context.Background(), "code")
	require.NoError(t, err)

	claims, err := f.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, "https://avatars.example/ada.png", claims.AvatarURL)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	account, err := f.accounts.FindByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4242), account.GithubID)
	assert.Equal(t, "ada", account.Login)
	assert.Contains(t, string(account.Profile), `"login":"ada"`)

	require.NotEmpty(t, gh.requests)
	req := gh.requests[0]
	assert.Equal(t, "Bearer gho_abc", req.Header.Get("Authorization"))
	assert.Equal(t, "DevFlow", req.Header.Get("User-Agent"))
	assert.Equal(t, "2022-11-28", req.Header.Get("X-GitHub-Api-Version"))

	// Linking again refreshes the same row.
	_, err = f.linker.Link(context.Background(), "gho_abc")
	require.NoError(t, err)
	again, err := f.accounts.FindByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, again.ID)
}

func TestLinkFailures(t *testing.T) {
	tests := []struct {
		name    string
		gh      *fakeGitHub
		email   string
		reason  apperr.Reason
		message string
	}{
		{
			name:    "profile fetch fails",
			gh:      &fakeGitHub{profileStatus: http.StatusUnauthorized},
			reason:  apperr.ReasonProviderFetchFailed,
			message: "Failed to fetch GitHub profile",
		},
		{
			name:    "emails fetch fails",
			gh:      &fakeGitHub{emailsStatus: http.StatusForbidden},
			reason:  apperr.ReasonProviderFetchFailed,
			message: "Failed to fetch GitHub emails",
		},
		{
			name:    "no emails",
			gh:      &fakeGitHub{emails: []map[string]interface{}{}},
			reason:  apperr.ReasonNoVerifiedEmail,
			message: "No verified email found in GitHub account",
		},
		{
			name: "no local user",
			gh: &fakeGitHub{emails: []map[string]interface{}{
				{"email": "stranger@devflow.dev", "primary": true, "verified": true},
			}},
			reason:  apperr.ReasonNoLocalAccount,
			message: "No local account associated with this GitHub email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLinkerFixture(t, tt.gh, fakeExchanger{token: "gho_abc"})
			user := f.addUser(t, "ada@devflow.dev")

			_, err := f.linker.Link(context.Background(), "gho_abc")
			require.Error(t, err)
			assert.Equal(t, tt.reason, apperr.ReasonOf(err))
			assert.Equal(t, tt.message, mustAppErr(t, err).Message)

			_, err = f.accounts.FindByUserID(context.Background(), user.ID)
			assert.Error(t, err, "no account row may be written on failure")
		})
	}
}

func TestLinkFallsBackToFirstEmail(t *testing.T) {
	gh := &fakeGitHub{emails: []map[string]interface{}{
		{"email": "ada@devflow.dev", "primary": false, "verified": false},
		{"email": "other@devflow.dev", "primary": true, "verified": false},
	}}
	f := newLinkerFixture(t, gh, fakeExchanger{token: "gho_abc"})
	f.addUser(t, "ada@devflow.dev")

	_, err := f.linker.Link(context.Background(), "gho_abc")
	assert.NoError(t, err)
}

func TestLinkGitHubIDTakenByAnotherUser(t *testing.T) {
	gh := &fakeGitHub{emails: []map[string]interface{}{
		{"email": "ada@devflow.dev", "primary": true, "verified": true},
	}}
	f := newLinkerFixture(t, gh, fakeExchanger{token: "gho_abc"})
	f.addUser(t, "ada@devflow.dev")
	other := f.addUser(t, "grace@devflow.dev")
	require.NoError(t, f.accounts.Upsert(context.Background(), &models.Account{UserID: other.ID, GithubID: 4242, Login: "ada"}))

	_, err := f.linker.Link(context.Background(), "gho_abc")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
	assert.Equal(t, apperr.ReasonProviderAuthFailed, apperr.ReasonOf(err))
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// The other user's link is left alone.
	kept, err := f.accounts.FindByUserID(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4242), kept.GithubID)
}

func TestCallbackExchangeFailure(t *testing.T) {
	f := newLinkerFixture(t, &fakeGitHub{}, fakeExchanger{err: errors.New("bad_verification_code")})

	_, err := f.linker.Callback(context.Background(), "code")
	assert.Equal(t, apperr.ReasonProviderAuthFailed, apperr.ReasonOf(err))

	_, err = f.linker.Callback(context.Background(), "")
	assert.Equal(t, apperr.ReasonProviderAuthFailed, apperr.ReasonOf(err))
}

func TestPickPrimaryEmail(t *testing.T) {
	_, ok := pickPrimaryEmail(nil)
	assert.False(t, ok)

	email, ok := pickPrimaryEmail([]GitHubEmail{
		{Email: "a@x", Primary: true, Verified: false},
		{Email: "b@x", Primary: true, Verified: true},
	})
	assert.True(t, ok)
	assert.Equal(t, "b@x", email)
}

func TestGitHubOAuthConfig(t *testing.T) {
	cfg := NewGitHubOAuthConfig("id", "secret", "http://localhost:3000/api/auth/github/callback")
	assert.Equal(t, []string{"read:user", "user:email"}, cfg.Scopes)
	assert.Contains(t, cfg.AuthCodeURL("st"), "github.com/login/oauth/authorize")
}
