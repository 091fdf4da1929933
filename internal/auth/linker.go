package auth

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/devflow-dev/devflow/internal/apperr"
	"github.com/devflow-dev/devflow/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	errProfileFetch     = apperr.Unauthorized(apperr.ReasonProviderFetchFailed, "Failed to fetch GitHub profile")
	errEmailsFetch      = apperr.Unauthorized(apperr.ReasonProviderFetchFailed, "Failed to fetch GitHub emails")
	errNoVerified       = apperr.Unauthorized(apperr.ReasonNoVerifiedEmail, "No verified email found in GitHub account")
	errNoLocalAccount   = apperr.Unauthorized(apperr.ReasonNoLocalAccount, "No local account associated with this GitHub email")
	errGitHubLinked     = apperr.Unauthorized(apperr.ReasonProviderAuthFailed, "GitHub account already linked to another user")
	ErrGitHubAuthFailed = apperr.Unauthorized(apperr.ReasonProviderAuthFailed, "GitHub authorization failed")
)

// GitHubScopes are requested on the authorize redirect.
var GitHubScopes = []string{"read:user", "user:email"}

type ProfileFetcher interface {
	Fetch(ctx context.Context, accessToken string) (*GitHubProfile, []GitHubEmail, error)
}

// CodeExchanger turns an OAuth authorization code into an access token.
type CodeExchanger interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

func NewGitHubOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     endpoints.GitHub,
		Scopes:       GitHubScopes,
	}
}

type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type AccountUpserter interface {
	Upsert(ctx context.Context, account *models.Account) error
}

// Linker signs a local user in with their GitHub identity.
type Linker struct {
	oauth    CodeExchanger
	github   ProfileFetcher
	users    UserFinder
	accounts AccountUpserter
	tokens   *TokenService
}

func NewLinker(oauth CodeExchanger, github ProfileFetcher, users UserFinder, accounts AccountUpserter, tokens *TokenService) *Linker {
	return &Linker{oauth: oauth, github: github, users: users, accounts: accounts, tokens: tokens}
}

func (l *Linker) AuthCodeURL(state string) string {
	return l.oauth.AuthCodeURL(state)
}

// Callback exchanges code for an access token and links the account.
func (l *Linker) Callback(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", ErrGitHubAuthFailed
	}

	token, err := l.oauth.Exchange(ctx, code)
	if err != nil {
		log.Printf("GitHub code exchange failed: %v", err)
		return "", ErrGitHubAuthFailed.Wrap(err)
	}

	return l.Link(ctx, token.AccessToken)
}

// Link fetches the GitHub profile behind accessToken, matches it to a local
// user by email, records the link and returns a session token. Nothing is
// written until a local user has been found.
func (l *Linker) Link(ctx context.Context, accessToken string) (string, error) {
	profile, emails, err := l.github.Fetch(ctx, accessToken)
	if err != nil {
		return "", err
	}

	email, ok := pickPrimaryEmail(emails)
	if !ok {
		return "", errNoVerified
	}

	user, err := l.users.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errNoLocalAccount
		}
		return "", err
	}

	account := &models.Account{
		UserID:    user.ID,
		GithubID:  profile.ID,
		Login:     profile.Login,
		AvatarURL: profile.AvatarURL,
		Profile:   datatypes.JSON(profile.Raw),
	}
	if err := l.accounts.Upsert(ctx, account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", errGitHubLinked.Wrap(err)
		}
		return "", err
	}

	return l.tokens.Issue(ClaimsFor(user, profile.AvatarURL))
}

// pickPrimaryEmail prefers the primary verified address and falls back to
// the first one listed.
func pickPrimaryEmail(emails []GitHubEmail) (string, bool) {
	if len(emails) == 0 {
		return "", false
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, true
		}
	}
	return emails[0].Email, true
}
