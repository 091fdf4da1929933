package services

import (
	"context"
	"errors"

	"github.com/devflow-dev/devflow/internal/apperr"
	"github.com/devflow-dev/devflow/internal/auth"
	"github.com/devflow-dev/devflow/internal/store"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = apperr.Unauthorized(apperr.ReasonInvalidCredentials, "Invalid credentials")

type AuthService struct {
	users    *store.Users
	accounts *store.Accounts
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenService
}

func NewAuthService(stores Stores, hasher *auth.PasswordHasher, tokens *auth.TokenService) *AuthService {
	return &AuthService{users: stores.Users, accounts: stores.Accounts, hasher: hasher, tokens: tokens}
}

// Login checks a password and returns a session token. The avatar comes from
// the linked GitHub account when there is one.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", notFound(err, ErrUserNotFound)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	avatarURL := ""
	account, err := s.accounts.FindByUserID(ctx, user.ID)
	switch {
	case err == nil:
		avatarURL = account.AvatarURL
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", err
	}

	return s.tokens.Issue(auth.ClaimsFor(user, avatarURL))
}
