package auth

import (
	"errors"
	"time"

	"github.com/devflow-dev/devflow/internal/apperr"
	"github.com/devflow-dev/devflow/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const TokenTTL = 24 * time.Hour

var ErrSecretNotConfigured = errors.New("JWT secret is not configured")

var (
	errTokenExpired = apperr.Unauthorized(apperr.ReasonTokenExpired, "Token expired")
	errTokenInvalid = apperr.Unauthorized(apperr.ReasonTokenInvalid, "Invalid token")
)

// Claims is the session payload. IssuedAt and ExpiresAt live in RegisteredClaims.
type Claims struct {
	UserID    string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	AvatarURL string      `json:"avatarUrl"`
	Role      models.Role `json:"role"`
	jwt.RegisteredClaims
}

// ClaimsFor builds the claims for a local user. avatarURL may be empty.
func ClaimsFor(user *models.User, avatarURL string) Claims {
	return Claims{
		UserID:    user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: avatarURL,
		Role:      user.Role,
	}
}

type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret string) *TokenService {
	return NewTokenServiceWithClock(secret, time.Now)
}

func NewTokenServiceWithClock(secret string, now func() time.Time) *TokenService {
	return &TokenService{secret: []byte(secret), now: now}
}

func (s *TokenService) Configured() bool {
	return len(s.secret) > 0
}

// Issue signs claims with HS256. The issue and expiry times are overwritten.
func (s *TokenService) Issue(claims Claims) (string, error) {
	if !s.Configured() {
		return "", ErrSecretNotConfigured
	}

	now := s.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(TokenTTL))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature and expiry of tokenString. It does not look
// the user up.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	if !s.Configured() {
		return nil, ErrSecretNotConfigured
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, classify(err)
	}

	return &claims, nil
}

var invalidTokenErrors = []error{
	jwt.ErrTokenMalformed,
	jwt.ErrTokenUnverifiable,
	jwt.ErrTokenSignatureInvalid,
	jwt.ErrSignatureInvalid,
	jwt.ErrTokenRequiredClaimMissing,
	jwt.ErrTokenInvalidClaims,
	jwt.ErrTokenNotValidYet,
	jwt.ErrTokenUsedBeforeIssued,
	jwt.ErrHashUnavailable,
	jwt.ErrInvalidKey,
	jwt.ErrInvalidKeyType,
}

func classify(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return errTokenExpired.Wrap(err)
	}
	for _, target := range invalidTokenErrors {
		if errors.Is(err, target) {
			return errTokenInvalid.Wrap(err)
		}
	}
	return err
}
