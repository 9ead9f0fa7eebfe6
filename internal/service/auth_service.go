package service

import (
	"context"
	"crypto/subtle"
	"time"

	"elitepay/internal/core/ports"
	"elitepay/pkg/apperror"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AuthServiceImpl implements ports.AuthService for the single admin
// credential configured at deploy time. An empty password hash disables
// admin login entirely.
type AuthServiceImpl struct {
	username     string
	passwordHash string // bcrypt
	tokenSvc     ports.TokenService
	log          zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(username, passwordHash string, tokenSvc ports.TokenService, log zerolog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		username:     username,
		passwordHash: passwordHash,
		tokenSvc:     tokenSvc,
		log:          log,
	}
}

// Login validates the admin credential and issues a JWT.
func (s *AuthServiceImpl) Login(_ context.Context, username, password string) (string, time.Time, error) {
	if s.passwordHash == "" {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) != 1 {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		s.log.Warn().Str("username", username).Msg("admin login rejected")
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.Generate(username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(err)
	}

	s.log.Info().Str("username", username).Msg("admin logged in")
	return token, expiry, nil
}
