package services

import (
	"errors"
	"fmt"

	"sns/internal/models"
	"sns/internal/repositories"

	log "github.com/sirupsen/logrus"
)

// TokenIssuer creates bearer tokens for authenticated users.
type TokenIssuer interface {
	Create(subject string) (string, error)
}

// AuthService handles login: credential lookup, password verification and
// token issuance.
type AuthService struct {
	userRepo repositories.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer

	// dummyDigest is compared against when the username is unknown.
	dummyDigest string
}

// NewAuthService creates a new AuthService. It panics if hasher cannot
// produce a digest, since login could then leak which usernames exist.
func NewAuthService(userRepo repositories.UserRepository, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	dummyDigest, err := hasher.Hash("timing-equalizer-password")
	if err != nil {
		panic(fmt.Sprintf("services: failed to prepare dummy password digest: %v", err))
	}

	return &AuthService{
		userRepo:    userRepo,
		hasher:      hasher,
		tokens:      tokens,
		dummyDigest: dummyDigest,
	}
}

// Login authenticates username/password and returns an access token.
// Unknown usernames and wrong passwords both yield models.ErrAuthenticationFailed.
func (s *AuthService) Login(username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if !errors.Is(err, models.ErrUserNotFound) {
			return "", fmt.Errorf("failed to look up user: %w", err)
		}
		// Spend the same bcrypt work as a real comparison so response time
		// does not reveal whether the username exists.
		s.hasher.Verify(password, s.dummyDigest)
		log.WithField("username", username).Debug("login rejected")
		return "", models.ErrAuthenticationFailed
	}

	if !s.hasher.Verify(password, user.Password) {
		log.WithField("username", username).Debug("login rejected")
		return "", models.ErrAuthenticationFailed
	}

	token, err := s.tokens.Create(user.Username)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}
