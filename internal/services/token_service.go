package services

import (
	"errors"
	"fmt"
	"time"

	"sns/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// DefaultTokenValidity is how long an access token stays valid.
const DefaultTokenValidity = time.Hour

// TokenService issues and validates HS256 bearer tokens. It holds only
// immutable state and is safe for concurrent use.
type TokenService struct {
	key      []byte
	validity time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

// NewTokenService creates a TokenService signing with key. A non-positive
// validity falls back to DefaultTokenValidity. Token timestamps have
// one-second resolution, so a fractional validity is rounded up.
func NewTokenService(key []byte, validity time.Duration) *TokenService {
	if validity <= 0 {
		validity = DefaultTokenValidity
	}
	if rem := validity % time.Second; rem != 0 {
		validity += time.Second - rem
	}
	return &TokenService{
		key:      key,
		validity: validity,
		now:      time.Now,
		// Expiry is checked by SubjectOf against s.now, with a strict bound.
		parser: &jwt.Parser{
			ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
			SkipClaimsValidation: true,
		},
	}
}

// WithClock replaces the time source. Used by tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Validity returns the configured token lifetime.
func (s *TokenService) Validity() time.Duration {
	return s.validity
}

// Create issues a signed token asserting subject.
func (s *TokenService) Create(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("token subject cannot be empty")
	}

	issuedAt := s.now().Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Id:        uuid.New().String(),
		Subject:   subject,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt + int64(s.validity/time.Second),
	})

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// SubjectOf verifies token and returns the subject it asserts. The token is
// rejected once the current time reaches its expiry.
func (s *TokenService) SubjectOf(tokenString string) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return "", models.ErrTokenInvalid
	}

	if claims.ExpiresAt == 0 || s.now().Unix() >= claims.ExpiresAt {
		return "", fmt.Errorf("%w: token is expired", models.ErrTokenInvalid)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", models.ErrTokenInvalid)
	}
	return claims.Subject, nil
}

// IsValid reports whether SubjectOf would accept token.
func (s *TokenService) IsValid(tokenString string) bool {
	_, err := s.SubjectOf(tokenString)
	return err == nil
}
