package services

import (
	"errors"
	"fmt"
	"time"

	"sns/internal/models"
	"sns/internal/repositories"

	log "github.com/sirupsen/logrus"
)

// EventPublisher delivers account events to interested consumers.
type EventPublisher interface {
	PublishUserEvent(event models.UserEvent) error
}

// SignupInput carries an already validated registration request.
type SignupInput struct {
	Username string
	Email    string
	Password string
	Nickname string
}

// UserService handles registration and profile lookup.
type UserService struct {
	userRepo  repositories.UserRepository
	hasher    PasswordHasher
	publisher EventPublisher // optional
}

// NewUserService creates a new UserService. publisher may be nil.
func NewUserService(userRepo repositories.UserRepository, hasher PasswordHasher, publisher EventPublisher) *UserService {
	return &UserService{
		userRepo:  userRepo,
		hasher:    hasher,
		publisher: publisher,
	}
}

// Register creates a new account and returns its public profile.
//
// The existence checks and the insert are not atomic; the repository's own
// uniqueness enforcement catches concurrent duplicates and reports them with
// the same errors.
func (s *UserService) Register(input SignupInput) (*models.UserResponse, error) {
	taken, err := s.userRepo.ExistsByUsername(input.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, models.ErrDuplicateUsername
	}

	taken, err = s.userRepo.ExistsByEmail(input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, models.ErrDuplicateEmail
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: digest,
		Nickname: input.Nickname,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, models.ErrDuplicateUsername) || errors.Is(err, models.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.publishRegistered(user)
	return user.ToResponse(), nil
}

// GetByUsername returns the public profile for username, or an error
// wrapping models.ErrUserNotFound.
func (s *UserService) GetByUsername(username string) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

func (s *UserService) publishRegistered(user *models.User) {
	if s.publisher == nil {
		log.Debug("event publisher is not configured, skipping user.registered event")
		return
	}

	event := models.UserEvent{
		Type:       models.EventUserRegistered,
		UserID:     user.ID,
		Username:   user.Username,
		OccurredAt: time.Now(),
	}
	if err := s.publisher.PublishUserEvent(event); err != nil {
		log.Warnf("failed to publish %s event for user %s: %v", event.Type, user.ID, err)
	}
}
