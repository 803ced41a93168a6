package repositories

import (
	"errors"
	"fmt"

	"sns/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
// The *gorm.DB must be opened with TranslateError enabled so unique index
// violations surface as gorm.ErrDuplicatedKey.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.conflict(user, err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// conflict works out which unique column a rejected insert collided on.
// The translated driver error no longer carries the constraint name.
func (r *GORMUserRepository) conflict(user *models.User, cause error) error {
	if taken, err := r.ExistsByUsername(user.Username); err == nil && taken {
		return models.ErrDuplicateUsername
	}
	if taken, err := r.ExistsByEmail(user.Email); err == nil && taken {
		return models.ErrDuplicateEmail
	}
	return fmt.Errorf("failed to create user: %w", cause)
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.first("username = ?", username)
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.first("email = ?", email)
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	return r.first("id = ?", id)
}

func (r *GORMUserRepository) first(query string, arg string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrUserNotFound, arg)
		}
		return nil, fmt.Errorf("failed to get user %s: %w", arg, err)
	}
	return &user, nil
}

// ExistsByUsername reports whether an account with the username exists.
func (r *GORMUserRepository) ExistsByUsername(username string) (bool, error) {
	return r.exists("username = ?", username)
}

// ExistsByEmail reports whether an account with the email exists.
func (r *GORMUserRepository) ExistsByEmail(email string) (bool, error) {
	return r.exists("email = ?", email)
}

func (r *GORMUserRepository) exists(query string, arg string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	return count > 0, nil
}
