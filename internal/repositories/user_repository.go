package repositories

import "sns/internal/models"

// UserRepository defines the interface for user data access.
//
// Implementations must enforce username and email uniqueness on Create and
// report a conflict as models.ErrDuplicateUsername or models.ErrDuplicateEmail.
// Lookups that match nothing return an error wrapping models.ErrUserNotFound.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	ExistsByUsername(username string) (bool, error)
	ExistsByEmail(email string) (bool, error)
}
