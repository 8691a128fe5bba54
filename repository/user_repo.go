package repository

import (
	"errors"

	"userdirectory/models"
)

// ErrEmailTaken maps the storage engine's unique-violation on the email
// index. Repositories translate driver errors into it so callers never see
// driver text.
var ErrEmailTaken = errors.New("email already in use")

// UserRepository defines the interface for user record operations. Lookups
// return (nil, nil) when the record is absent.
type UserRepository interface {
	GetAll() ([]*models.User, error)
	GetByID(id int64) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	// EmailTaken reports whether a record other than excludeID holds email.
	EmailTaken(email string, excludeID int64) (bool, error)
	Create(user *models.User) error
	Update(user *models.User) error
	// Delete returns false when no record with the id exists.
	Delete(id int64) (bool, error)
}
