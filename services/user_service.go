package services

import (
	"errors"
	"io"
	"os"

	"userdirectory/models"
	"userdirectory/repository"
	"userdirectory/storage"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var ErrUserNotFound = errors.New("user not found")

// UserService enforces the business rules: email uniqueness, password
// hashing, and image lifecycle. Storage and file collaborators are injected.
type UserService struct {
	repo  repository.UserRepository
	files storage.ImageStore
}

func NewUserService(repo repository.UserRepository, files storage.ImageStore) *UserService {
	return &UserService{repo: repo, files: files}
}

func (s *UserService) List() ([]models.UserResponse, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		logger.Error().Err(err).Msg("error listing users")
		return nil, err
	}

	out := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToResponse())
	}
	return out, nil
}

func (s *UserService) Get(id int64) (*models.UserResponse, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		logger.Error().Err(err).Msgf("error getting user %d", id)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	resp := user.ToResponse()
	return &resp, nil
}

// Create rejects duplicate emails, validates and saves the image before any
// row mutation, hashes the password, and persists the record.
func (s *UserService) Create(name, email, password, imageName string, image io.Reader) (*models.UserResponse, error) {
	taken, err := s.repo.EmailTaken(email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, repository.ErrEmailTaken
	}

	imagePath, err := s.files.Save(imageName, image)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:             name,
		Email:            email,
		PasswordHash:     string(hash),
		ProfileImagePath: imagePath,
	}

	// A concurrent duplicate create slips past the pre-check and surfaces
	// here as ErrEmailTaken from the unique index.
	if err := s.repo.Create(user); err != nil {
		logger.Error().Err(err).Msg("error creating user")
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

// Update applies only the non-empty supplied fields. All inputs are
// validated (email uniqueness, image format) before the record mutates, and
// the new image is written before the old one is removed.
func (s *UserService) Update(id int64, name, email, password, imageName string, image io.Reader) (*models.UserResponse, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if email != "" && email != user.Email {
		taken, err := s.repo.EmailTaken(email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, repository.ErrEmailTaken
		}
	}

	newImagePath := ""
	if image != nil {
		newImagePath, err = s.files.Save(imageName, image)
		if err != nil {
			return nil, err
		}
	}

	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = email
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if newImagePath != "" {
		s.removeImage(user.ProfileImagePath)
		user.ProfileImagePath = newImagePath
	}

	if err := s.repo.Update(user); err != nil {
		logger.Error().Err(err).Msgf("error updating user %d", id)
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

// Delete removes the record after a best-effort delete of its image.
func (s *UserService) Delete(id int64) error {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	s.removeImage(user.ProfileImagePath)

	found, err := s.repo.Delete(id)
	if err != nil {
		logger.Error().Err(err).Msgf("error deleting user %d", id)
		return err
	}
	if !found {
		return ErrUserNotFound
	}
	return nil
}

// removeImage is best-effort: a missing or unwritable file never fails the
// surrounding mutation.
func (s *UserService) removeImage(relPath string) {
	if relPath == "" {
		return
	}
	if err := s.files.Delete(relPath); err != nil {
		logger.Warn().Err(err).Msgf("could not delete image %s", relPath)
	}
}
