package models

// User is the stored record. PasswordHash is never serialized; handlers
// return UserResponse instead.
type User struct {
	ID               int64  `json:"id" db:"id"`
	Name             string `json:"name" db:"name"`
	Email            string `json:"email" db:"email"`
	PasswordHash     string `json:"-" db:"password_hash"`
	ProfileImagePath string `json:"profileImagePath,omitempty" db:"profile_image_path"`
}

// UserResponse is the API view of a user.
type UserResponse struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	ProfileImagePath string `json:"profileImagePath,omitempty"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		ProfileImagePath: u.ProfileImagePath,
	}
}
