package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"userdirectory/repository"
	"userdirectory/services"
	"userdirectory/storage"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing.
const maxUploadMemory = 32 << 20

type UserHandler struct {
	Service *services.UserService
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// GetUser handles GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request, id string) {
	userID, err := parseID(id)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.Service.Get(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// CreateUser handles POST /api/users with a multipart form:
// name, email, password, and an optional profileImage file.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "invalid request payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	email := r.FormValue("email")
	password := r.FormValue("password")
	if name == "" || email == "" || password == "" {
		http.Error(w, "name, email, and password are required", http.StatusBadRequest)
		return
	}

	imageName, image, closeImage := formImage(r)
	defer closeImage()

	user, err := h.Service.Create(name, email, password, imageName, image)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/users/%d", user.ID))
	writeJSON(w, http.StatusCreated, user)
}

// UpdateUser handles PUT /api/users/{id}; every form field is optional.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request, id string) {
	userID, err := parseID(id)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "invalid request payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	imageName, image, closeImage := formImage(r)
	defer closeImage()

	user, err := h.Service.Update(userID,
		r.FormValue("name"), r.FormValue("email"), r.FormValue("password"),
		imageName, image)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request, id string) {
	userID, err := parseID(id)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	if err := h.Service.Delete(userID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// formImage pulls the optional profileImage file out of the parsed form.
// Absent or zero-length uploads return a nil reader.
func formImage(r *http.Request) (string, io.Reader, func()) {
	file, header, err := r.FormFile("profileImage")
	if err != nil || header.Size == 0 {
		if file != nil {
			file.Close()
		}
		return "", nil, func() {}
	}
	return header.Filename, file, func() { file.Close() }
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps service errors onto the API taxonomy. Unknown
// errors never leak driver text to the caller.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrEmailTaken):
		http.Error(w, "email already in use", http.StatusBadRequest)
	case errors.Is(err, storage.ErrInvalidFormat):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
