package storage

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const profileImagesFolder = "profile-images"

// LocalStore keeps images on disk under <root>/profile-images and serves
// them back as <rootName>/profile-images/<name> relative paths.
type LocalStore struct {
	// Root is the upload directory, e.g. "uploads".
	Root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{Root: root}
}

func (s *LocalStore) Save(filename string, src io.Reader) (string, error) {
	if src == nil || filename == "" {
		return "", nil
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtension(ext) {
		return "", ErrInvalidFormat
	}

	name := uuid.NewString() + ext
	dir := filepath.Join(s.Root, profileImagesFolder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	// Forward slashes regardless of host path convention.
	return path.Join(filepath.ToSlash(s.Root), profileImagesFolder, name), nil
}

func (s *LocalStore) Delete(relPath string) error {
	if relPath == "" {
		return nil
	}

	// Stored paths are prefixed with the root, e.g. uploads/profile-images/x.png.
	full := filepath.FromSlash(relPath)
	rootPrefix := filepath.ToSlash(s.Root) + "/"
	if rest := strings.TrimPrefix(relPath, rootPrefix); rest != relPath {
		full = filepath.Join(s.Root, filepath.FromSlash(rest))
	}

	err := os.Remove(full)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
