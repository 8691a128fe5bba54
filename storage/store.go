package storage

import (
	"errors"
	"io"
	"strings"
)

// ErrInvalidFormat is returned for uploads whose extension is not on the
// image allow-list. The message is user-facing.
var ErrInvalidFormat = errors.New("invalid file format: only image files are accepted")

// allowedExtensions is the image allow-list, matched case-insensitively.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImageStore saves and deletes uploaded profile images.
type ImageStore interface {
	// Save writes the uploaded bytes and returns a forward-slash relative
	// path suitable for serving over HTTP. A nil src or empty filename is
	// the "no image" case and returns ("", nil).
	Save(filename string, src io.Reader) (string, error)
	// Delete removes a previously saved image. Empty paths and already
	// missing files are not errors.
	Delete(relPath string) error
}

func allowedExtension(ext string) bool {
	return allowedExtensions[strings.ToLower(ext)]
}
