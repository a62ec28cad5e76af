package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// allowedExtensions maps accepted upload content types to the stored file
// extension
var allowedExtensions = map[string]string{
	"image/jpg":  ".jpg",
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// FileStore persists uploaded sauce images under a single directory with
// generated names, so client-supplied filenames never reach the filesystem.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// NewFileStore creates the images directory if needed and returns a store
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Save writes the uploaded image to disk and returns the stored filename.
// Uploads with an unsupported content type are rejected.
func (s *FileStore) Save(r io.Reader, contentType string) (string, error) {
	ext, ok := allowedExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}

	filename := uuid.New().String() + ext
	path := filepath.Join(s.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	s.logger.Info("image stored", slog.String("filename", filename))
	return filename, nil
}

// Remove unlinks a stored image by filename. Names carrying path separators
// are refused so a crafted image URL cannot reach outside the store.
func (s *FileStore) Remove(filename string) error {
	if filename == "" || filename != filepath.Base(filename) {
		return fmt.Errorf("invalid image filename %q", filename)
	}

	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove image file: %w", err)
	}
	return nil
}

// FilenameFromURL extracts the stored filename from an image URL built by
// this service; empty when the URL does not point into the image store.
func (s *FileStore) FilenameFromURL(imageURL string) string {
	_, after, found := strings.Cut(imageURL, "/images/")
	if !found {
		return ""
	}
	return after
}

// Dir returns the directory images are served from
func (s *FileStore) Dir() string {
	return s.dir
}
