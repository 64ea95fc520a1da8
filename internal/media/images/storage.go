// Package images provides cover image processing and on-disk media storage.
package images

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage manages filesystem operations for one class of media files.
// Thread-safe for concurrent operations. Used for book covers and the raw
// EPUB source files attached to books.
type Storage struct {
	basePath string
	ext      string
	mu       sync.RWMutex // Protects file operations
}

// NewCoverStorage creates a Storage for book covers.
// Covers are stored as {basePath}/covers/{id}.jpg.
func NewCoverStorage(basePath string) (*Storage, error) {
	return NewStorage(basePath, "covers", ".jpg")
}

// NewSourceStorage creates a Storage for uploaded EPUB source files.
// Files are stored as {basePath}/books/{id}.epub.
func NewSourceStorage(basePath string) (*Storage, error) {
	return NewStorage(basePath, "books", ".epub")
}

// NewStorage creates a Storage rooted at {basePath}/{subdir}, naming files
// {id}{ext}.
func NewStorage(basePath, subdir, ext string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if subdir == "" {
		return nil, fmt.Errorf("subdirectory cannot be empty")
	}

	storagePath := filepath.Join(basePath, subdir)

	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", subdir, err)
	}

	return &Storage{
		basePath: storagePath,
		ext:      ext,
	}, nil
}

// Save stores data for an entity.
func (s *Storage) Save(id string, data []byte) error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}

	if len(data) == 0 {
		return fmt.Errorf("data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.Path(id), data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// Get retrieves stored data for an entity.
func (s *Storage) Get(id string) ([]byte, error) {
	if id == "" {
		return nil, fmt.Errorf("ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found for %s: %w", id, err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return data, nil
}

// Exists checks if a file exists for an entity.
func (s *Storage) Exists(id string) bool {
	if id == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path(id))
	return err == nil
}

// Delete removes an entity's file.
func (s *Storage) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(id)); err != nil {
		if os.IsNotExist(err) {
			// Already deleted, not an error.
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// Hash computes the SHA256 hash of a stored file.
// Returns hex-encoded string for ETag/cache validation.
func (s *Storage) Hash(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}

	data, err := s.Get(id)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Path returns the full filesystem path for an entity's file.
func (s *Storage) Path(id string) string {
	return filepath.Join(s.basePath, id+s.ext)
}
