// Package store provides persistence on top of Badger for all platform data.
package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/ebookhub/ebookhub-server/internal/domain"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Generic entities
	Authors *Entity[domain.Author]
	Genres  *Entity[domain.Genre]
	Formats *Entity[domain.Format]
	Plugins *Entity[domain.Plugin]
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	// Initialize generic entities
	store.initAuthors()
	store.initGenres()
	store.initFormats()
	store.initPlugins()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// delete removes a key from the database.
func (s *Store) delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// initAuthors initializes the Authors entity on the store.
// Author names are indexed exactly as stored, so "jane doe" and "Jane Doe"
// are distinct authors.
func (s *Store) initAuthors() {
	s.Authors = NewEntity[domain.Author](s, "author:").
		WithIndexTransform("name",
			func(a *domain.Author) []string {
				return []string{strings.TrimSpace(a.Name)}
			},
			strings.TrimSpace,
		)
}

// initGenres initializes the Genres entity on the store.
// Genre names are canonicalized to title case before storage, so the index
// only needs whitespace and case folding for lookups.
func (s *Store) initGenres() {
	s.Genres = NewEntity[domain.Genre](s, "genre:").
		WithIndexTransform("name",
			func(g *domain.Genre) []string {
				return []string{normalizeName(g.Name)}
			},
			normalizeName,
		)
}

// initFormats initializes the Formats entity on the store.
func (s *Store) initFormats() {
	s.Formats = NewEntity[domain.Format](s, "format:").
		WithIndexTransform("name",
			func(f *domain.Format) []string {
				return []string{normalizeName(f.Name)}
			},
			normalizeName,
		)
}

// initPlugins initializes the Plugins entity on the store.
func (s *Store) initPlugins() {
	s.Plugins = NewEntity[domain.Plugin](s, "plugin:").
		WithIndexTransform("title",
			func(p *domain.Plugin) []string {
				return []string{normalizeName(p.Title)}
			},
			normalizeName,
		)
}

// normalizeName normalizes a lookup name for consistent index keys.
// Lowercases and trims whitespace.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
