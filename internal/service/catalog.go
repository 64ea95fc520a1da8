package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ebookhub/ebookhub-server/internal/domain"
	domainerrors "github.com/ebookhub/ebookhub-server/internal/errors"
	"github.com/ebookhub/ebookhub-server/internal/store"
)

// CatalogService provides reads over the reference entities of the
// catalog: authors, genres, publishers, and the name listing endpoint.
type CatalogService struct {
	store *store.Store
}

// NewCatalogService creates a new catalog reference service.
func NewCatalogService(store *store.Store) *CatalogService {
	return &CatalogService{store: store}
}

// GetAuthor returns an author by ID.
func (s *CatalogService) GetAuthor(ctx context.Context, authorID string) (*domain.Author, error) {
	author, err := s.store.Authors.Get(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("author not found")
		}
		return nil, fmt.Errorf("get author: %w", err)
	}
	return author, nil
}

// ListAuthorBooks returns all books attributed to an author.
func (s *CatalogService) ListAuthorBooks(ctx context.Context, authorID string) ([]*domain.Book, error) {
	if _, err := s.GetAuthor(ctx, authorID); err != nil {
		return nil, err
	}

	books, err := s.store.ListBooksByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("list author books: %w", err)
	}
	return books, nil
}

// GetGenre returns a genre by ID.
func (s *CatalogService) GetGenre(ctx context.Context, genreID string) (*domain.Genre, error) {
	genre, err := s.store.Genres.Get(ctx, genreID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("genre not found")
		}
		return nil, fmt.Errorf("get genre: %w", err)
	}
	return genre, nil
}

// GetPublisher returns the public profile of a publishing user.
// The password hash is cleared before the user leaves the service layer.
func (s *CatalogService) GetPublisher(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("publisher not found")
		}
		return nil, fmt.Errorf("get publisher: %w", err)
	}

	public := *user
	public.PasswordHash = ""
	return &public, nil
}

// CatalogType selects which names ListNames returns.
type CatalogType string

const (
	CatalogBooks   CatalogType = "books"
	CatalogAuthors CatalogType = "authors"
	CatalogGenres  CatalogType = "genres"
)

// ListNames returns the display names of all entries of one catalog type.
func (s *CatalogService) ListNames(ctx context.Context, typ CatalogType) ([]string, error) {
	switch typ {
	case CatalogBooks:
		titles, err := s.store.ListBookTitles(ctx)
		if err != nil {
			return nil, fmt.Errorf("list book titles: %w", err)
		}
		return titles, nil

	case CatalogAuthors:
		var names []string
		for author, err := range s.store.Authors.List(ctx) {
			if err != nil {
				return nil, fmt.Errorf("list authors: %w", err)
			}
			names = append(names, author.Name)
		}
		return names, nil

	case CatalogGenres:
		var names []string
		for genre, err := range s.store.Genres.List(ctx) {
			if err != nil {
				return nil, fmt.Errorf("list genres: %w", err)
			}
			names = append(names, genre.Name)
		}
		return names, nil
	}

	return nil, domainerrors.Validationf("unknown catalog type %q", string(typ))
}
