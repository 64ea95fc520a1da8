package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ebookhub/ebookhub-server/internal/domain"
	domainerrors "github.com/ebookhub/ebookhub-server/internal/errors"
	"github.com/ebookhub/ebookhub-server/internal/media/images"
	"github.com/ebookhub/ebookhub-server/internal/store"
)

// BookService provides catalog reads over published books.
type BookService struct {
	store  *store.Store
	covers *images.Storage
	logger *slog.Logger
}

// NewBookService creates a new book catalog service.
func NewBookService(store *store.Store, covers *images.Storage, logger *slog.Logger) *BookService {
	return &BookService{store: store, covers: covers, logger: logger}
}

// GetBook returns a single book by ID.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// ListBooks returns a cursor-paginated page of the catalog.
func (s *BookService) ListBooks(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Book], error) {
	result, err := s.store.ListBooks(ctx, params)
	if err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			return nil, domainerrors.Validation("invalid pagination cursor")
		}
		return nil, fmt.Errorf("list books: %w", err)
	}
	return result, nil
}

// ListPublisherBooks returns all books published by a user, including
// books created by forking.
func (s *BookService) ListPublisherBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("publisher not found")
		}
		return nil, fmt.Errorf("lookup publisher: %w", err)
	}

	books, err := s.store.ListBooksByPublisher(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list publisher books: %w", err)
	}
	return books, nil
}

// GetCover returns the stored cover image bytes for a book.
func (s *BookService) GetCover(ctx context.Context, bookID string) ([]byte, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.HasCover() {
		return nil, domainerrors.NotFound("book has no cover")
	}

	data, err := s.covers.Get(book.ID)
	if err != nil {
		return nil, domainerrors.NotFound("cover not found").WithCause(err)
	}
	return data, nil
}

// DeleteBook removes a book, its chapters, and its reader interactions.
// Only the publishing user may delete a book.
func (s *BookService) DeleteBook(ctx context.Context, bookID string, user *domain.User) error {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return err
	}
	if book.PublisherID != user.ID {
		return domainerrors.Forbidden("only the publisher can delete this book")
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if s.covers != nil && book.HasCover() {
		if err := s.covers.Delete(book.ID); err != nil && s.logger != nil {
			s.logger.Warn("Failed to delete cover asset", "book_id", bookID, "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("Book deleted", "book_id", bookID, "user_id", user.ID)
	}
	return nil
}
