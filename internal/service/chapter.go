package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ebookhub/ebookhub-server/internal/domain"
	domainerrors "github.com/ebookhub/ebookhub-server/internal/errors"
	"github.com/ebookhub/ebookhub-server/internal/id"
	"github.com/ebookhub/ebookhub-server/internal/store"
)

// DefaultChapterPageSize caps how many chapters a listing returns when the
// caller does not ask for a specific limit.
const DefaultChapterPageSize = 20

// ChapterService handles chapter reads and writer editing of ongoing books.
type ChapterService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewChapterService creates a new chapter service.
func NewChapterService(store *store.Store, logger *slog.Logger) *ChapterService {
	return &ChapterService{store: store, logger: logger}
}

// ChapterRequest contains chapter content for create and update calls.
type ChapterRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// ListBookChapters returns a book's chapters ordered by chapter number.
// A non-positive limit applies the default page size.
func (s *ChapterService) ListBookChapters(ctx context.Context, bookID string, limit int) ([]*domain.Chapter, error) {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("lookup book: %w", err)
	}

	if limit <= 0 {
		limit = DefaultChapterPageSize
	}

	chapters, err := s.store.ListBookChapters(ctx, bookID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	return chapters, nil
}

// GetChapter returns a single chapter by ID.
func (s *ChapterService) GetChapter(ctx context.Context, chapterID string) (*domain.Chapter, error) {
	chapter, err := s.store.GetChapter(ctx, chapterID)
	if err != nil {
		if errors.Is(err, store.ErrChapterNotFound) {
			return nil, domainerrors.NotFound("chapter not found")
		}
		return nil, fmt.Errorf("get chapter: %w", err)
	}
	return chapter, nil
}

// CreateChapter appends a chapter to a book the user publishes. The new
// chapter receives the next free chapter number.
func (s *ChapterService) CreateChapter(ctx context.Context, bookID string, user *domain.User, req ChapterRequest) (*domain.Chapter, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.ownedBook(ctx, bookID, user)
	if err != nil {
		return nil, err
	}

	number, err := s.store.NextChapterNumber(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("next chapter number: %w", err)
	}

	chapterID, err := id.Generate("chapter")
	if err != nil {
		return nil, fmt.Errorf("generate chapter ID: %w", err)
	}

	chapter := &domain.Chapter{
		Syncable: domain.Syncable{
			ID: chapterID,
		},
		BookID:        bookID,
		Title:         req.Title,
		Content:       req.Content,
		ChapterNumber: number,
		DatePublished: time.Now(),
	}
	chapter.InitTimestamps()

	if err := s.store.CreateChapter(ctx, chapter); err != nil {
		if errors.Is(err, store.ErrChapterNumberTaken) {
			return nil, domainerrors.Conflict("chapter number already taken")
		}
		return nil, fmt.Errorf("create chapter: %w", err)
	}

	book.ChapterCount++
	book.Touch()
	if err := s.store.UpdateBook(ctx, book); err != nil {
		// Count drifts until the next write, the chapter itself is saved
		if s.logger != nil {
			s.logger.Warn("Failed to update chapter count", "book_id", bookID, "error", err)
		}
	}

	return chapter, nil
}

// UpdateChapter replaces a chapter's title and content. Chapter number and
// publication date are immutable.
func (s *ChapterService) UpdateChapter(ctx context.Context, chapterID string, user *domain.User, req ChapterRequest) (*domain.Chapter, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	chapter, err := s.GetChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedBook(ctx, chapter.BookID, user); err != nil {
		return nil, err
	}

	chapter.Title = req.Title
	chapter.Content = req.Content

	if err := s.store.UpdateChapter(ctx, chapter); err != nil {
		return nil, fmt.Errorf("update chapter: %w", err)
	}
	return chapter, nil
}

// DeleteChapter removes a chapter from a book the user publishes.
func (s *ChapterService) DeleteChapter(ctx context.Context, chapterID string, user *domain.User) error {
	chapter, err := s.GetChapter(ctx, chapterID)
	if err != nil {
		return err
	}

	book, err := s.ownedBook(ctx, chapter.BookID, user)
	if err != nil {
		return err
	}

	if err := s.store.DeleteChapter(ctx, chapterID); err != nil {
		return fmt.Errorf("delete chapter: %w", err)
	}

	if book.ChapterCount > 0 {
		book.ChapterCount--
		book.Touch()
		if err := s.store.UpdateBook(ctx, book); err != nil && s.logger != nil {
			s.logger.Warn("Failed to update chapter count", "book_id", book.ID, "error", err)
		}
	}
	return nil
}

// ownedBook loads a book and verifies the user is its publishing writer.
func (s *ChapterService) ownedBook(ctx context.Context, bookID string, user *domain.User) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("lookup book: %w", err)
	}

	if !user.IsWriter() || book.PublisherID != user.ID {
		return nil, domainerrors.Forbidden("only the publisher can edit this book")
	}
	return book, nil
}
