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

// ForkService implements the fork workflow: copying a forkable book into
// a new book owned by the requesting writer, with provenance tracking.
type ForkService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewForkService creates a new fork service.
func NewForkService(store *store.Store, logger *slog.Logger) *ForkService {
	return &ForkService{store: store, logger: logger}
}

// ForkResult pairs the new book with its provenance record.
type ForkResult struct {
	Book *domain.Book `json:"book"`
	Fork *domain.Fork `json:"fork"`
}

// Fork copies a forkable book for the requesting user. Preconditions are
// checked in order: the original must exist, be marked forkable, not have
// been forked by this user before, and not itself be the result of a fork.
// The new book and the fork record are committed atomically, so concurrent
// requests for the same (book, user) pair cannot both succeed.
func (s *ForkService) Fork(ctx context.Context, originalBookID string, user *domain.User) (*ForkResult, error) {
	if !user.IsWriter() {
		return nil, domainerrors.Forbidden("only writers can fork books")
	}

	original, err := s.store.GetBook(ctx, originalBookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("lookup book: %w", err)
	}

	if !original.CanFork {
		return nil, domainerrors.Conflict("book is not forkable")
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}
	forkID, err := id.Generate("fork")
	if err != nil {
		return nil, fmt.Errorf("generate fork ID: %w", err)
	}

	now := time.Now()
	forkedBook := &domain.Book{
		Syncable: domain.Syncable{
			ID: bookID,
		},
		Title:         original.Title + " [Forked]",
		AuthorID:      original.AuthorID,
		PublisherID:   user.ID,
		Description:   original.Description,
		GenreIDs:      append([]string(nil), original.GenreIDs...),
		CoverPath:     original.CoverPath,
		CoverBlurHash: original.CoverBlurHash,
		DatePublished: now,
		FormatID:      original.FormatID,
		CanFork:       false, // A fork result can never be forked again
		Ongoing:       original.Ongoing,
	}
	forkedBook.InitTimestamps()

	fork := &domain.Fork{
		Syncable: domain.Syncable{
			ID: forkID,
		},
		OriginalBookID: original.ID,
		ForkedByUserID: user.ID,
		ForkedBookID:   bookID,
		DateForked:     now,
	}
	fork.InitTimestamps()

	if err := s.store.CreateForkPair(ctx, forkedBook, fork); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyForked):
			return nil, domainerrors.Conflict("you have already forked this book")
		case errors.Is(err, store.ErrBookIsForkResult):
			return nil, domainerrors.Conflict("a forked book cannot be forked again")
		}
		return nil, fmt.Errorf("create fork: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Book forked",
			"original_book_id", original.ID,
			"forked_book_id", bookID,
			"user_id", user.ID,
		)
	}

	return &ForkResult{Book: forkedBook, Fork: fork}, nil
}

// ListUserForkedBooks returns the books a user created by forking.
func (s *ForkService) ListUserForkedBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	books, err := s.store.ListUserForkedBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list forked books: %w", err)
	}
	return books, nil
}
