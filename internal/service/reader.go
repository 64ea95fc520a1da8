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

// ReaderService handles reader interactions with books: loves, bookmarks,
// ratings, comments, and comment likes.
type ReaderService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewReaderService creates a new reader interaction service.
func NewReaderService(store *store.Store, logger *slog.Logger) *ReaderService {
	return &ReaderService{store: store, logger: logger}
}

// RateRequest contains a rating submission.
type RateRequest struct {
	Rating float64 `json:"rating" validate:"gte=0,lte=5"`
}

// CommentRequest contains a comment submission.
type CommentRequest struct {
	Content string `json:"content" validate:"required,max=4096"`
}

func (s *ReaderService) bookExists(ctx context.Context, bookID string) error {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return domainerrors.NotFound("book not found")
		}
		return fmt.Errorf("lookup book: %w", err)
	}
	return nil
}

// LoveBook records that a user loves a book. At most one love per
// (user, book) pair.
func (s *ReaderService) LoveBook(ctx context.Context, bookID, userID string) (*domain.Love, error) {
	if err := s.bookExists(ctx, bookID); err != nil {
		return nil, err
	}

	loveID, err := id.Generate("love")
	if err != nil {
		return nil, fmt.Errorf("generate love ID: %w", err)
	}

	love := &domain.Love{
		ID:        loveID,
		UserID:    userID,
		BookID:    bookID,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateLove(ctx, love); err != nil {
		if errors.Is(err, store.ErrAlreadyLoved) {
			return nil, domainerrors.Conflict("book already loved")
		}
		return nil, fmt.Errorf("create love: %w", err)
	}
	return love, nil
}

// UnloveBook removes a user's love from a book.
func (s *ReaderService) UnloveBook(ctx context.Context, bookID, userID string) error {
	if err := s.store.DeleteLove(ctx, userID, bookID); err != nil {
		return fmt.Errorf("delete love: %w", err)
	}
	return nil
}

// ListBookLoves returns all loves recorded on a book.
func (s *ReaderService) ListBookLoves(ctx context.Context, bookID string) ([]*domain.Love, error) {
	if err := s.bookExists(ctx, bookID); err != nil {
		return nil, err
	}
	loves, err := s.store.ListBookLoves(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list loves: %w", err)
	}
	return loves, nil
}

// BookmarkBook records that a user bookmarked a book. At most one
// bookmark per (user, book) pair.
func (s *ReaderService) BookmarkBook(ctx context.Context, bookID, userID string) (*domain.Bookmark, error) {
	if err := s.bookExists(ctx, bookID); err != nil {
		return nil, err
	}

	bookmarkID, err := id.Generate("bookmark")
	if err != nil {
		return nil, fmt.Errorf("generate bookmark ID: %w", err)
	}

	bookmark := &domain.Bookmark{
		ID:        bookmarkID,
		UserID:    userID,
		BookID:    bookID,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateBookmark(ctx, bookmark); err != nil {
		if errors.Is(err, store.ErrAlreadyBookmarked) {
			return nil, domainerrors.Conflict("book already bookmarked")
		}
		return nil, fmt.Errorf("create bookmark: %w", err)
	}
	return bookmark, nil
}

// UnbookmarkBook removes a user's bookmark from a book.
func (s *ReaderService) UnbookmarkBook(ctx context.Context, bookID, userID string) error {
	if err := s.store.DeleteBookmark(ctx, userID, bookID); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

// ListBookBookmarks returns all bookmarks recorded on a book.
func (s *ReaderService) ListBookBookmarks(ctx context.Context, bookID string) ([]*domain.Bookmark, error) {
	if err := s.bookExists(ctx, bookID); err != nil {
		return nil, err
	}
	bookmarks, err := s.store.ListBookBookmarks(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return bookmarks, nil
}

// RateBook upserts a user's rating for a book and returns the book with
// its recomputed aggregate. Resubmitting overwrites the previous value.
func (s *ReaderService) RateBook(ctx context.Context, bookID, userID string, req RateRequest) (*domain.Rating, *domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, nil, err
	}
	if !domain.ValidRating(req.Rating) {
		return nil, nil, domainerrors.Validationf("rating must be between %v and %v", domain.RatingMin, domain.RatingMax)
	}

	ratingID, err := id.Generate("rating")
	if err != nil {
		return nil, nil, fmt.Errorf("generate rating ID: %w", err)
	}

	now := time.Now()
	rating := &domain.Rating{
		ID:        ratingID,
		UserID:    userID,
		BookID:    bookID,
		Value:     req.Rating,
		CreatedAt: now,
		UpdatedAt: now,
	}

	book, err := s.store.UpsertRating(ctx, rating)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, nil, domainerrors.NotFound("book not found")
		}
		return nil, nil, fmt.Errorf("upsert rating: %w", err)
	}

	return rating, book, nil
}

// ListBookRatings returns all ratings recorded on a book.
func (s *ReaderService) ListBookRatings(ctx context.Context, bookID string) ([]*domain.Rating, error) {
	if err := s.bookExists(ctx, bookID); err != nil {
		return nil, err
	}
	ratings, err := s.store.ListBookRatings(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
}

// CommentOnBook adds a comment to a book. Comments are unbounded per user.
func (s *ReaderService) CommentOnBook(ctx context.Context, bookID, userID string, req CommentRequest) (*domain.Comment, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if err := s.bookExists(ctx, bookID); err != nil {
		return nil, err
	}

	commentID, err := id.Generate("comment")
	if err != nil {
		return nil, fmt.Errorf("generate comment ID: %w", err)
	}

	now := time.Now()
	comment := &domain.Comment{
		ID:        commentID,
		UserID:    userID,
		BookID:    bookID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// ListBookComments returns all comments on a book.
func (s *ReaderService) ListBookComments(ctx context.Context, bookID string) ([]*domain.Comment, error) {
	if err := s.bookExists(ctx, bookID); err != nil {
		return nil, err
	}
	comments, err := s.store.ListBookComments(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// LikeComment records that a user liked a comment. At most one like per
// (user, comment) pair.
func (s *ReaderService) LikeComment(ctx context.Context, commentID, userID string) (*domain.CommentLike, error) {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, store.ErrCommentNotFound) {
			return nil, domainerrors.NotFound("comment not found")
		}
		return nil, fmt.Errorf("lookup comment: %w", err)
	}

	likeID, err := id.Generate("commentlike")
	if err != nil {
		return nil, fmt.Errorf("generate like ID: %w", err)
	}

	like := &domain.CommentLike{
		ID:        likeID,
		UserID:    userID,
		CommentID: commentID,
		BookID:    comment.BookID,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateCommentLike(ctx, like); err != nil {
		if errors.Is(err, store.ErrAlreadyLiked) {
			return nil, domainerrors.Conflict("comment already liked")
		}
		return nil, fmt.Errorf("create comment like: %w", err)
	}
	return like, nil
}

// ListCommentLikes returns all likes on a comment.
func (s *ReaderService) ListCommentLikes(ctx context.Context, commentID string) ([]*domain.CommentLike, error) {
	if _, err := s.store.GetComment(ctx, commentID); err != nil {
		if errors.Is(err, store.ErrCommentNotFound) {
			return nil, domainerrors.NotFound("comment not found")
		}
		return nil, fmt.Errorf("lookup comment: %w", err)
	}

	likes, err := s.store.ListCommentLikes(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("list comment likes: %w", err)
	}
	return likes, nil
}

// ListUserLovedBooks returns the books a user has loved.
func (s *ReaderService) ListUserLovedBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	books, err := s.store.ListUserLovedBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list loved books: %w", err)
	}
	return books, nil
}

// ListUserBookmarkedBooks returns the books a user has bookmarked.
func (s *ReaderService) ListUserBookmarkedBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	books, err := s.store.ListUserBookmarkedBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarked books: %w", err)
	}
	return books, nil
}

// ListUserRatedBooks returns the books a user has rated.
func (s *ReaderService) ListUserRatedBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	books, err := s.store.ListUserRatedBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list rated books: %w", err)
	}
	return books, nil
}

// ListUserCommentedBooks returns the distinct books a user has commented on.
func (s *ReaderService) ListUserCommentedBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	books, err := s.store.ListUserCommentedBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list commented books: %w", err)
	}
	return books, nil
}
