package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebookhub/ebookhub-server/internal/domain"
	domainerrors "github.com/ebookhub/ebookhub-server/internal/errors"
	"github.com/ebookhub/ebookhub-server/internal/store"
)

func setupTestReader(t *testing.T) (*ReaderService, *store.Store) {
	t.Helper()
	s := setupTestStore(t)
	return NewReaderService(s, nil), s
}

func TestLoveBookOncePerPair(t *testing.T) {
	svc, s := setupTestReader(t)
	ctx := context.Background()

	createTestUser(t, s, "user-1", "alice", domain.RoleReader)
	createTestUser(t, s, "user-owner", "owner", domain.RoleWriter)
	createTestBook(t, s, "book-1", "Loved", "user-owner", false)

	love, err := svc.LoveBook(ctx, "book-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "book-1", love.BookID)

	_, err = svc.LoveBook(ctx, "book-1", "user-1")
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeConflict, derr.Code)

	// Removing the love frees the pair for a fresh one
	require.NoError(t, svc.UnloveBook(ctx, "book-1", "user-1"))
	_, err = svc.LoveBook(ctx, "book-1", "user-1")
	require.NoError(t, err)
}

func TestLoveMissingBook(t *testing.T) {
	svc, s := setupTestReader(t)
	createTestUser(t, s, "user-1", "alice", domain.RoleReader)

	_, err := svc.LoveBook(context.Background(), "book-missing", "user-1")

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeNotFound, derr.Code)
}

func TestBookmarkBookOncePerPair(t *testing.T) {
	svc, s := setupTestReader(t)
	ctx := context.Background()

	createTestUser(t, s, "user-1", "alice", domain.RoleReader)
	createTestUser(t, s, "user-owner", "owner", domain.RoleWriter)
	createTestBook(t, s, "book-1", "Marked", "user-owner", false)

	_, err := svc.BookmarkBook(ctx, "book-1", "user-1")
	require.NoError(t, err)

	_, err = svc.BookmarkBook(ctx, "book-1", "user-1")
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeConflict, derr.Code)

	bookmarks, err := svc.ListBookBookmarks(ctx, "book-1")
	require.NoError(t, err)
	assert.Len(t, bookmarks, 1)
}

func TestRateBookUpsertsAndAggregates(t *testing.T) {
	svc, s := setupTestReader(t)
	ctx := context.Background()

	createTestUser(t, s, "user-1", "alice", domain.RoleReader)
	createTestUser(t, s, "user-2", "bob", domain.RoleReader)
	createTestUser(t, s, "user-owner", "owner", domain.RoleWriter)
	createTestBook(t, s, "book-1", "Rated", "user-owner", false)

	_, book, err := svc.RateBook(ctx, "book-1", "user-1", RateRequest{Rating: 5})
	require.NoError(t, err)
	require.NotNil(t, book.Rating)
	assert.InDelta(t, 5.0, *book.Rating, 0.001)

	_, book, err = svc.RateBook(ctx, "book-1", "user-2", RateRequest{Rating: 0})
	require.NoError(t, err)
	require.NotNil(t, book.Rating)
	assert.InDelta(t, 2.5, *book.Rating, 0.001)

	// Resubmission overwrites alice's value instead of adding a second row
	_, book, err = svc.RateBook(ctx, "book-1", "user-1", RateRequest{Rating: 2})
	require.NoError(t, err)
	require.NotNil(t, book.Rating)
	assert.InDelta(t, 1.0, *book.Rating, 0.001)

	ratings, err := svc.ListBookRatings(ctx, "book-1")
	require.NoError(t, err)
	assert.Len(t, ratings, 2)
}

func TestRateBookRejectsOutOfRange(t *testing.T) {
	svc, s := setupTestReader(t)
	createTestUser(t, s, "user-owner", "owner", domain.RoleWriter)
	createTestBook(t, s, "book-1", "Rated", "user-owner", false)

	_, _, err := svc.RateBook(context.Background(), "book-1", "user-1", RateRequest{Rating: 5.5})

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeValidation, derr.Code)
}

func TestCommentsAndLikes(t *testing.T) {
	svc, s := setupTestReader(t)
	ctx := context.Background()

	createTestUser(t, s, "user-1", "alice", domain.RoleReader)
	createTestUser(t, s, "user-2", "bob", domain.RoleReader)
	createTestUser(t, s, "user-owner", "owner", domain.RoleWriter)
	createTestBook(t, s, "book-1", "Discussed", "user-owner", false)

	// Comments are unbounded per user
	first, err := svc.CommentOnBook(ctx, "book-1", "user-1", CommentRequest{Content: "Great opening."})
	require.NoError(t, err)
	_, err = svc.CommentOnBook(ctx, "book-1", "user-1", CommentRequest{Content: "Weak ending."})
	require.NoError(t, err)

	comments, err := svc.ListBookComments(ctx, "book-1")
	require.NoError(t, err)
	assert.Len(t, comments, 2)

	like, err := svc.LikeComment(ctx, first.ID, "user-2")
	require.NoError(t, err)
	assert.Equal(t, "book-1", like.BookID)

	_, err = svc.LikeComment(ctx, first.ID, "user-2")
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeConflict, derr.Code)

	likes, err := svc.ListCommentLikes(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, likes, 1)
}

func TestLikeMissingComment(t *testing.T) {
	svc, s := setupTestReader(t)
	createTestUser(t, s, "user-1", "alice", domain.RoleReader)

	_, err := svc.LikeComment(context.Background(), "comment-missing", "user-1")

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeNotFound, derr.Code)
}

func TestListUserInteractionBooks(t *testing.T) {
	svc, s := setupTestReader(t)
	ctx := context.Background()

	createTestUser(t, s, "user-1", "alice", domain.RoleReader)
	createTestUser(t, s, "user-owner", "owner", domain.RoleWriter)
	createTestBook(t, s, "book-1", "First", "user-owner", false)
	createTestBook(t, s, "book-2", "Second", "user-owner", false)

	_, err := svc.LoveBook(ctx, "book-1", "user-1")
	require.NoError(t, err)
	_, err = svc.BookmarkBook(ctx, "book-2", "user-1")
	require.NoError(t, err)
	_, _, err = svc.RateBook(ctx, "book-1", "user-1", RateRequest{Rating: 4})
	require.NoError(t, err)
	_, err = svc.CommentOnBook(ctx, "book-2", "user-1", CommentRequest{Content: "Hm."})
	require.NoError(t, err)
	_, err = svc.CommentOnBook(ctx, "book-2", "user-1", CommentRequest{Content: "Again."})
	require.NoError(t, err)

	loved, err := svc.ListUserLovedBooks(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, loved, 1)
	assert.Equal(t, "book-1", loved[0].ID)

	bookmarked, err := svc.ListUserBookmarkedBooks(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, bookmarked, 1)
	assert.Equal(t, "book-2", bookmarked[0].ID)

	rated, err := svc.ListUserRatedBooks(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, rated, 1)

	// Two comments on the same book still count it once
	commented, err := svc.ListUserCommentedBooks(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, commented, 1)
	assert.Equal(t, "book-2", commented[0].ID)
}
