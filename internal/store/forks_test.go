package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebookhub/ebookhub-server/internal/domain"
)

func newTestFork(id, originalID, userID, forkedID string) *domain.Fork {
	fork := &domain.Fork{
		OriginalBookID: originalID,
		ForkedByUserID: userID,
		ForkedBookID:   forkedID,
		DateForked:     time.Now(),
	}
	fork.ID = id
	fork.InitTimestamps()
	return fork
}

func TestCreateForkPair(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateBook(ctx, newTestBook("book-orig", "Original", "user-1")))

	forkedBook := newTestBook("book-fork", "Original [Forked]", "user-2")
	forkedBook.CanFork = false
	fork := newTestFork("fork-1", "book-orig", "user-2", "book-fork")

	require.NoError(t, s.CreateForkPair(ctx, forkedBook, fork))

	// Both records visible
	gotBook, err := s.GetBook(ctx, "book-fork")
	require.NoError(t, err)
	assert.Equal(t, "Original [Forked]", gotBook.Title)
	assert.False(t, gotBook.CanFork)

	gotFork, err := s.GetFork(ctx, "fork-1")
	require.NoError(t, err)
	assert.Equal(t, "book-orig", gotFork.OriginalBookID)

	forked, err := s.HasUserForked(ctx, "book-orig", "user-2")
	require.NoError(t, err)
	assert.True(t, forked)

	isFork, err := s.IsForkResult(ctx, "book-fork")
	require.NoError(t, err)
	assert.True(t, isFork)
}

func TestCreateForkPairSecondForkBySameUser(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateBook(ctx, newTestBook("book-orig", "Original", "user-1")))
	require.NoError(t, s.CreateForkPair(ctx,
		newTestBook("book-fork", "Original [Forked]", "user-2"),
		newTestFork("fork-1", "book-orig", "user-2", "book-fork")))

	err := s.CreateForkPair(ctx,
		newTestBook("book-fork2", "Original [Forked]", "user-2"),
		newTestFork("fork-2", "book-orig", "user-2", "book-fork2"))
	assert.ErrorIs(t, err, ErrAlreadyForked)

	// The rejected transaction wrote nothing
	_, err = s.GetBook(ctx, "book-fork2")
	assert.ErrorIs(t, err, ErrBookNotFound)
	_, err = s.GetFork(ctx, "fork-2")
	assert.ErrorIs(t, err, ErrForkNotFound)
}

func TestCreateForkPairOfForkResult(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateBook(ctx, newTestBook("book-orig", "Original", "user-1")))
	require.NoError(t, s.CreateForkPair(ctx,
		newTestBook("book-fork", "Original [Forked]", "user-2"),
		newTestFork("fork-1", "book-orig", "user-2", "book-fork")))

	// Forking the fork result is rejected even by a different user
	err := s.CreateForkPair(ctx,
		newTestBook("book-fork2", "Original [Forked] [Forked]", "user-3"),
		newTestFork("fork-2", "book-fork", "user-3", "book-fork2"))
	assert.ErrorIs(t, err, ErrBookIsForkResult)
}

func TestListUserForkedBooks(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateBook(ctx, newTestBook("book-a", "A", "user-1")))
	require.NoError(t, s.CreateBook(ctx, newTestBook("book-b", "B", "user-1")))

	require.NoError(t, s.CreateForkPair(ctx,
		newTestBook("fork-of-a", "A [Forked]", "user-2"),
		newTestFork("fork-1", "book-a", "user-2", "fork-of-a")))
	require.NoError(t, s.CreateForkPair(ctx,
		newTestBook("fork-of-b", "B [Forked]", "user-2"),
		newTestFork("fork-2", "book-b", "user-2", "fork-of-b")))

	books, err := s.ListUserForkedBooks(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, books, 2)

	none, err := s.ListUserForkedBooks(ctx, "user-9")
	require.NoError(t, err)
	assert.Empty(t, none)
}
