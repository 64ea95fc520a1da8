package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebookhub/ebookhub-server/internal/domain"
	domainerrors "github.com/ebookhub/ebookhub-server/internal/errors"
)

func TestGetPublisherHidesPasswordHash(t *testing.T) {
	s := setupTestStore(t)
	svc := NewCatalogService(s)

	createTestUser(t, s, "user-1", "alice", domain.RoleWriter)

	publisher, err := svc.GetPublisher(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", publisher.Username)
	assert.Empty(t, publisher.PasswordHash)
}

func TestGetAuthorAndBooks(t *testing.T) {
	s := setupTestStore(t)
	svc := NewCatalogService(s)
	ctx := context.Background()

	author := &domain.Author{
		Syncable: domain.Syncable{ID: "author-1"},
		Name:     "Jane Doe",
	}
	author.InitTimestamps()
	require.NoError(t, s.Authors.Create(ctx, "author-1", author))

	createTestUser(t, s, "user-1", "alice", domain.RoleWriter)
	book := createTestBook(t, s, "book-1", "Attributed", "user-1", false)
	book.AuthorID = "author-1"
	require.NoError(t, s.UpdateBook(ctx, book))

	got, err := svc.GetAuthor(ctx, "author-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name)

	books, err := svc.ListAuthorBooks(ctx, "author-1")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "book-1", books[0].ID)

	_, err = svc.GetAuthor(ctx, "author-missing")
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeNotFound, derr.Code)
}

func TestListNamesByCatalogType(t *testing.T) {
	s := setupTestStore(t)
	svc := NewCatalogService(s)
	ctx := context.Background()

	createTestUser(t, s, "user-1", "alice", domain.RoleWriter)
	createTestBook(t, s, "book-1", "Alpha", "user-1", false)
	createTestBook(t, s, "book-2", "Beta", "user-1", false)

	author := &domain.Author{Syncable: domain.Syncable{ID: "author-1"}, Name: "Jane Doe"}
	author.InitTimestamps()
	require.NoError(t, s.Authors.Create(ctx, "author-1", author))

	genre := &domain.Genre{Syncable: domain.Syncable{ID: "genre-1"}, Name: "Horror"}
	genre.InitTimestamps()
	require.NoError(t, s.Genres.Create(ctx, "genre-1", genre))

	titles, err := svc.ListNames(ctx, CatalogBooks)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Alpha", "Beta"}, titles)

	authors, err := svc.ListNames(ctx, CatalogAuthors)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Doe"}, authors)

	genres, err := svc.ListNames(ctx, CatalogGenres)
	require.NoError(t, err)
	assert.Equal(t, []string{"Horror"}, genres)

	_, err = svc.ListNames(ctx, CatalogType("publishers"))
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeValidation, derr.Code)
}

func TestPluginRegistryToggle(t *testing.T) {
	s := setupTestStore(t)
	svc := NewPluginService(s, nil)
	ctx := context.Background()

	plugin, err := svc.RegisterPlugin(ctx, RegisterPluginRequest{
		Title:       "Word Count",
		Description: "Counts words per chapter.",
		Tags:        []string{"stats"},
	})
	require.NoError(t, err)
	assert.False(t, plugin.IsActive)

	toggled, err := svc.TogglePlugin(ctx, plugin.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)

	toggled, err = svc.TogglePlugin(ctx, plugin.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	plugins, err := svc.ListPlugins(ctx)
	require.NoError(t, err)
	assert.Len(t, plugins, 1)

	// Titles collide case-insensitively
	_, err = svc.RegisterPlugin(ctx, RegisterPluginRequest{
		Title:       "word count",
		Description: "Duplicate.",
	})
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeAlreadyExists, derr.Code)

	_, err = svc.TogglePlugin(ctx, "plugin-missing")
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeNotFound, derr.Code)
}
