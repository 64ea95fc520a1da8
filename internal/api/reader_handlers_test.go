package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoveAndUnloveBook(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.signupUser(t, "alice", "writer")
	ts.seedBook(t, "book-1", "Ocean Drift", userID, true)

	resp := ts.api.Post("/api/v1/books/book-1/loves", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	// Loving the same book twice is rejected.
	resp = ts.api.Post("/api/v1/books/book-1/loves", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = ts.api.Get("/api/v1/books/book-1/loves", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[[]InteractionResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, userID, envelope.Data[0].UserID)

	resp = ts.api.Delete("/api/v1/books/book-1/loves", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	// After removal the book can be loved again.
	resp = ts.api.Post("/api/v1/books/book-1/loves", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusCreated, resp.Code)
}

func TestBookmarkBook(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.signupUser(t, "alice", "reader")
	ts.seedBook(t, "book-1", "Ocean Drift", userID, true)

	resp := ts.api.Post("/api/v1/books/book-1/bookmarks", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/books/book-1/bookmarks", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestRateBookUpserts(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, aliceID := ts.signupUser(t, "alice", "reader")
	bobToken, _ := ts.signupUser(t, "bob", "reader")
	ts.seedBook(t, "book-1", "Ocean Drift", aliceID, true)

	resp := ts.api.Post("/api/v1/books/book-1/ratings",
		"Authorization: Bearer "+aliceToken,
		map[string]any{"rating": 5},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[RateBookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 5.0, envelope.Data.BookRating)

	resp = ts.api.Post("/api/v1/books/book-1/ratings",
		"Authorization: Bearer "+bobToken,
		map[string]any{"rating": 0},
	)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 2.5, envelope.Data.BookRating)

	// Resubmitting replaces the previous value instead of adding a row.
	resp = ts.api.Post("/api/v1/books/book-1/ratings",
		"Authorization: Bearer "+aliceToken,
		map[string]any{"rating": 2},
	)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 1.0, envelope.Data.BookRating)

	resp = ts.api.Get("/api/v1/books/book-1/ratings", "Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var listEnvelope testEnvelope[[]RatingResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listEnvelope))
	assert.Len(t, listEnvelope.Data, 2)
}

func TestRateBookRejectsOutOfRange(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.signupUser(t, "alice", "reader")
	ts.seedBook(t, "book-1", "Ocean Drift", userID, true)

	resp := ts.api.Post("/api/v1/books/book-1/ratings",
		"Authorization: Bearer "+token,
		map[string]any{"rating": 5.5},
	)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestCommentsAndLikes(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, aliceID := ts.signupUser(t, "alice", "reader")
	bobToken, _ := ts.signupUser(t, "bob", "reader")
	ts.seedBook(t, "book-1", "Ocean Drift", aliceID, true)

	resp := ts.api.Post("/api/v1/books/book-1/comments",
		"Authorization: Bearer "+aliceToken,
		map[string]any{"content": "Loved the lighthouse scene."},
	)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var commentEnvelope testEnvelope[CommentResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &commentEnvelope))
	commentID := commentEnvelope.Data.ID

	resp = ts.api.Post("/api/v1/comments/"+commentID+"/comment-likes",
		"Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	// One like per user per comment.
	resp = ts.api.Post("/api/v1/comments/"+commentID+"/comment-likes",
		"Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = ts.api.Get("/api/v1/comments/"+commentID+"/comment-likes",
		"Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var likesEnvelope testEnvelope[[]CommentLikeResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &likesEnvelope))
	require.Len(t, likesEnvelope.Data, 1)
	assert.Equal(t, "book-1", likesEnvelope.Data[0].BookID)
}

func TestListUserLovedBooks(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.signupUser(t, "alice", "reader")
	ts.seedBook(t, "book-1", "Ocean Drift", userID, true)
	ts.seedBook(t, "book-2", "Harbor Lights", userID, true)

	for _, bookID := range []string{"book-1", "book-2"} {
		resp := ts.api.Post("/api/v1/books/"+bookID+"/loves", "Authorization: Bearer "+token)
		require.Equal(t, http.StatusCreated, resp.Code)
	}

	resp := ts.api.Get("/api/v1/users/"+userID+"/loved-books", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[BookListResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Items, 2)
}
