package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBooksReturnsSeededBooks(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.signupUser(t, "alice", "writer")

	ts.seedBook(t, "book-1", "Ocean Drift", userID, true)
	ts.seedBook(t, "book-2", "Harbor Lights", userID, false)

	resp := ts.api.Get("/api/v1/books", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[BookListResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Len(t, envelope.Data.Items, 2)
}

func TestGetBookNotFound(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.signupUser(t, "alice", "reader")

	resp := ts.api.Get("/api/v1/books/book-missing", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "NOT_FOUND", envelope.Code)
}

func TestDeleteBookPublisherOnly(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, aliceID := ts.signupUser(t, "alice", "writer")
	bobToken, _ := ts.signupUser(t, "bob", "writer")

	ts.seedBook(t, "book-1", "Ocean Drift", aliceID, true)

	resp := ts.api.Delete("/api/v1/books/book-1", "Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete("/api/v1/books/book-1", "Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/books/book-1", "Authorization: Bearer "+aliceToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetPublisherProfile(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.signupUser(t, "alice", "writer")
	ts.seedBook(t, "book-1", "Ocean Drift", userID, true)

	resp := ts.api.Get("/api/v1/publishers/"+userID, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[PublisherResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "alice", envelope.Data.Username)
	require.Len(t, envelope.Data.Books, 1)
	assert.Equal(t, "Ocean Drift", envelope.Data.Books[0].Title)
}
