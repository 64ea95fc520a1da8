package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForkBook(t *testing.T) {
	ts := setupTestServer(t)
	_, aliceID := ts.signupUser(t, "alice", "writer")
	bobToken, bobID := ts.signupUser(t, "bob", "writer")

	ts.seedBook(t, "book-1", "Ocean Drift", aliceID, true)

	resp := ts.api.Post("/api/v1/books/book-1/fork", "Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var envelope testEnvelope[ForkResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "Ocean Drift [Forked]", envelope.Data.Book.Title)
	assert.Equal(t, bobID, envelope.Data.Book.PublisherID)
	assert.False(t, envelope.Data.Book.CanFork)
	assert.Equal(t, "book-1", envelope.Data.Fork.OriginalBookID)

	// A second fork of the same book by the same user is rejected.
	resp = ts.api.Post("/api/v1/books/book-1/fork", "Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusConflict, resp.Code)

	// Fork results cannot be forked again.
	resp = ts.api.Post("/api/v1/books/"+envelope.Data.Book.ID+"/fork", "Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestForkRequiresWriterRole(t *testing.T) {
	ts := setupTestServer(t)
	_, aliceID := ts.signupUser(t, "alice", "writer")
	readerToken, _ := ts.signupUser(t, "carol", "reader")

	ts.seedBook(t, "book-1", "Ocean Drift", aliceID, true)

	resp := ts.api.Post("/api/v1/books/book-1/fork", "Authorization: Bearer "+readerToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestForkNonForkableBook(t *testing.T) {
	ts := setupTestServer(t)
	_, aliceID := ts.signupUser(t, "alice", "writer")
	bobToken, _ := ts.signupUser(t, "bob", "writer")

	ts.seedBook(t, "book-1", "Locked Pages", aliceID, false)

	resp := ts.api.Post("/api/v1/books/book-1/fork", "Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestListUserForkedBooks(t *testing.T) {
	ts := setupTestServer(t)
	_, aliceID := ts.signupUser(t, "alice", "writer")
	bobToken, bobID := ts.signupUser(t, "bob", "writer")

	ts.seedBook(t, "book-1", "Ocean Drift", aliceID, true)

	resp := ts.api.Post("/api/v1/books/book-1/fork", "Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.api.Get("/api/v1/users/"+bobID+"/forked-books", "Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[BookListResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Items, 1)
	assert.Equal(t, "Ocean Drift [Forked]", envelope.Data.Items[0].Title)
}
