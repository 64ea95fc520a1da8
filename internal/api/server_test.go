package api

import (
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/ebookhub/ebookhub-server/internal/errors"
)

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	ts.Server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope testEnvelope[map[string]string]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "healthy", envelope.Data["status"])
}

func TestEnvelopeTransformerSuccessShape(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", map[string]string{"id": "x-1"})
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.Equal(t, float64(1), out["v"])
	assert.Equal(t, true, out["success"])
	assert.Contains(t, out, "data")
	assert.NotContains(t, out, "error")
}

func TestEnvelopeTransformerErrorShape(t *testing.T) {
	RegisterErrorHandler()

	apiErr := huma.NewError(http.StatusNotFound, "boom", domainerrors.NotFound("book not found"))
	result, err := EnvelopeTransformer(nil, "404", apiErr)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.Equal(t, float64(1), out["v"])
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "book not found", out["error"])
	assert.Equal(t, "NOT_FOUND", out["code"])
	assert.NotContains(t, out, "data")
}

func TestDomainErrorsMapToStatus(t *testing.T) {
	RegisterErrorHandler()

	cases := []struct {
		err    error
		status int
	}{
		{domainerrors.Validation("bad input"), http.StatusBadRequest},
		{domainerrors.Unauthorized("no token"), http.StatusUnauthorized},
		{domainerrors.Forbidden("writers only"), http.StatusForbidden},
		{domainerrors.NotFound("gone"), http.StatusNotFound},
		{domainerrors.Conflict("duplicate"), http.StatusConflict},
	}

	for _, tc := range cases {
		statusErr := huma.NewError(http.StatusInternalServerError, "fallback", tc.err)
		assert.Equal(t, tc.status, statusErr.GetStatus(), "for %v", tc.err)
	}
}
