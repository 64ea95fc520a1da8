package api

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/ebookhub/ebookhub-server/internal/auth"
	"github.com/ebookhub/ebookhub-server/internal/config"
	"github.com/ebookhub/ebookhub-server/internal/domain"
	"github.com/ebookhub/ebookhub-server/internal/media/images"
	"github.com/ebookhub/ebookhub-server/internal/service"
	"github.com/ebookhub/ebookhub-server/internal/store"
)

const testServerKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

// testServer wraps the API server for handler testing.
type testServer struct {
	*Server
	api          humatest.TestAPI
	tokenService *auth.TokenService
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()

	st, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg := &config.Config{
		Auth: config.AuthConfig{
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 30 * 24 * time.Hour,
			RateLimitPerSecond:   1000,
			RateLimitBurst:       1000,
		},
		Upload: config.UploadConfig{
			MaxFileSize:  64 << 20,
			MaxCoverSize: 8 << 20,
		},
	}

	tokenService, err := auth.NewTokenService(
		testServerKeyHex,
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
	)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	covers, err := images.NewCoverStorage(tmpDir)
	require.NoError(t, err)
	sources, err := images.NewSourceStorage(tmpDir)
	require.NoError(t, err)

	sessionService := service.NewSessionService(st, tokenService, logger)
	authService := service.NewAuthService(st, tokenService, sessionService, logger)

	services := &Services{
		Auth:    authService,
		Session: sessionService,
		Ingest:  service.NewIngestService(st, covers, sources, logger),
		Book:    service.NewBookService(st, covers, logger),
		Catalog: service.NewCatalogService(st),
		Chapter: service.NewChapterService(st, logger),
		Fork:    service.NewForkService(st, logger),
		Reader:  service.NewReaderService(st, logger),
		Plugin:  service.NewPluginService(st, logger),
	}

	storage := &StorageServices{Covers: covers, Sources: sources}

	s := NewServer(st, services, storage, cfg, logger)

	return &testServer{
		Server:       s,
		api:          humatest.Wrap(t, s.api),
		tokenService: tokenService,
	}
}

// signupUser registers an account through the API and returns the access
// token and user ID.
func (ts *testServer) signupUser(t *testing.T, username, role string) (token string, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/signup", map[string]any{
		"username":  username,
		"email":     username + "@example.com",
		"password":  "correct horse battery staple",
		"full_name": "Test " + username,
		"role":      role,
	})
	require.Equal(t, http.StatusOK, resp.Code, "Signup failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	claims, err := ts.tokenService.VerifyAccessToken(envelope.Data.AccessToken)
	require.NoError(t, err)

	return envelope.Data.AccessToken, claims.UserID
}

// seedBook writes a book directly to the store.
func (ts *testServer) seedBook(t *testing.T, bookID, title, publisherID string, canFork bool) *domain.Book {
	t.Helper()

	book := &domain.Book{
		Syncable: domain.Syncable{
			ID: bookID,
		},
		Title:         title,
		PublisherID:   publisherID,
		DatePublished: time.Now(),
		CanFork:       canFork,
	}
	book.InitTimestamps()
	require.NoError(t, ts.store.CreateBook(context.Background(), book))
	return book
}

const serverTestContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

// buildServerTestEPUB assembles a minimal EPUB archive with the given
// documents registered in spine order.
func buildServerTestEPUB(t *testing.T, docs map[string]string, spineOrder []string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	mimetype, err := w.Create("mimetype")
	require.NoError(t, err)
	_, err = mimetype.Write([]byte("application/epub+zip"))
	require.NoError(t, err)

	container, err := w.Create("META-INF/container.xml")
	require.NoError(t, err)
	_, err = container.Write([]byte(serverTestContainerXML))
	require.NoError(t, err)

	var manifest, spine bytes.Buffer
	for i, name := range spineOrder {
		itemID := fmt.Sprintf("item%d", i+1)
		fmt.Fprintf(&manifest, `<item id="%s" href="%s" media-type="application/xhtml+xml"/>`, itemID, name)
		fmt.Fprintf(&spine, `<itemref idref="%s"/>`, itemID)
	}

	opf, err := w.Create("OEBPS/content.opf")
	require.NoError(t, err)
	fmt.Fprintf(opf, `<?xml version="1.0" encoding="UTF-8"?>
<package version="3.0" xmlns="http://www.idpf.org/2007/opf">
  <manifest>%s</manifest>
  <spine>%s</spine>
</package>`, manifest.String(), spine.String())

	for name, content := range docs {
		doc, err := w.Create("OEBPS/" + name)
		require.NoError(t, err)
		_, err = doc.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}
