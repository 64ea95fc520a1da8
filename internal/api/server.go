// Package api provides the HTTP API server and handlers for the EbookHub
// application. JSON endpoints are registered through huma on top of a chi
// router; multipart upload and cover serving stay plain chi handlers.
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ebookhub/ebookhub-server/internal/config"
	"github.com/ebookhub/ebookhub-server/internal/http/response"
	"github.com/ebookhub/ebookhub-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           *store.Store
	services        *Services
	storage         *StorageServices
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *RateLimiter
	maxUploadSize   int64
	maxCoverSize    int64
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, services *Services, storage *StorageServices, cfg *config.Config, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	router.Use(authMiddleware(services.Auth))

	authRateLimiter := NewRateLimiter(cfg.Auth.RateLimitPerSecond, cfg.Auth.RateLimitBurst)
	router.Use(pathPrefixMiddleware("/api/v1/auth/", RateLimitMiddleware(authRateLimiter, logger)))

	humaConfig := huma.DefaultConfig("EbookHub API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:           st,
		services:        services,
		storage:         storage,
		router:          router,
		api:             api,
		logger:          logger,
		authRateLimiter: authRateLimiter,
		maxUploadSize:   cfg.Upload.MaxFileSize,
		maxCoverSize:    cfg.Upload.MaxCoverSize,
	}

	s.registerAuthRoutes()
	s.registerBookRoutes()
	s.registerChapterRoutes()
	s.registerCatalogRoutes()
	s.registerForkRoutes()
	s.registerReaderRoutes()
	s.registerPluginRoutes()
	s.setupPlainRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupPlainRoutes registers the endpoints that bypass huma: health check,
// multipart upload, and binary cover serving.
func (s *Server) setupPlainRoutes() {
	s.router.Get("/health", s.handleHealthCheck)
	s.router.Post("/api/v1/books/upload", s.handleUploadBook)
	s.router.Get("/api/v1/books/{id}/cover", s.handleGetCover)
}

// pathPrefixMiddleware applies mw only to requests whose path starts with
// prefix, passing everything else through untouched.
func pathPrefixMiddleware(prefix string, mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, prefix) {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
