package api

import (
	"github.com/ebookhub/ebookhub-server/internal/media/images"
	"github.com/ebookhub/ebookhub-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth    *service.AuthService
	Session *service.SessionService
	Ingest  *service.IngestService
	Book    *service.BookService
	Catalog *service.CatalogService
	Chapter *service.ChapterService
	Fork    *service.ForkService
	Reader  *service.ReaderService
	Plugin  *service.PluginService
}

// StorageServices groups file storage handlers used by the API server.
type StorageServices struct {
	Covers  *images.Storage // Book cover images
	Sources *images.Storage // Uploaded EPUB source files
}
