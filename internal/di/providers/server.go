package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/ebookhub/ebookhub-server/internal/api"
	"github.com/ebookhub/ebookhub-server/internal/config"
	"github.com/ebookhub/ebookhub-server/internal/logger"
	"github.com/ebookhub/ebookhub-server/internal/service"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server and store.
const shutdownTimeout = 30 * time.Second

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	storages := do.MustInvoke[*MediaStorages](i)

	services := &api.Services{
		Auth:    do.MustInvoke[*service.AuthService](i),
		Session: do.MustInvoke[*service.SessionService](i),
		Ingest:  do.MustInvoke[*service.IngestService](i),
		Book:    do.MustInvoke[*service.BookService](i),
		Catalog: do.MustInvoke[*service.CatalogService](i),
		Chapter: do.MustInvoke[*service.ChapterService](i),
		Fork:    do.MustInvoke[*service.ForkService](i),
		Reader:  do.MustInvoke[*service.ReaderService](i),
		Plugin:  do.MustInvoke[*service.PluginService](i),
	}

	storage := &api.StorageServices{
		Covers:  storages.Covers,
		Sources: storages.Sources,
	}

	handler := api.NewServer(storeHandle.Store, services, storage, cfg, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
