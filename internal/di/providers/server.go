package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/mughouse/mughouse-server/internal/api"
	"github.com/mughouse/mughouse-server/internal/config"
	"github.com/mughouse/mughouse-server/internal/logger"
	"github.com/mughouse/mughouse-server/internal/service"
	"github.com/mughouse/mughouse-server/internal/sse"
)

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
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:     do.MustInvoke[*service.AuthService](i),
		Category: do.MustInvoke[*service.CategoryService](i),
		Product:  do.MustInvoke[*service.ProductService](i),
		Customer: do.MustInvoke[*service.CustomerService](i),
		Order:    do.MustInvoke[*service.OrderService](i),
		Search:   do.MustInvoke[*service.SearchService](i),
	}

	sseHandler := sse.NewHandler(sseHandle.Manager, log.Logger)

	handler := api.NewServer(storeHandle.Store, services, sseHandler, log.Logger)

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

	log.Info("Server running", "addr", srv.Addr, "name", cfg.Server.Name)

	return &HTTPServerHandle{Server: srv}, nil
}
