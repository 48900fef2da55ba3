package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/yaron8/telemetry-dashboard/generator/config"
	"github.com/yaron8/telemetry-dashboard/generator/stats"
	"github.com/yaron8/telemetry-dashboard/logi"
)

type APIServer struct {
	config   *config.Config
	server   *http.Server
	cache    *stats.SnapshotCache
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewAPIServer(config *config.Config, cache *stats.SnapshotCache) *APIServer {
	logger := logi.GetLogger()
	return &APIServer{
		config: config,
		cache:  cache,
		hub:    NewHub(logger),
		upgrader: websocket.Upgrader{
			// dashboards are served from another origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Hub returns the websocket fan-out of the server.
func (api *APIServer) Hub() *Hub {
	return api.hub
}

func (api *APIServer) Router() http.Handler {
	r := mux.NewRouter()

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			api.logger.Error("Error writing health check response", "error", err)
		}
	}).Methods(http.MethodGet)

	r.HandleFunc("/stats", api.statsHandler).Methods(http.MethodGet)
	r.HandleFunc("/stats.csv", api.statsCSVHandler).Methods(http.MethodGet)
	r.HandleFunc("/", api.websocketHandler).Methods(http.MethodGet)

	r.Use(api.middleware)
	return r
}

// Start serves until ctx is cancelled, then disconnects the clients.
func (api *APIServer) Start(ctx context.Context) error {
	api.logger.Info("APIServer starting", "port", api.config.Port)

	api.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", api.config.Port),
		Handler:      api.Router(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		api.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := api.server.Shutdown(shutdownCtx); err != nil {
			api.logger.Error("Server shutdown failed", "error", err)
		}
	}()

	if err := api.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (api *APIServer) websocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := api.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		api.logger.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	api.hub.add(conn)
	go api.hub.serve(conn)
}
