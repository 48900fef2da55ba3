package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/yaron8/telemetry-dashboard/dashboard"
	"github.com/yaron8/telemetry-dashboard/ingester/config"
	"github.com/yaron8/telemetry-dashboard/ingester/render"
	"github.com/yaron8/telemetry-dashboard/logi"
)

type APIServer struct {
	config    *config.Config
	server    *http.Server
	dashboard *dashboard.Dashboard
	frames    *render.FrameStore
	logger    *slog.Logger
}

func NewAPIServer(config *config.Config, dash *dashboard.Dashboard, frames *render.FrameStore) *APIServer {
	return &APIServer{
		config:    config,
		dashboard: dash,
		frames:    frames,
		logger:    logi.GetLogger(),
	}
}

// Router wires every dashboard endpoint.
func (api *APIServer) Router() http.Handler {
	r := mux.NewRouter()

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			api.logger.Error("Error writing health check response", "error", err)
		}
	}).Methods(http.MethodGet)

	r.HandleFunc("/", api.PageHandler).Methods(http.MethodGet)
	r.HandleFunc("/filters", api.FilterFormHandler).Methods(http.MethodPost)
	r.HandleFunc("/table.txt", api.TableTextHandler).Methods(http.MethodGet)
	r.HandleFunc("/charts/{name}.png", api.ChartHandler).Methods(http.MethodGet)

	api.registerAPI(r.PathPrefix("/api").Subrouter())

	r.Use(api.middleware)
	return r
}

func (api *APIServer) registerAPI(r *mux.Router) {
	r.HandleFunc("/view", api.ViewHandler).Methods(http.MethodGet)
	r.HandleFunc("/filters", api.FiltersHandler).Methods(http.MethodPost)
}

// Start serves the dashboard until ctx is cancelled.
func (api *APIServer) Start(ctx context.Context) error {
	api.logger.Info("Ingester APIServer starting", "port", api.config.Port)

	api.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", api.config.Port),
		Handler:      api.Router(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := api.server.Shutdown(shutdownCtx); err != nil {
			api.logger.Error("Server shutdown failed", "error", err)
		}
	}()

	if err := api.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		api.logger.Error("Server failed to start", "error", err, "port", api.config.Port)
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// middleware logs each request
func (api *APIServer) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		api.logger.Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}
