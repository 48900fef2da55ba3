package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yaron8/telemetry-dashboard/ingester/render"
)

// ViewHandler returns the current projections as JSON.
func (api *APIServer) ViewHandler(w http.ResponseWriter, r *http.Request) {
	view := api.dashboard.View()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(view); err != nil {
		// Can't send error response after WriteHeader, just log it
		api.logger.Error("Error encoding view to JSON", "error", err)
	}
}

// ChartHandler serves the last rendered image of a chart.
func (api *APIServer) ChartHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !render.Known(name) {
		http.Error(w, fmt.Sprintf("Unknown chart %q", name), http.StatusNotFound)
		return
	}

	frame, err := api.frames.Get(name)
	if errors.Is(err, render.ErrNoFrame) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Error retrieving chart: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(frame); err != nil {
		api.logger.Error("Error writing chart", "chart", name, "error", err)
	}
}

// TableTextHandler serves the table as plain text.
func (api *APIServer) TableTextHandler(w http.ResponseWriter, r *http.Request) {
	view := api.dashboard.View()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, render.TableText(view.Table)); err != nil {
		api.logger.Error("Error writing table", "error", err)
	}
}
