package service

import (
	"fmt"
	"net/http"

	"github.com/yaron8/telemetry-dashboard/generator/stats"
)

// statsHandler serves the snapshot last sent to the clients
func (api *APIServer) statsHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, err := api.cache.Get()
	if err != nil {
		http.Error(w, fmt.Sprintf("Error building snapshot: %v", err),
			http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(snapshot.JSON); err != nil {
		api.logger.Error("Error writing snapshot", "error", err)
	}
}

// statsCSVHandler serves the same snapshot as CSV
func (api *APIServer) statsCSVHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, err := api.cache.Get()
	if err != nil {
		http.Error(w, fmt.Sprintf("Error building snapshot: %v", err),
			http.StatusInternalServerError)
		return
	}

	csvData, err := stats.EncodeCSV(snapshot.Message)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error generating CSV: %v", err),
			http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, csvData)
}
