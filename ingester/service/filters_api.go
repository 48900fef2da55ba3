package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/yaron8/telemetry-dashboard/dashboard"
)

// FilterRequest selects filter values. Empty fields leave a selector unchanged.
type FilterRequest struct {
	Switch string `json:"switch"`
	Port   string `json:"port"`
}

// FiltersHandler applies a JSON filter selection.
func (api *APIServer) FiltersHandler(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid filter request: %v", err), http.StatusBadRequest)
		return
	}

	if err := api.applyFilters(req); err != nil {
		api.writeFilterError(w, err)
		return
	}

	api.ViewHandler(w, r)
}

// FilterFormHandler applies the selection posted by the dashboard page.
func (api *APIServer) FilterFormHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, fmt.Sprintf("Invalid form: %v", err), http.StatusBadRequest)
		return
	}

	req := FilterRequest{
		Switch: r.PostForm.Get("switch"),
		Port:   r.PostForm.Get("port"),
	}
	if err := api.applyFilters(req); err != nil {
		api.writeFilterError(w, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (api *APIServer) applyFilters(req FilterRequest) error {
	if req.Switch != "" {
		if err := api.dashboard.SelectSwitch(req.Switch); err != nil {
			return fmt.Errorf("switch filter: %w", err)
		}
	}
	if req.Port != "" {
		if err := api.dashboard.SelectPort(req.Port); err != nil {
			return fmt.Errorf("port filter: %w", err)
		}
	}
	api.logger.Info("Filters changed", "switch", req.Switch, "port", req.Port)
	return nil
}

func (api *APIServer) writeFilterError(w http.ResponseWriter, err error) {
	if errors.Is(err, dashboard.ErrUnknownOption) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	api.logger.Error("Error applying filters", "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
