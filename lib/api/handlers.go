package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/viscerous/runsync/lib/store"
)

// API serves the activity index and health status
type API struct {
	Storage store.Store
}

// New creates a new API instance
func New(storage store.Store) *API {
	return &API{Storage: storage}
}

// ActivitiesHandler returns the activity index as JSON
func (a *API) ActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	activities, err := a.Storage.ListActivities()
	if err != nil {
		slog.Error("Failed to list activities", "error", err)
		http.Error(w, "Failed to list activities", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("pending") == "true" {
		pending := activities[:0]
		for _, activity := range activities {
			if !activity.IsUploaded() {
				pending = append(pending, activity)
			}
		}
		activities = pending
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(activities); err != nil {
		slog.Error("Failed to encode activities", "error", err)
	}
}
