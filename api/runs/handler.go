// Package runs exposes recorded run reports over HTTP so dashboards
// and scripts can compare policies without opening the database.
package runs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ankit-iitb/sandstorm-simulator/core/report"
	"github.com/ankit-iitb/sandstorm-simulator/infra/history"
)

// Store is the read-side slice of the history store the API needs.
type Store interface {
	List(ctx context.Context, limit int) ([]report.Report, error)
	Get(ctx context.Context, runID string) (report.Report, error)
}

// NewHandler returns an HTTP handler exposing run history via
// GET /api/runs (newest first, optional ?limit=N) and GET /api/runs/{id}.
func NewHandler(store Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/runs"), "/")
		if rest == "" {
			limit := 0
			if s := r.URL.Query().Get("limit"); s != "" {
				if n, err := strconv.Atoi(s); err == nil {
					limit = n
				}
			}
			reports, err := store.List(r.Context(), limit)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if reports == nil {
				reports = []report.Report{}
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(reports); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		if strings.Contains(rest, "/") {
			http.NotFound(w, r)
			return
		}
		rep, err := store.Get(r.Context(), rest)
		if errors.Is(err, history.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rep); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
