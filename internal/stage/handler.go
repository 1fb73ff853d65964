// Package stage adapts a workflow stage's Process method to an HTTP function. The
// stage is built on the first request and reused for the life of the instance.
package stage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/Lllllllleong/documentexplorer/internal/models"
)

// ProcessFunc is a stage's entry point.
type ProcessFunc[Req, Res any] func(ctx context.Context, req *Req) (*Res, error)

// InitFunc builds a stage. It runs at most once per instance.
type InitFunc[Req, Res any] func(ctx context.Context) (ProcessFunc[Req, Res], error)

// Handler returns the HTTP handler for the named stage.
func Handler[Req, Res any](name string, init InitFunc[Req, Res]) http.HandlerFunc {
	var (
		once    sync.Once
		process ProcessFunc[Req, Res]
		initErr error
	)
	return func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() {
			process, initErr = init(context.Background())
		})
		if initErr != nil {
			slog.Error("Critical: stage initialization failed", "stage", name, "error", initErr)
			http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
			return
		}
		serve(w, r, name, process)
	}
}

func serve[Req, Res any](w http.ResponseWriter, r *http.Request, name string, process ProcessFunc[Req, Res]) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	// Decode the incoming JSON request from the workflow.
	var req Req
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Could not decode request body", "stage", name, "error", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}

	res, err := process(r.Context(), &req)
	if errors.Is(err, models.ErrInvalidRequest) {
		slog.Warn("Rejected stage request", "stage", name, "error", err)
		http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("Stage processing failed", "stage", name, "error", err)
		http.Error(w, "Internal Server Error: processing failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "stage", name, "error", err)
	}
}
